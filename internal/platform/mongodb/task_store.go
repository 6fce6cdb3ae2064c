package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskStore implements store.TaskStore on the tasks collection.
type TaskStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if _, err := s.coll.InsertOne(ctx, newTaskDoc(task)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return mapError(err, store.ErrTaskNotFound)
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}
	return doc.toDomain()
}

// Find implements store.TaskStore.Find
func (s *TaskStore) Find(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if filter.MatchesNothing() {
		return []*domain.Task{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, taskFilterDoc(filter), opts)
	if err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}

	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		t, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, id uuid.UUID, patch store.TaskPatch) (*domain.Task, error) {
	update, err := taskUpdateDoc(patch)
	if err != nil {
		return nil, err
	}
	if update == nil {
		return s.GetByID(ctx, id)
	}

	var doc taskDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&doc); err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}
	return doc.toDomain()
}

// UpdateMany implements store.TaskStore.UpdateMany
func (s *TaskStore) UpdateMany(ctx context.Context, filter store.TaskFilter, patch store.TaskPatch) (int, error) {
	if filter.MatchesNothing() {
		return 0, nil
	}
	update, err := taskUpdateDoc(patch)
	if err != nil {
		return 0, err
	}
	if update == nil {
		n, err := s.coll.CountDocuments(ctx, taskFilterDoc(filter))
		return int(n), err
	}

	res, err := s.coll.UpdateMany(ctx, taskFilterDoc(filter), update)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update tasks",
			slog.String("error", err.Error()))
		return 0, mapError(err, store.ErrTaskNotFound)
	}
	return int(res.MatchedCount), nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDoc
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mapError(err, store.ErrTaskNotFound)
	}
	return doc.toDomain()
}

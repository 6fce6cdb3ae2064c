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

// UserStore implements store.UserStore on the users collection.
type UserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if _, err := s.coll.InsertOne(ctx, newUserDoc(user)); err != nil {
		mapped := mapError(err, store.ErrUserNotFound)
		if !store.IsDuplicateError(mapped) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to create user",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
		}
		return mapped
	}
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err, store.ErrUserNotFound)
	}
	return doc.toDomain()
}

// Find implements store.UserStore.Find
func (s *UserStore) Find(ctx context.Context, filter store.UserFilter) ([]*domain.User, error) {
	if filter.MatchesNothing() {
		return []*domain.User{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, userFilterDoc(filter), opts)
	if err != nil {
		return nil, mapError(err, store.ErrUserNotFound)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		u, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Update implements store.UserStore.Update
func (s *UserStore) Update(ctx context.Context, id uuid.UUID, patch store.UserPatch) (*domain.User, error) {
	update, err := userUpdateDoc(patch)
	if err != nil {
		return nil, err
	}
	if update == nil {
		return s.GetByID(ctx, id)
	}

	var doc userDoc
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&doc); err != nil {
		return nil, mapError(err, store.ErrUserNotFound)
	}
	return doc.toDomain()
}

// Delete implements store.UserStore.Delete
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var doc userDoc
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, mapError(err, store.ErrUserNotFound)
	}
	return doc.toDomain()
}

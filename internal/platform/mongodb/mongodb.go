package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/tasktrack/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection and index names.
const (
	TasksCollection = "tasks"
	UsersCollection = "users"

	emailIndexName        = "email_1"
	assignedUserIndexName = "assignedUser_1"
)

const pingTimeout = 5 * time.Second

// Store owns a MongoDB client and hands out the two collection stores.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Open connects to MongoDB, verifies the connection and ensures indexes.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(uint64(cfg.MaxOpenConns)).
		SetMaxConnIdleTime(cfg.ConnMaxLifetime)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(cfg.Name),
		logger: logger,
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the unique email index and the task owner index.
// It is safe to call repeatedly.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(emailIndexName),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = s.db.Collection(TasksCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "assignedUser", Value: 1}},
		Options: options.Index().SetName(assignedUserIndexName),
	})
	if err != nil {
		return fmt.Errorf("failed to create tasks owner index: %w", err)
	}
	return nil
}

// Tasks returns the task store backed by the tasks collection.
func (s *Store) Tasks() *TaskStore {
	return &TaskStore{
		coll:   s.db.Collection(TasksCollection),
		logger: s.logger.With(slog.String("component", "task_store")),
	}
}

// Users returns the user store backed by the users collection.
func (s *Store) Users() *UserStore {
	return &UserStore{
		coll:   s.db.Collection(UsersCollection),
		logger: s.logger.With(slog.String("component", "user_store")),
	}
}

// Drop removes both collections. Used by tests and "migrate reset".
func (s *Store) Drop(ctx context.Context) error {
	for _, name := range []string{TasksCollection, UsersCollection} {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop %s: %w", name, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/store"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db     sqlx.ExtContext
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db sqlx.ExtContext, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := s.db.Rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		idList(domain.UniqueIDs(user.PendingTasks)),
		user.DateCreated,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("user create rejected by unique constraint",
				slog.String("user_id", user.ID.String()))
			return mapped
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapped
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var row userRow
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, id); err != nil {
		return nil, mapNotFound(err, store.ErrUserNotFound)
	}
	return row.toDomain(), nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	query := s.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	if err := sqlx.GetContext(ctx, s.db, &row, query, email); err != nil {
		return nil, mapNotFound(err, store.ErrUserNotFound)
	}
	return row.toDomain(), nil
}

// Find implements store.UserStore.Find
func (s *PostgresUserStore) Find(ctx context.Context, filter store.UserFilter) ([]*domain.User, error) {
	if filter.MatchesNothing() {
		return []*domain.User{}, nil
	}

	where := &whereClause{}
	if filter.IDs != nil {
		where.add("id IN (?)", filter.IDs)
	}
	if filter.PendingTask != nil {
		where.add("pending_tasks @> ?::jsonb", idList{*filter.PendingTask})
	}
	query, args, err := bind(s.db, `SELECT `+userColumns+` FROM users`+where.String()+` ORDER BY date_created, id`, where.args...)
	if err != nil {
		return nil, err
	}

	var rows []userRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find users",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	users := make([]*domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(
	ctx context.Context,
	id uuid.UUID,
	patch store.UserPatch,
) (*domain.User, error) {
	set := &setClause{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyUserName)
		}
		set.add("name", *patch.Name)
	}
	if patch.Email != nil {
		probe := domain.User{ID: id, Name: "probe", Email: *patch.Email}
		if err := probe.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		set.add("email", *patch.Email)
	}
	if patch.PendingTasks != nil {
		set.add("pending_tasks", idList(domain.UniqueIDs(*patch.PendingTasks)))
	}
	if set.empty() {
		return s.GetByID(ctx, id)
	}

	query := s.db.Rebind(`UPDATE users SET ` + set.String() + ` WHERE id = ? RETURNING ` + userColumns)
	args := append(set.args, id)

	var row userRow
	if err := sqlx.GetContext(ctx, s.db, &row, query, args...); err != nil {
		return nil, mapNotFound(err, store.ErrUserNotFound)
	}
	return row.toDomain(), nil
}

// Delete implements store.UserStore.Delete
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var row userRow
	query := s.db.Rebind(`DELETE FROM users WHERE id = ? RETURNING ` + userColumns)
	if err := sqlx.GetContext(ctx, s.db, &row, query, id); err != nil {
		return nil, mapNotFound(err, store.ErrUserNotFound)
	}
	return row.toDomain(), nil
}

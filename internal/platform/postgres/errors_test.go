package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/tasktrack/internal/platform/postgres"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		SchemaName:     "public",
		TableName:      "test_table",
		ColumnName:     "test_column",
		ConstraintName: constraint,
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "no rows", err: sql.ErrNoRows, expected: store.ErrNotFound},
		{name: "email unique violation", err: newPgError("23505", "users_email_key"), expected: store.ErrEmailExists},
		{name: "primary key violation", err: newPgError("23505", "tasks_pkey"), expected: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503", "fk"), expected: store.ErrInvalidEntity},
		{
			name:     "check violation",
			err:      newPgError("23514", "tasks_assignment_consistent"),
			expected: store.ErrInvalidEntity,
		},
		{name: "not null violation", err: newPgError("23502", ""), expected: store.ErrInvalidEntity},
		{
			name:     "wrapped check violation",
			err:      fmt.Errorf("exec: %w", newPgError("23514", "tasks_name_check")),
			expected: store.ErrInvalidEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mapped := postgres.MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.expected)
			assert.ErrorIs(t, mapped, tc.err, "original error must stay in the chain")
		})
	}
}

func TestMapErrorPassThrough(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.MapError(nil))

	generic := errors.New("connection refused")
	assert.Same(t, generic, postgres.MapError(generic))

	deadlock := newPgError("40P01", "")
	assert.Equal(t, error(deadlock), postgres.MapError(deadlock))
}

func TestEmailExistsIsDuplicate(t *testing.T) {
	t.Parallel()
	mapped := postgres.MapError(newPgError("23505", "users_email_key"))
	assert.True(t, store.IsDuplicateError(mapped))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503", "")))
	assert.False(t, postgres.IsUniqueViolation(nil))
	assert.True(t, postgres.IsCheckConstraintViolation(newPgError("23514", "")))
	assert.False(t, postgres.IsCheckConstraintViolation(errors.New("generic")))
}

package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDListValueAndScan(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	v, err := idList{a, b}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["`+a.String()+`","`+b.String()+`"]`, v)

	empty, err := idList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	var got idList
	require.NoError(t, got.Scan([]byte(v.(string))))
	assert.Equal(t, idList{a, b}, got)

	require.NoError(t, got.Scan(nil))
	assert.Equal(t, idList{}, got)

	assert.Error(t, got.Scan(42))
	assert.Error(t, got.Scan("not json"))
}

func TestTaskQueryBuilding(t *testing.T) {
	db := sqlx.NewDb(nil, "pgx")
	owner := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	assignment := domain.AssignedTo(owner, "Alice")
	set, err := taskSet(store.TaskPatch{Assignment: &assignment})
	require.NoError(t, err)

	where := taskWhere(store.TaskFilter{IDs: ids, AssignedTo: &owner})
	query, args, err := bind(db, "UPDATE tasks SET "+set.String()+where.String(), append(set.args, where.args...)...)
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE tasks SET assigned_user = $1, assigned_user_name = $2 WHERE id IN ($3, $4) AND assigned_user = $5",
		query)
	assert.Len(t, args, 5)
}

func TestTaskSetValidates(t *testing.T) {
	empty := ""
	_, err := taskSet(store.TaskPatch{Name: &empty})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	bad := domain.Assignment{UserName: "Alice"}
	_, err = taskSet(store.TaskPatch{Assignment: &bad})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.ErrorIs(t, err, domain.ErrInconsistentAssignment)

	set, err := taskSet(store.TaskPatch{})
	require.NoError(t, err)
	assert.True(t, set.empty())
}

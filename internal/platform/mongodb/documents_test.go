package mongodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTaskDocOmitsUnassignedOwner(t *testing.T) {
	task, err := domain.NewTask("T", "", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)

	raw, err := bson.Marshal(newTaskDoc(task))
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.NotContains(t, m, "assignedUser")
	assert.Equal(t, domain.UnassignedName, m["assignedUserName"])

	owner := uuid.New()
	task.SetAssignment(domain.AssignedTo(owner, "Alice"))
	back, err := newTaskDoc(task).toDomain()
	require.NoError(t, err)
	assert.Equal(t, task.Assignment(), back.Assignment())
}

func TestDocumentsRejectMalformedIDs(t *testing.T) {
	_, err := taskDoc{ID: "nope"}.toDomain()
	assert.Error(t, err)

	_, err = taskDoc{ID: uuid.NewString(), AssignedUser: "nope"}.toDomain()
	assert.Error(t, err)

	_, err = userDoc{ID: uuid.NewString(), PendingTasks: []string{"nope"}}.toDomain()
	assert.Error(t, err)
}

func TestTaskUpdateDoc(t *testing.T) {
	owner := uuid.New()

	assigned := domain.AssignedTo(owner, "Alice")
	update, err := taskUpdateDoc(store.TaskPatch{Assignment: &assigned})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$set": bson.M{
		"assignedUser":     owner.String(),
		"assignedUserName": "Alice",
	}}, update)

	unassigned := domain.Unassigned()
	update, err = taskUpdateDoc(store.TaskPatch{Assignment: &unassigned})
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"$set":   bson.M{"assignedUserName": domain.UnassignedName},
		"$unset": bson.M{"assignedUser": ""},
	}, update)

	update, err = taskUpdateDoc(store.TaskPatch{})
	require.NoError(t, err)
	assert.Nil(t, update)

	bad := domain.Assignment{User: uuid.NullUUID{UUID: owner, Valid: true}}
	_, err = taskUpdateDoc(store.TaskPatch{Assignment: &bad})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestFilterDocs(t *testing.T) {
	id := uuid.New()
	owner := uuid.New()

	assert.Equal(t, bson.M{}, taskFilterDoc(store.TaskFilter{}))
	assert.Equal(t, bson.M{
		"_id":          bson.M{"$in": []string{id.String()}},
		"assignedUser": owner.String(),
	}, taskFilterDoc(store.TaskFilter{IDs: []uuid.UUID{id}, AssignedTo: &owner}))
	assert.Equal(t, bson.M{"_id": bson.M{"$in": []string{id.String()}}},
		userFilterDoc(store.UserFilter{IDs: []uuid.UUID{id}}))
	assert.Equal(t, bson.M{"pendingTasks": id.String()},
		userFilterDoc(store.UsersWithPendingTask(id)))
}

func TestMapError(t *testing.T) {
	dup := func(index string) error {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: "E11000 duplicate key error collection: tracker.users index: " + index + " dup key",
		}}}
	}

	assert.ErrorIs(t, mapError(mongo.ErrNoDocuments, store.ErrUserNotFound), store.ErrUserNotFound)
	assert.ErrorIs(t, mapError(dup(emailIndexName), store.ErrUserNotFound), store.ErrEmailExists)

	pk := mapError(dup("_id_"), store.ErrUserNotFound)
	assert.ErrorIs(t, pk, store.ErrDuplicate)
	assert.NotErrorIs(t, pk, store.ErrEmailExists)

	assert.NoError(t, mapError(nil, store.ErrUserNotFound))
}

package mongodb

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type taskDoc struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Description      string    `bson:"description"`
	Deadline         time.Time `bson:"deadline"`
	Completed        bool      `bson:"completed"`
	AssignedUser     string    `bson:"assignedUser,omitempty"`
	AssignedUserName string    `bson:"assignedUserName"`
	DateCreated      time.Time `bson:"dateCreated"`
}

func newTaskDoc(t *domain.Task) taskDoc {
	doc := taskDoc{
		ID:               t.ID.String(),
		Name:             t.Name,
		Description:      t.Description,
		Deadline:         t.Deadline.UTC(),
		Completed:        t.Completed,
		AssignedUserName: t.AssignedUserName,
		DateCreated:      t.DateCreated.UTC(),
	}
	if t.AssignedUser.Valid {
		doc.AssignedUser = t.AssignedUser.UUID.String()
	}
	return doc
}

func (d taskDoc) toDomain() (*domain.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("task has malformed _id %q: %w", d.ID, err)
	}

	t := &domain.Task{
		ID:               id,
		Name:             d.Name,
		Description:      d.Description,
		Deadline:         d.Deadline.UTC(),
		Completed:        d.Completed,
		AssignedUserName: d.AssignedUserName,
		DateCreated:      d.DateCreated.UTC(),
	}
	if d.AssignedUser != "" {
		owner, err := uuid.Parse(d.AssignedUser)
		if err != nil {
			return nil, fmt.Errorf("task %s has malformed assignedUser %q: %w", d.ID, d.AssignedUser, err)
		}
		t.AssignedUser = uuid.NullUUID{UUID: owner, Valid: true}
	}
	return t, nil
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PendingTasks []string  `bson:"pendingTasks"`
	DateCreated  time.Time `bson:"dateCreated"`
}

func newUserDoc(u *domain.User) userDoc {
	return userDoc{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PendingTasks: idStrings(domain.UniqueIDs(u.PendingTasks)),
		DateCreated:  u.DateCreated.UTC(),
	}
}

func (d userDoc) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("user has malformed _id %q: %w", d.ID, err)
	}
	pending, err := parseIDs(d.PendingTasks)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", d.ID, err)
	}
	return &domain.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PendingTasks: domain.UniqueIDs(pending),
		DateCreated:  d.DateCreated.UTC(),
	}, nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("malformed task id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func taskFilterDoc(f store.TaskFilter) bson.M {
	m := bson.M{}
	if f.IDs != nil {
		m["_id"] = bson.M{"$in": idStrings(f.IDs)}
	}
	if f.AssignedTo != nil {
		m["assignedUser"] = f.AssignedTo.String()
	}
	return m
}

func userFilterDoc(f store.UserFilter) bson.M {
	m := bson.M{}
	if f.IDs != nil {
		m["_id"] = bson.M{"$in": idStrings(f.IDs)}
	}
	if f.PendingTask != nil {
		m["pendingTasks"] = f.PendingTask.String()
	}
	return m
}

// taskUpdateDoc translates a patch into $set/$unset operators. It returns
// nil when the patch changes nothing.
func taskUpdateDoc(p store.TaskPatch) (bson.M, error) {
	set := bson.M{}
	unset := bson.M{}

	if p.Name != nil {
		if *p.Name == "" {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyTaskName)
		}
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Deadline != nil {
		if p.Deadline.IsZero() {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyTaskDeadline)
		}
		set["deadline"] = p.Deadline.UTC()
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	if p.Assignment != nil {
		if err := p.Assignment.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		if p.Assignment.User.Valid {
			set["assignedUser"] = p.Assignment.User.UUID.String()
		} else {
			unset["assignedUser"] = ""
		}
		set["assignedUserName"] = p.Assignment.UserName
	}

	return updateDoc(set, unset), nil
}

func userUpdateDoc(p store.UserPatch) (bson.M, error) {
	set := bson.M{}
	if p.Name != nil {
		if *p.Name == "" {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyUserName)
		}
		set["name"] = *p.Name
	}
	if p.Email != nil {
		probe := domain.User{ID: uuid.New(), Name: "probe", Email: *p.Email}
		if err := probe.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
		}
		set["email"] = *p.Email
	}
	if p.PendingTasks != nil {
		set["pendingTasks"] = idStrings(domain.UniqueIDs(*p.PendingTasks))
	}
	return updateDoc(set, bson.M{}), nil
}

func updateDoc(set, unset bson.M) bson.M {
	if len(set) == 0 && len(unset) == 0 {
		return nil
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

// mapError translates driver errors to store sentinels.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), emailIndexName) {
			return fmt.Errorf("%w: %w", store.ErrEmailExists, err)
		}
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	}
	return err
}

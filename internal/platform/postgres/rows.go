package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasktrack/internal/domain"
)

const taskColumns = `id, name, description, deadline, completed, assigned_user, assigned_user_name, date_created`

const userColumns = `id, name, email, pending_tasks, date_created`

type taskRow struct {
	ID               uuid.UUID     `db:"id"`
	Name             string        `db:"name"`
	Description      string        `db:"description"`
	Deadline         time.Time     `db:"deadline"`
	Completed        bool          `db:"completed"`
	AssignedUser     uuid.NullUUID `db:"assigned_user"`
	AssignedUserName string        `db:"assigned_user_name"`
	DateCreated      time.Time     `db:"date_created"`
}

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Deadline:         r.Deadline.UTC(),
		Completed:        r.Completed,
		AssignedUser:     r.AssignedUser,
		AssignedUserName: r.AssignedUserName,
		DateCreated:      r.DateCreated.UTC(),
	}
}

type userRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PendingTasks idList    `db:"pending_tasks"`
	DateCreated  time.Time `db:"date_created"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PendingTasks: domain.UniqueIDs(r.PendingTasks),
		DateCreated:  r.DateCreated.UTC(),
	}
}

// idList stores a set of IDs as a JSONB array of strings.
type idList []uuid.UUID

// Value implements driver.Valuer.
func (l idList) Value() (driver.Value, error) {
	ids := []uuid.UUID(l)
	if ids == nil {
		ids = []uuid.UUID{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *idList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = idList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into id list", src)
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("invalid id list: %w", err)
	}
	*l = ids
	return nil
}

// setClause accumulates "column = ?" assignments for an UPDATE.
type setClause struct {
	parts []string
	args  []interface{}
}

func (s *setClause) add(column string, value interface{}) {
	s.parts = append(s.parts, column+" = ?")
	s.args = append(s.args, value)
}

func (s *setClause) empty() bool {
	return len(s.parts) == 0
}

func (s *setClause) String() string {
	return strings.Join(s.parts, ", ")
}

// whereClause accumulates AND-ed conditions. Slice arguments are expanded by sqlx.In.
type whereClause struct {
	parts []string
	args  []interface{}
}

func (w *whereClause) add(cond string, args ...interface{}) {
	w.parts = append(w.parts, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

// bind expands IN lists and rewrites ? placeholders for the connection's driver.
func bind(db sqlx.ExtContext, query string, args ...interface{}) (string, []interface{}, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}
	return db.Rebind(query), args, nil
}

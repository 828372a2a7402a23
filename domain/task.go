package domain

import (
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// next is the only status reachable from each state.
var next = map[Status]Status{
	StatusTodo:       StatusInProgress,
	StatusInProgress: StatusDone,
}

// CanTransition reports whether a task may move from s to to.
// Transitions are strictly TODO -> IN_PROGRESS -> DONE.
func (s Status) CanTransition(to Status) bool {
	n, ok := next[s]
	return ok && n == to
}

// Task is the service-level representation of a task.
type Task struct {
	ID          int64      `json:"id" msgpack:"id"`
	OwnerID     int64      `json:"user_id" msgpack:"owner_id"`
	Title       string     `json:"title" msgpack:"title"`
	Description string     `json:"description" msgpack:"description"`
	Status      Status     `json:"status" msgpack:"status"`
	Deadline    time.Time  `json:"deadline" msgpack:"deadline"`
	CreatedAt   time.Time  `json:"start" msgpack:"created_at"`
	CompletedAt *time.Time `json:"end,omitempty" msgpack:"completed_at"`
}

// NewTask carries the caller supplied fields of a task to create.
type NewTask struct {
	OwnerID     int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page is a limit/offset window over an owner's tasks.
type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps the window so that result sets are always bounded.
// The normalized values are the ones that appear in cache keys.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

package storage

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-todo-cache/domain"
)

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Username  string    `bun:"username,notnull,unique"`
	Email     string    `bun:"email,notnull,unique"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

type taskModel struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          int64      `bun:"id,pk,autoincrement"`
	OwnerID     int64      `bun:"owner_id,notnull"`
	Title       string     `bun:"title,notnull"`
	Description string     `bun:"description,notnull"`
	Status      string     `bun:"status,notnull"`
	Deadline    time.Time  `bun:"deadline,notnull"`
	CreatedAt   time.Time  `bun:"created_at,notnull"`
	CompletedAt *time.Time `bun:"completed_at"`
}

func (m *userModel) toDomain() domain.User {
	return domain.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func userFromDomain(u domain.User) *userModel {
	return &userModel{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func (m *taskModel) toDomain() domain.Task {
	t := domain.Task{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.Status(m.Status),
		Deadline:    m.Deadline.UTC(),
		CreatedAt:   m.CreatedAt.UTC(),
	}
	if m.CompletedAt != nil {
		completed := m.CompletedAt.UTC()
		t.CompletedAt = &completed
	}
	return t
}

func taskFromDomain(t domain.Task) *taskModel {
	return &taskModel{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Deadline:    t.Deadline,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

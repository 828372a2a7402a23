package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-todo-cache/domain"
)

// Store implements the task and user store adapters over bun.
type Store struct {
	db      bun.IDB
	timeout time.Duration
	now     func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the source of created-at timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps db. Every call is bounded by timeout.
func New(db bun.IDB, timeout time.Duration, opts ...Option) *Store {
	if timeout <= 0 {
		timeout = DefaultConfig().QueryTimeout
	}
	s := &Store{db: db, timeout: timeout, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// stamp is the insert time, truncated to what every dialect can store.
func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) FindTaskByID(ctx context.Context, id int64) (domain.Task, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	m := new(taskModel)
	err := apply(s.db.NewSelect().Model(m), byID(id)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, false, nil
	}
	if err != nil {
		return domain.Task{}, false, fmt.Errorf("find task %d: %w", id, err)
	}
	return m.toDomain(), true, nil
}

func (s *Store) FindTasksByOwner(ctx context.Context, owner int64, limit, offset int) ([]domain.Task, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var rows []taskModel
	err := apply(s.db.NewSelect().Model(&rows), ownedBy(owner), window(limit, offset)).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("find tasks of owner %d: %w", owner, err)
	}

	tasks := make([]domain.Task, len(rows))
	for i := range rows {
		tasks[i] = rows[i].toDomain()
	}
	return tasks, nil
}

func (s *Store) CountTasksByOwner(ctx context.Context, owner int64) (int, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	n, err := apply(s.db.NewSelect().Model((*taskModel)(nil)), ownedBy(owner)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count tasks of owner %d: %w", owner, err)
	}
	return n, nil
}

// SaveTask inserts t when its id is zero and updates it otherwise. The
// returned task is built from the written row.
func (s *Store) SaveTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	m := taskFromDomain(t)
	if m.ID == 0 {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = s.stamp()
		}
		if _, err := s.db.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
			return domain.Task{}, fmt.Errorf("insert task: %w", err)
		}
		return m.toDomain(), nil
	}

	res, err := s.db.NewUpdate().Model(m).WherePK().Exec(ctx)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task %d: %w", m.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Task{}, &domain.NotFoundError{Entity: "task", ID: m.ID}
	}
	return m.toDomain(), nil
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (domain.User, bool, error) {
	return s.findUser(ctx, fmt.Sprintf("id %d", id), byID(id))
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (domain.User, bool, error) {
	return s.findUser(ctx, "username "+username, withColumn("username", username))
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return s.findUser(ctx, "email "+email, withColumn("email", email))
}

func (s *Store) findUser(ctx context.Context, desc string, criteria ...repository.SelectCriteria) (domain.User, bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	m := new(userModel)
	err := apply(s.db.NewSelect().Model(m), criteria...).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("find user by %s: %w", desc, err)
	}
	return m.toDomain(), true, nil
}

// SaveUser inserts u. A unique violation is returned as *DuplicateError.
func (s *Store) SaveUser(ctx context.Context, u domain.User) (domain.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	m := userFromDomain(u)
	if m.ID != 0 {
		res, err := s.db.NewUpdate().Model(m).WherePK().Exec(ctx)
		if err != nil {
			return domain.User{}, fmt.Errorf("update user %d: %w", m.ID, classifyUnique(err))
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.User{}, &domain.NotFoundError{Entity: "user", ID: m.ID}
		}
		return m.toDomain(), nil
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.stamp()
	}
	if _, err := s.db.NewInsert().Model(m).Returning("*").Exec(ctx); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", classifyUnique(err))
	}
	return m.toDomain(), nil
}

// DeleteUserByID removes the user and, through the foreign key, its tasks.
func (s *Store) DeleteUserByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.db.NewDelete().Model((*userModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	return n > 0, nil
}

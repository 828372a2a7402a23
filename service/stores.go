package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-todo-cache/domain"
	"github.com/goliatone/go-todo-cache/telemetry"
)

// TaskStore is the store adapter surface used by TaskService.
type TaskStore interface {
	FindTaskByID(ctx context.Context, id int64) (domain.Task, bool, error)
	FindTasksByOwner(ctx context.Context, owner int64, limit, offset int) ([]domain.Task, error)
	CountTasksByOwner(ctx context.Context, owner int64) (int, error)
	SaveTask(ctx context.Context, t domain.Task) (domain.Task, error)
}

// UserStore is the store adapter surface used by UserService.
type UserStore interface {
	FindUserByID(ctx context.Context, id int64) (domain.User, bool, error)
	FindUserByUsername(ctx context.Context, username string) (domain.User, bool, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, bool, error)
	SaveUser(ctx context.Context, u domain.User) (domain.User, error)
	DeleteUserByID(ctx context.Context, id int64) (bool, error)
}

type options struct {
	logger *slog.Logger
	now    func() time.Time
	sink   telemetry.Sink
}

// Option customises a service.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source used for deadline checks and completed-at.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithSink(sink telemetry.Sink) Option {
	return func(o *options) {
		if sink != nil {
			o.sink = sink
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: slog.Default(),
		now:    time.Now,
		sink:   telemetry.Nop{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

package di

import (
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-todo-cache/cache"
	"github.com/goliatone/go-todo-cache/cacheaside"
	"github.com/goliatone/go-todo-cache/internal/cacheinfra"
	"github.com/goliatone/go-todo-cache/service"
	"github.com/goliatone/go-todo-cache/storage"
	"github.com/goliatone/go-todo-cache/telemetry"
)

// Config groups the settings the container needs to assemble the services.
type Config struct {
	Cache        cache.Config
	QueryTimeout time.Duration
}

// DefaultConfig returns the default cache settings with the default store
// query timeout.
func DefaultConfig() Config {
	return Config{
		Cache:        cache.DefaultConfig(),
		QueryTimeout: storage.DefaultConfig().QueryTimeout,
	}
}

// Container provides dependency injection for the task backend.
// It owns one instance of each collaborator: the cache backend, key
// serializer, cache-aside policy, store, metrics sink and the two services.
type Container struct {
	backend       cache.Backend
	keySerializer cache.KeySerializer
	metrics       *telemetry.Memory
	policy        *cacheaside.Policy
	store         *storage.Store
	users         *service.UserService
	tasks         *service.TaskService
	config        Config
}

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option customises a Container.
type Option func(*options)

// WithLogger sets the logger handed to the policy and the services.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the time source shared by the store and the services.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// NewContainer wires the services over backend and db. The caller keeps
// ownership of both and closes them.
func NewContainer(config Config, backend cache.Backend, db bun.IDB, opts ...Option) (*Container, error) {
	if err := config.Cache.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	keySerializer := cache.NewDefaultKeySerializer()
	metrics := telemetry.NewMemory()

	policy := cacheaside.New(backend, config.Cache,
		cacheaside.WithLogger(o.logger),
		cacheaside.WithSink(metrics),
		cacheaside.WithKeySerializer(keySerializer),
	)

	store := storage.New(db, config.QueryTimeout, storage.WithClock(o.now))

	serviceOpts := []service.Option{
		service.WithLogger(o.logger),
		service.WithClock(o.now),
		service.WithSink(metrics),
	}
	users := service.NewUserService(store, policy, serviceOpts...)
	tasks := service.NewTaskService(store, users, policy, serviceOpts...)

	return &Container{
		backend:       backend,
		keySerializer: keySerializer,
		metrics:       metrics,
		policy:        policy,
		store:         store,
		users:         users,
		tasks:         tasks,
		config:        config,
	}, nil
}

// NewContainerWithDefaults wires the services over an in-process cache
// backend built from the default configuration.
func NewContainerWithDefaults(db bun.IDB, opts ...Option) (*Container, error) {
	config := DefaultConfig()
	backend, err := cacheinfra.NewSturdycBackend(config.Cache)
	if err != nil {
		return nil, err
	}
	return NewContainer(config, backend, db, opts...)
}

func (c *Container) Backend() cache.Backend {
	return c.backend
}

func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Metrics returns the in-process counters fed by the policy and services.
func (c *Container) Metrics() *telemetry.Memory {
	return c.metrics
}

func (c *Container) Policy() *cacheaside.Policy {
	return c.policy
}

func (c *Container) Store() *storage.Store {
	return c.store
}

func (c *Container) Users() *service.UserService {
	return c.users
}

func (c *Container) Tasks() *service.TaskService {
	return c.tasks
}

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config {
	return c.config
}

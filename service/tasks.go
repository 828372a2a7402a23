package service

import (
	"context"
	"time"

	"github.com/goliatone/go-todo-cache/cacheaside"
	"github.com/goliatone/go-todo-cache/domain"
	"github.com/goliatone/go-todo-cache/telemetry"
)

// TaskService implements the task operations.
type TaskService struct {
	store  TaskStore
	users  *UserService
	policy *cacheaside.Policy
	auth   *Authorizer
	opts   options
}

func NewTaskService(store TaskStore, users *UserService, policy *cacheaside.Policy, opts ...Option) *TaskService {
	s := &TaskService{
		store:  store,
		users:  users,
		policy: policy,
		opts:   buildOptions(opts),
	}
	s.auth = NewAuthorizer(s)
	return s
}

// GetTask returns the task with id, from the cache when possible.
func (s *TaskService) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return cacheaside.Read(ctx, s.policy, s.policy.TaskByID(id), func(ctx context.Context) (domain.Task, error) {
		t, found, err := s.store.FindTaskByID(ctx, id)
		if err != nil {
			return domain.Task{}, err
		}
		if !found {
			return domain.Task{}, &domain.NotFoundError{Entity: "task", ID: id}
		}
		return t, nil
	})
}

// ListTasksByOwner returns one window of the owner's tasks in id order. The
// page is normalised first, so the key always carries the effective window.
func (s *TaskService) ListTasksByOwner(ctx context.Context, owner int64, page domain.Page) ([]domain.Task, error) {
	page = page.Normalize()
	return cacheaside.Read(ctx, s.policy, s.policy.TasksByOwner(owner, page.Limit, page.Offset), func(ctx context.Context) ([]domain.Task, error) {
		tasks, err := s.store.FindTasksByOwner(ctx, owner, page.Limit, page.Offset)
		if err != nil {
			return nil, err
		}
		if tasks == nil {
			tasks = []domain.Task{}
		}
		return tasks, nil
	})
}

// CountTasksByOwner returns how many tasks owner has.
func (s *TaskService) CountTasksByOwner(ctx context.Context, owner int64) (int, error) {
	return cacheaside.Read(ctx, s.policy, s.policy.TaskCount(owner), func(ctx context.Context) (int, error) {
		return s.store.CountTasksByOwner(ctx, owner)
	})
}

// CreateTask inserts a TODO task for an existing owner and evicts the
// owner's cached windows and count.
func (s *TaskService) CreateTask(ctx context.Context, in domain.NewTask) (domain.Task, error) {
	if err := in.Validate(s.opts.now()); err != nil {
		return domain.Task{}, err
	}

	if _, err := s.users.GetUser(ctx, in.OwnerID); err != nil {
		return domain.Task{}, err
	}

	task, err := s.store.SaveTask(ctx, domain.Task{
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusTodo,
		Deadline:    in.Deadline.UTC(),
	})
	if err != nil {
		return domain.Task{}, err
	}

	s.policy.EvictGroup(ctx, s.policy.OwnerWindows(in.OwnerID), s.policy.TaskCount(in.OwnerID))

	s.opts.logger.Info("task created", "task_id", task.ID, "user_id", task.OwnerID)
	return task, nil
}

// StartTask moves a TODO task owned by caller to IN_PROGRESS.
func (s *TaskService) StartTask(ctx context.Context, id, caller int64) (domain.Task, error) {
	return s.transition(ctx, id, caller, domain.StatusInProgress)
}

// EndTask moves an IN_PROGRESS task owned by caller to DONE and records the
// completion time.
func (s *TaskService) EndTask(ctx context.Context, id, caller int64) (domain.Task, error) {
	task, err := s.transition(ctx, id, caller, domain.StatusDone)
	if err != nil {
		return domain.Task{}, err
	}
	telemetry.SafeInc(s.opts.sink, s.opts.logger, telemetry.TasksCompleted)
	return task, nil
}

func (s *TaskService) transition(ctx context.Context, id, caller int64, to domain.Status) (domain.Task, error) {
	if err := s.auth.Authorize(ctx, id, caller); err != nil {
		return domain.Task{}, err
	}

	// The cached copy is good enough to check ownership, which never changes,
	// but the status must come from the store.
	task, found, err := s.store.FindTaskByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if !found {
		return domain.Task{}, &domain.NotFoundError{Entity: "task", ID: id}
	}

	if !task.Status.CanTransition(to) {
		return domain.Task{}, &domain.TransitionError{TaskID: id, From: task.Status, To: to}
	}

	task.Status = to
	if to == domain.StatusDone {
		completed := s.opts.now().UTC().Truncate(time.Microsecond)
		task.CompletedAt = &completed
	}

	saved, err := s.store.SaveTask(ctx, task)
	if err != nil {
		return domain.Task{}, err
	}

	s.policy.Evict(ctx, s.policy.TaskByID(id))

	s.opts.logger.Info("task status changed", "task_id", id, "user_id", caller, "status", string(to))
	return saved, nil
}

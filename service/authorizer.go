package service

import (
	"context"

	"github.com/goliatone/go-todo-cache/domain"
)

// TaskReader is the read path the ownership check goes through.
type TaskReader interface {
	GetTask(ctx context.Context, id int64) (domain.Task, error)
}

// Authorizer checks that a caller owns a task.
type Authorizer struct {
	tasks TaskReader
}

func NewAuthorizer(tasks TaskReader) *Authorizer {
	return &Authorizer{tasks: tasks}
}

// Authorize returns *domain.AccessDeniedError when caller is not the owner
// of taskID, and the read error when the task cannot be loaded.
func (a *Authorizer) Authorize(ctx context.Context, taskID, caller int64) error {
	task, err := a.tasks.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.OwnerID != caller {
		return &domain.AccessDeniedError{TaskID: taskID, CallerID: caller}
	}
	return nil
}

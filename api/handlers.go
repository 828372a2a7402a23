package api

import (
	"bytes"
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-todo-cache/domain"
)

// TaskService is the task surface the handlers call.
type TaskService interface {
	GetTask(ctx context.Context, id int64) (domain.Task, error)
	ListTasksByOwner(ctx context.Context, owner int64, page domain.Page) ([]domain.Task, error)
	CountTasksByOwner(ctx context.Context, owner int64) (int, error)
	CreateTask(ctx context.Context, in domain.NewTask) (domain.Task, error)
	StartTask(ctx context.Context, id, caller int64) (domain.Task, error)
	EndTask(ctx context.Context, id, caller int64) (domain.Task, error)
}

// UserService is the user surface the handlers call.
type UserService interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
	CreateUser(ctx context.Context, in domain.NewUser) (domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Snapshotter exposes the current counter values.
type Snapshotter interface {
	Snapshot() map[string]int64
}

// Handlers adapts HTTP requests to the task and user services.
type Handlers struct {
	tasks   TaskService
	users   UserService
	metrics Snapshotter
}

func NewHandlers(tasks TaskService, users UserService, metrics Snapshotter) *Handlers {
	return &Handlers{tasks: tasks, users: users, metrics: metrics}
}

// ListTasksResponse is one window of an owner's tasks plus the owner's total.
type ListTasksResponse struct {
	Tasks  []domain.Task `json:"tasks"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// CallerRequest identifies the user performing a status change.
type CallerRequest struct {
	UserID int64 `json:"user_id"`
}

// Health handles GET /health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Metrics handles GET /api/v1/todo/metrics.
func (h *Handlers) Metrics(c *fiber.Ctx) error {
	counters := map[string]int64{}
	if h.metrics != nil {
		counters = h.metrics.Snapshot()
	}
	return c.JSON(fiber.Map{"counters": counters})
}

// GetTask handles GET /api/v1/todo/task/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.tasks.GetTask(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// ListTasksByOwner handles GET /api/v1/todo/task/user/:userId.
func (h *Handlers) ListTasksByOwner(c *fiber.Ctx) error {
	owner, err := paramID(c, "userId")
	if err != nil {
		return err
	}

	page := domain.Page{
		Limit:  c.QueryInt("limit", domain.DefaultPageLimit),
		Offset: c.QueryInt("offset", 0),
	}.Normalize()

	ctx := c.UserContext()
	tasks, err := h.tasks.ListTasksByOwner(ctx, owner, page)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	total, err := h.tasks.CountTasksByOwner(ctx, owner)
	if err != nil {
		return err
	}

	return c.JSON(ListTasksResponse{
		Tasks:  tasks,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// CreateTask handles POST /api/v1/todo/task.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	var req domain.NewTask
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	task, err := h.tasks.CreateTask(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// StartTask handles POST /api/v1/todo/task/start/:id.
func (h *Handlers) StartTask(c *fiber.Ctx) error {
	return h.transition(c, h.tasks.StartTask)
}

// EndTask handles POST /api/v1/todo/task/end/:id.
func (h *Handlers) EndTask(c *fiber.Ctx) error {
	return h.transition(c, h.tasks.EndTask)
}

func (h *Handlers) transition(c *fiber.Ctx, op func(ctx context.Context, id, caller int64) (domain.Task, error)) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	task, err := op(c.UserContext(), id, caller)
	if err != nil {
		return err
	}
	return c.JSON(task)
}

// GetUser handles GET /api/v1/todo/user/:id.
func (h *Handlers) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// CreateUser handles POST /api/v1/todo/user.
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var req domain.NewUser
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.CreateUser(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// DeleteUser handles DELETE /api/v1/todo/user/:id.
func (h *Handlers) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.users.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "deleted": true})
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// callerID reads the acting user from the body, either {"user_id": N} or a
// bare number.
func callerID(c *fiber.Ctx) (int64, error) {
	body := bytes.TrimSpace(c.Body())
	if len(body) > 0 && body[0] != '{' {
		id, err := strconv.ParseInt(string(body), 10, 64)
		if err != nil || id <= 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
		}
		return id, nil
	}

	var req CallerRequest
	if err := c.BodyParser(&req); err != nil || req.UserID <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid user_id")
	}
	return req.UserID, nil
}

package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/goliatone/go-todo-cache/domain"
)

// BasePath is the prefix of every task and user route.
const BasePath = "/api/v1/todo"

// NewApp creates the fiber app with middleware and routes installed.
func NewApp(h *Handlers, log *slog.Logger) *fiber.App {
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-todo-cache",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))
	app.Use(cors.New())

	Register(app, h)
	return app
}

// Register mounts the routes on r.
func Register(r fiber.Router, h *Handlers) {
	r.Get("/health", h.Health)

	todo := r.Group(BasePath)
	todo.Get("/metrics", h.Metrics)

	tasks := todo.Group("/task")
	tasks.Get("/user/:userId", h.ListTasksByOwner)
	tasks.Get("/:id", h.GetTask)
	tasks.Post("/", h.CreateTask)
	tasks.Post("/start/:id", h.StartTask)
	tasks.Post("/end/:id", h.EndTask)

	users := todo.Group("/user")
	users.Get("/:id", h.GetUser)
	users.Post("/", h.CreateUser)
	users.Delete("/:id", h.DeleteUser)
}

// StatusFor maps a service error to its HTTP status code.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)
		message := err.Error()
		if code == fiber.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"request_id", c.Locals("requestid"),
				"err", err,
			)
			message = "Internal Server Error"
		}

		body := fiber.Map{
			"error":  message,
			"code":   code,
			"path":   c.Path(),
			"method": c.Method(),
		}

		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			body["fields"] = verr.Fields
		}

		return c.Status(code).JSON(body)
	}
}

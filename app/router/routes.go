// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/dto"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/handlers"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/app/middleware"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	schedulerHandler handlers.SchedulerHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(schedulerHandler handlers.SchedulerHandlerInterface) Router {
	app := fiber.New(fiber.Config{
		AppName:      "SmallBizAgent Scheduler API",
		ServerHeader: "SmallBizAgent",
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		schedulerHandler: schedulerHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")
	api.Get("/health", r.healthCheck)

	sched := api.Group("/scheduler")
	sched.Get("/status", r.schedulerHandler.Status)
	sched.Post("/recurring/run", r.schedulerHandler.RunRecurring)
	sched.Post("/reminders/:businessId/run", r.schedulerHandler.RunReminders)
	sched.Post("/schedules/:scheduleId/pause", r.schedulerHandler.PauseSchedule)
	sched.Post("/schedules/:scheduleId/resume", r.schedulerHandler.ResumeSchedule)
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware comes first so every log line can carry it
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(recover.New())

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	r.app.Use(middleware.Metrics())
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"service":   "smallbizagent-scheduler",
		},
	})
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "req-" + hex.EncodeToString([]byte(time.Now().UTC().Format("150405.000000000")))
	}
	return hex.EncodeToString(b)
}

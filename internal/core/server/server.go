package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acp-checkout/internal/core/config"
	"acp-checkout/internal/core/logger"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "acp-checkout/docs/swagger"
)

// RayIDHeader carries the per-request correlation id.
const RayIDHeader = "X-Ray-ID"

const healthCheckTimeout = 3 * time.Second

// Route is a single entry of the HTTP route table.
type Route struct {
	Method  string
	Path    string
	Handler fiber.Handler
	// Public routes skip bearer authentication.
	Public bool
}

// HealthCheck checks one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	RayID   string `json:"ray_id,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Server holds the Fiber application and configuration.
type Server struct {
	// App is the main Fiber application instance.
	App *fiber.App
	// cfg holds the application configuration.
	cfg    *config.AppConfig
	auth   fiber.Handler
	checks []HealthCheck
}

// New creates a new Server instance with configured middleware.
func New(cfg *config.AppConfig) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               logger.ServiceName,
		ErrorHandler:          errorHandler,
	})

	app.Use(requestid.New(requestid.Config{
		Header: RayIDHeader,
	}))

	app.Use(recover.New())

	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logger.Get(),
		Fields: []string{"latency", "status", "method", "url", "requestId"},
	}))

	s := &Server{
		App:  app,
		cfg:  cfg,
		auth: BearerAuth(cfg.Checkout.APIKey),
	}

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", s.health)

	return s
}

// Register mounts the given routes. Non-public routes require the bearer key.
func (s *Server) Register(routes ...Route) {
	for _, r := range routes {
		handlers := []fiber.Handler{r.Handler}
		if !r.Public {
			handlers = []fiber.Handler{s.auth, r.Handler}
		}
		s.App.Add(r.Method, r.Path, handlers...)
		logger.Get().Debug("Route registered",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Bool("public", r.Public),
		)
	}
}

// AddHealthCheck adds a dependency check to GET /health.
func (s *Server) AddHealthCheck(name string, check func(ctx context.Context) error) {
	s.checks = append(s.checks, HealthCheck{Name: name, Check: check})
}

// health godoc
// @Summary Service health
// @Description Reports the reachability of the session store and the order backend.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(s.checks))}
	for _, hc := range s.checks {
		if err := hc.Check(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.String("check", hc.Name), zap.Error(err))
			resp.Status = "degraded"
			resp.Checks[hc.Name] = "down"
			continue
		}
		resp.Checks[hc.Name] = "up"
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// RayID returns the request id assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(RayIDHeader)
}

// errorHandler renders framework errors (unknown routes, oversized bodies, panics) as ErrorResponse.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	resp := ErrorResponse{Code: "internal_error", Message: "internal server error", RayID: RayID(c)}
	switch {
	case code == fiber.StatusNotFound:
		resp.Code, resp.Message = "not_found", fe.Message
	case code == fiber.StatusMethodNotAllowed:
		resp.Code, resp.Message = "method_not_allowed", fe.Message
	case code < fiber.StatusInternalServerError && fe != nil:
		resp.Code, resp.Message = "invalid_request", fe.Message
	default:
		logger.WithRequestID(resp.RayID).Error("Unhandled error", zap.Error(err))
	}

	return c.Status(code).JSON(resp)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.ServerPort)
	logger.Get().Info("Starting server", zap.String("address", addr))
	return s.App.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.App.ShutdownWithTimeout(timeout)
}

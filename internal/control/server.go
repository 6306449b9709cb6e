// Package control exposes the installation over HTTP and websockets: shape and
// mute commands, a live status feed and a pose ingest for external hand trackers.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"ambient/internal/installation"
)

// Controller is the part of the installation the server drives. Every method
// must be safe to call from request goroutines.
type Controller interface {
	Submit(installation.Command) error
	SubmitPose(installation.PoseEvent) error
	Status() installation.Status
}

type Server struct {
	app    *fiber.App
	ctrl   Controller
	status *Hub
	logger *slog.Logger
}

func NewServer(ctrl Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "control")
	s := &Server{
		ctrl:   ctrl,
		status: NewHub("status", logger),
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "ambient",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/shapes", s.handleShapes)
	api.Post("/shape/:name", s.handleSelectShape)
	api.Post("/mute", s.handleMute)
	api.Post("/unlock", s.handleUnlock)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/pose", websocket.New(s.handlePoseWS))

	s.app = app
	return s
}

// App returns the fiber app, for tests and embedding.
func (s *Server) App() *fiber.App { return s.app }

// Publish pushes a status snapshot to every /ws/status subscriber.
func (s *Server) Publish(st installation.Status) {
	if err := s.status.BroadcastJSON(st); err != nil {
		s.logger.Warn("status encode", "err", err)
	}
}

// Serve listens on addr and serves until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("control server: %w", err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener runs the status hub and serves on ln until ctx is done.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	go s.status.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("control server listening", "addr", ln.Addr().String())
		errc <- s.app.Listener(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("control server: %w", err)
	case <-ctx.Done():
	}
	if err := s.app.ShutdownWithTimeout(2 * time.Second); err != nil {
		return fmt.Errorf("control shutdown: %w", err)
	}
	if err := <-errc; err != nil {
		s.logger.Debug("listener closed", "err", err)
	}
	return nil
}

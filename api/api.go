package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// APIServer wraps the fiber app with its listen address.
type APIServer struct {
	listenAddr string
	App        *fiber.App
}

// NewAPIServer creates the HTTP server.
func NewAPIServer(listenAddr string) *APIServer {
	app := fiber.New(fiber.Config{
		AppName:      "edemy-lms-server",
		ErrorHandler: errorHandler,
	})

	return &APIServer{
		listenAddr: listenAddr,
		App:        app,
	}
}

// Run starts listening. Blocks until the server stops.
func (s *APIServer) Run() error {
	log.Printf("Server listening on %s", s.listenAddr)
	return s.App.Listen(s.listenAddr)
}

// Shutdown gracefully stops the server.
func (s *APIServer) Shutdown() error {
	return s.App.Shutdown()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": err.Error(),
		},
	})
}

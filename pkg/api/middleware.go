package api

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// setupMiddleware installs the global middleware chain: panic recovery,
// request logging and CORS, in that order.
func setupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))
}

// errorHandler renders every handler error as a JSON body with a stable
// shape. Non-fiber errors are masked as internal server errors.
func errorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) {
		fiberErr = fiber.ErrInternalServerError
	}

	return c.Status(fiberErr.Code).JSON(fiber.Map{
		"error": fiberErr.Message,
		"code":  fiberErr.Code,
	})
}

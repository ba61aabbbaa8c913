package handlers

import "github.com/gofiber/fiber/v3"

// ErrQueryNotFound is returned when no registered query matches the given ID
var ErrQueryNotFound = fiber.NewError(fiber.StatusNotFound, "query not found")

// ErrPrefetchUnavailable is returned when no task queue is attached
var ErrPrefetchUnavailable = fiber.NewError(fiber.StatusServiceUnavailable, "prefetch queue not configured")

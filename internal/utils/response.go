package utils

import (
	"errors"
	"log"

	apperrors "fintrack/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// StatusFor maps a domain error kind to an HTTP status.
func StatusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindInvalidRequest:
		return fiber.StatusBadRequest
	case apperrors.KindConversionUnavailable:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Error sends err as a JSON error response. Domain errors expose their
// message and code; anything else is logged and hidden behind a generic 500.
func Error(c *fiber.Ctx, err error) error {
	status := StatusFor(err)

	var de *apperrors.DomainError
	if !errors.As(err, &de) || status == fiber.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
	}
	if de == nil {
		return InternalError(c, "internal server error")
	}
	return Respond(c, status, fiber.Map{"error": err.Error(), "code": de.Code})
}

package utils

import (
	stderrors "errors"

	"pactify/internal/errors"

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

// Created sends a successful creation response.
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

// NotFound sends a JSON error response with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusNotFound, fiber.Map{"error": message})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, fiber.Map{"error": message})
}

// DomainErrorResponse renders a domain error with the HTTP status its code
// maps to. Unknown errors become an opaque 500 so internals never leak.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	var domainErr *errors.DomainError
	if !stderrors.As(err, &domainErr) {
		return InternalError(c, "internal server error")
	}

	status := fiber.StatusBadRequest
	switch domainErr.Code {
	case "KYC_REQUIRED", "WITHDRAWAL_HOLD":
		status = fiber.StatusForbidden
	case "RATE_LIMITED":
		status = fiber.StatusTooManyRequests
	case "PROVIDER_ERROR":
		status = fiber.StatusBadGateway
	case "PAYOUT_NOT_FOUND", "WALLET_NOT_FOUND":
		status = fiber.StatusNotFound
	}

	body := fiber.Map{
		"error": domainErr.Message,
		"code":  domainErr.Code,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return Respond(c, status, body)
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docgate/internal/auth"
	"docgate/internal/http/middleware"
	"docgate/internal/policy"
	"docgate/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response.
// message must be safe to show to the client.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var domainErrors = []errorMapping{
	{auth.ErrMissingCredential, fiber.StatusUnauthorized, "MISSING_CREDENTIAL", "bearer token required"},
	{auth.ErrMalformedCredential, fiber.StatusUnauthorized, "MALFORMED_CREDENTIAL", "malformed token"},
	{auth.ErrExpiredCredential, fiber.StatusUnauthorized, "EXPIRED_CREDENTIAL", "token expired"},
	{auth.ErrInvalidSignature, fiber.StatusUnauthorized, "INVALID_SIGNATURE", "invalid token signature"},
	{auth.ErrIssuerMismatch, fiber.StatusUnauthorized, "ISSUER_MISMATCH", "token issuer not accepted"},
	{auth.ErrVerificationFailed, fiber.StatusInternalServerError, "VERIFICATION_FAILED", "token verification failed"},
	{policy.ErrNotFoundOrDenied, fiber.StatusNotFound, "NOT_FOUND", "Document not found or access denied"},
	{policy.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "insufficient permissions"},
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_INPUT", "id is required"},
}

// writeDomainError renders err using the first matching mapping. Validation
// errors keep their message; anything unknown becomes a generic 500.
func writeDomainError(c *fiber.Ctx, err error) error {
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	if errors.Is(err, policy.ErrInvalidInput) {
		return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return writeFiberError(c, fe.Code)
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func writeFiberError(c *fiber.Ctx, status int) error {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "bad request")
	case fiber.StatusNotFound:
		return writeError(c, status, "NOT_FOUND", "resource not found")
	case fiber.StatusMethodNotAllowed:
		return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
	default:
		if status >= fiber.StatusInternalServerError {
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
		return writeError(c, status, "REQUEST_FAILED", fiber.NewError(status).Message)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses for errors returned by handlers and middleware alike.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeDomainError(c, err)
	}
}

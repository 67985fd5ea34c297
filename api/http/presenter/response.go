package presenter

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Page wraps a window of an ordered collection.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message, Code: codeForStatus(status)})
}

// FromError renders err with the HTTP status matching its code. Internal
// errors are logged and hidden behind a generic message.
func FromError(c *fiber.Ctx, err error) error {
	code := apperr.CodeOf(err)
	status := StatusOf(code)
	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Cause == nil {
		msg = ae.Message
	}
	if status == http.StatusInternalServerError {
		log.Printf("level=error msg=\"request failed\" method=%s path=%s err=%v", c.Method(), c.Path(), err)
		msg = "internal error"
	}
	return JSON(c, status, ErrorResponse{Message: msg, Code: code})
}

// StatusOf maps an apperr code to an HTTP status.
func StatusOf(code string) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict, apperr.CodeNoSignerAvailable:
		return http.StatusConflict
	case apperr.CodeUserRejected:
		return http.StatusForbidden
	case apperr.CodeCapabilityUnavailable:
		return http.StatusServiceUnavailable
	case apperr.CodeNetworkSwitchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return apperr.CodeValidation
	case http.StatusUnauthorized:
		return apperr.CodeUnauthorized
	case http.StatusForbidden:
		return apperr.CodeForbidden
	case http.StatusNotFound:
		return apperr.CodeNotFound
	case http.StatusConflict:
		return apperr.CodeConflict
	default:
		return apperr.CodeInternal
	}
}

package presenter

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mk-2871/Proof-of-Talent/pkg/apperr"
)

func TestStatusOf(t *testing.T) {
	cases := map[string]int{
		apperr.CodeValidation:            http.StatusBadRequest,
		apperr.CodeUnauthorized:          http.StatusUnauthorized,
		apperr.CodeForbidden:             http.StatusForbidden,
		apperr.CodeNotFound:              http.StatusNotFound,
		apperr.CodeConflict:              http.StatusConflict,
		apperr.CodeNoSignerAvailable:     http.StatusConflict,
		apperr.CodeUserRejected:          http.StatusForbidden,
		apperr.CodeCapabilityUnavailable: http.StatusServiceUnavailable,
		apperr.CodeNetworkSwitchFailed:   http.StatusBadGateway,
		apperr.CodeInternal:              http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusOf(code), code)
	}
}

func render(t *testing.T, err error) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return FromError(c, err) })
	resp, e := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, e)
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestFromError(t *testing.T) {
	code, body := render(t, fmt.Errorf("apply: %w", apperr.Validation("invalid payout wallet %q", "0x1")))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `{"message":"invalid payout wallet \"0x1\"","code":"VALIDATION_ERROR"}`, body)

	code, body = render(t, errors.New("pgx: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `{"message":"internal error","code":"INTERNAL_ERROR"}`, body)
}

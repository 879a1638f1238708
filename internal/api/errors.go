package api

import (
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"kusina-service/internal/service"
	"net/http"
	"strings"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errorKinds = []struct {
	err    error
	status int
	reason string
}{
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrInternal, http.StatusInternalServerError, "internal"},
}

func reasonFor(status int) string {
	for _, k := range errorKinds {
		if k.status == status {
			return k.reason
		}
	}
	if status == http.StatusTooManyRequests {
		return "rate_limited"
	}
	return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// errorBody maps service error kinds and echo errors to a status and body.
func errorBody(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{Error: reasonFor(he.Code), Message: fmt.Sprint(he.Message)}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			msg := strings.TrimPrefix(err.Error(), k.err.Error()+": ")
			return k.status, ErrorResponse{Error: k.reason, Message: msg}
		}
	}

	logger.Error().Err(err).Msg("Unclassified error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: "internal server error"}
}

// HTTPErrorHandler writes every error as an ErrorResponse.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorBody(err)
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error writing error response")
	}
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", service.ErrInvalidInput, fmt.Sprintf(format, args...))
}

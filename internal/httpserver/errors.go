package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const internalMessage = "internal error"

// statusOf maps a service error to the HTTP status it is reported with.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrCheckout) && errors.Is(err, service.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrCapacity),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, transport.ErrorResponse{Success: false, Message: msg})
}

// respond logs err under op and writes the failure body. Server errors never
// leak their text to the client.
func respond(c echo.Context, l *slog.Logger, op string, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", status, "error", err)
		return fail(c, status, internalMessage)
	}
	l.Warn(op+"_error", "status", status, "error", err)
	return fail(c, status, err.Error())
}

func currentUser(c echo.Context) (uint, error) {
	return auth.UserID(c)
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s", service.ErrValidation, name)
	}
	return uint(id), nil
}

// ErrorHandler renders errors that escape handlers, including echo's own
// routing and middleware errors, in the common failure shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, msg := http.StatusInternalServerError, internalMessage
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if status < http.StatusInternalServerError {
			msg = fmt.Sprint(he.Message)
		}
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", status, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = fail(c, status, msg)
	}
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", err)
	}
}

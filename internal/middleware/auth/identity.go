package auth

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"

	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var ErrUnauthorized = errors.New("unauthorized")

func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}

// UserID returns the numeric id the auth middleware stored for the request.
func UserID(c echo.Context) (uint, error) {
	s, ok := c.Get(CtxUserID).(string)
	if !ok || s == "" {
		return 0, ErrUnauthorized
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrUnauthorized
	}
	return uint(id), nil
}

func Role(c echo.Context) string {
	role, _ := c.Get(CtxRole).(string)
	return role
}

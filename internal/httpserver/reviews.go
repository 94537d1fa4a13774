package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func actor(c echo.Context) (service.Actor, error) {
	userID, err := currentUser(c)
	if err != nil {
		return service.Actor{}, err
	}
	return service.Actor{UserID: userID, Staff: auth.IsStaff(auth.Role(c))}, nil
}

func (h *ReviewHTTP) AddReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.add")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "add_review", err)
	}
	productID, err := pathID(c, "id")
	if err != nil {
		return respond(c, l, "add_review", err)
	}

	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_review_error", "status", 400, "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	review, err := h.Svc.Add(ctx, userID, productID, req.Rating, req.Comment)
	if err != nil {
		return respond(c, l, "add_review", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "message": "review added", "review": review})
}

func (h *ReviewHTTP) EditReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.edit")

	who, err := actor(c)
	if err != nil {
		return respond(c, l, "edit_review", err)
	}
	reviewID, err := pathID(c, "id")
	if err != nil {
		return respond(c, l, "edit_review", err)
	}

	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("edit_review_error", "status", 400, "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	review, err := h.Svc.Edit(ctx, who, reviewID, req.Rating, req.Comment)
	if err != nil {
		return respond(c, l, "edit_review", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "review updated", "review": review})
}

func (h *ReviewHTTP) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "reviews.delete")

	who, err := actor(c)
	if err != nil {
		return respond(c, l, "delete_review", err)
	}
	reviewID, err := pathID(c, "id")
	if err != nil {
		return respond(c, l, "delete_review", err)
	}

	if err := h.Svc.Delete(ctx, who, reviewID); err != nil {
		return respond(c, l, "delete_review", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "review deleted"})
}

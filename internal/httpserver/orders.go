package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/receipt"
	"github.com/Skotchmaster/storefront/internal/service"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "list_orders", err)
	}

	page, size := pageParams(c)
	res, err := h.Svc.List(ctx, userID, page, size)
	if err != nil {
		return respond(c, l, "list_orders", err)
	}

	items := res.Items
	if items == nil {
		items = []models.Order{}
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "items": items, "meta": res.Meta})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "get_order", err)
	}

	order, err := h.Svc.Get(ctx, userID, c.Param("number"))
	if err != nil {
		return respond(c, l, "get_order", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "order": order})
}

func (h *OrderHTTP) Receipt(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.receipt")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "get_receipt", err)
	}

	number := c.Param("number")
	body, err := h.Svc.Receipt(ctx, userID, number)
	if err != nil {
		return respond(c, l, "get_receipt", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", receipt.FileName(number)))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", body)
}

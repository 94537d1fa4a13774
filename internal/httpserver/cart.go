package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

type cartResponse struct {
	Success       bool              `json:"success"`
	Items         []models.CartLine `json:"items"`
	TotalQuantity int               `json:"total_quantity"`
	TotalPrice    string            `json:"total_price"`
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "get_cart", err)
	}

	view, err := h.Svc.List(ctx, userID)
	if err != nil {
		return respond(c, l, "get_cart", err)
	}

	items := view.Items
	if items == nil {
		items = []models.CartLine{}
	}
	return c.JSON(http.StatusOK, cartResponse{
		Success:       true,
		Items:         items,
		TotalQuantity: view.TotalQuantity,
		TotalPrice:    view.TotalPrice.StringFixed(2),
	})
}

func (h *CartHTTP) Status(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.status")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "cart_status", err)
	}

	n, err := h.Svc.Count(ctx, userID)
	if err != nil {
		return respond(c, l, "cart_status", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "cart_count": n})
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "add_to_cart", err)
	}

	var req transport.AddItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == 0 {
		l.Warn("add_to_cart_error", "status", 400)
		return fail(c, http.StatusBadRequest, "product_id required")
	}

	res, err := h.Svc.Add(ctx, userID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		return respond(c, l, "add_to_cart", err)
	}

	msg := fmt.Sprintf("%s added to cart", res.ProductName)
	if res.Action == service.ActionUpdated {
		msg = fmt.Sprintf("%s quantity updated to %d", res.ProductName, res.Quantity)
	}
	l.Info("item added to cart", "product_id", req.ProductID, "action", res.Action)
	return c.JSON(http.StatusOK, transport.AddItemResponse{
		Success:   true,
		Message:   msg,
		CartCount: res.CartCount,
		Action:    res.Action,
	})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "update_cart_item", err)
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return respond(c, l, "update_cart_item", err)
	}

	var req transport.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_item_error", "status", 400, "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.UpdateQuantity(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return respond(c, l, "update_cart_item", err)
	}

	return c.JSON(http.StatusOK, transport.UpdateItemResponse{
		Success:     true,
		Message:     fmt.Sprintf("quantity changed from %d to %d", res.OldQuantity, res.NewQuantity),
		OldQuantity: res.OldQuantity,
		NewQuantity: res.NewQuantity,
		CartCount:   res.CartCount,
	})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "remove_cart_item", err)
	}
	itemID, err := pathID(c, "id")
	if err != nil {
		return respond(c, l, "remove_cart_item", err)
	}

	name, err := h.Svc.Remove(ctx, userID, itemID)
	if err != nil {
		return respond(c, l, "remove_cart_item", err)
	}

	msg := "item removed from cart"
	if name != "" {
		msg = fmt.Sprintf("%s removed from cart", name)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": msg})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "clear_cart", err)
	}

	n, err := h.Svc.Clear(ctx, userID)
	if err != nil {
		return respond(c, l, "clear_cart", err)
	}

	msg := "cart is already empty"
	if n > 0 {
		msg = fmt.Sprintf("removed %d items from cart", n)
	}
	l.Info("cart cleared", "removed", n)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": msg, "removed": n})
}

package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout")

	userID, err := currentUser(c)
	if err != nil {
		return respond(c, l, "checkout", err)
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Checkout(ctx, userID, service.CheckoutRequest{
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Phone:         req.Phone,
		Email:         req.Email,
		FullName:      req.FullName,
		Comment:       req.Comment,
	})
	if err != nil {
		return respond(c, l, "checkout", err)
	}

	return c.JSON(http.StatusCreated, transport.CheckoutResponse{
		Success:     true,
		OrderNumber: res.OrderNumber,
		OrderID:     res.OrderID,
		TotalAmount: res.Total.StringFixed(2),
		ReceiptURL:  res.ReceiptURL,
	})
}

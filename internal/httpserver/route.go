package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
)

type Deps struct {
	DB *gorm.DB

	CatalogHandler  *CatalogHTTP
	CartHandler     *CartHTTP
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	ReviewHandler   *ReviewHTTP

	JWTSecret  []byte
	AuthClient middleware.Refresher
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	authMW := middleware.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)

	v1 := e.Group("/api/v1")

	catalog := v1.Group("/catalog", authMW.OptionalAuth)
	catalog.GET("/products", d.CatalogHandler.ListProducts)
	catalog.GET("/products/search", d.CatalogHandler.SearchProducts)
	catalog.GET("/products/:id", d.CatalogHandler.GetProduct)
	catalog.GET("/products/:id/reviews", d.CatalogHandler.ProductReviews)
	catalog.POST("/products/:id/reviews", d.ReviewHandler.AddReview, authMW.RequireAuth)
	catalog.GET("/categories", d.CatalogHandler.Categories)
	catalog.GET("/brands", d.CatalogHandler.Brands)

	cart := v1.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/status", d.CartHandler.Status)
	cart.DELETE("", d.CartHandler.Clear)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)

	v1.POST("/checkout", d.CheckoutHandler.Checkout, authMW.RequireAuth)

	orders := v1.Group("/orders", authMW.RequireAuth)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:number", d.OrderHandler.GetOrder)
	orders.GET("/:number/receipt", d.OrderHandler.Receipt)

	reviews := v1.Group("/reviews", authMW.RequireAuth)
	reviews.PATCH("/:id", d.ReviewHandler.EditReview)
	reviews.DELETE("/:id", d.ReviewHandler.DeleteReview)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}

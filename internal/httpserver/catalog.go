package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogHTTP struct {
	Svc     *service.CatalogService
	Reviews *service.ReviewService
}

type productPageResponse struct {
	Success bool                    `json:"success"`
	Items   []models.ProductListing `json:"items"`
	Meta    util.PageMeta           `json:"meta"`
}

type productResponse struct {
	Success bool `json:"success"`
	*service.ProductDetail
}

func pageParams(c echo.Context) (int, int) {
	return util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list")

	page, size := pageParams(c)
	res, err := h.Svc.List(ctx, service.ProductQuery{
		Query:       c.QueryParam("q"),
		CategoryIDs: util.ParseIDList(c.QueryParam("categories")),
		BrandIDs:    util.ParseIDList(c.QueryParam("brands")),
		Page:        page,
		Size:        size,
	})
	if err != nil {
		return respond(c, l, "list_products", err)
	}

	return c.JSON(http.StatusOK, productPageResponse{Success: true, Items: res.Items, Meta: res.Meta})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page, size := pageParams(c)
	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return respond(c, l, "search_products", err)
	}

	return c.JSON(http.StatusOK, productPageResponse{Success: true, Items: res.Items, Meta: res.Meta})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get")

	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, l, "get_product", err)
	}

	detail, err := h.Svc.Get(ctx, id, auth.IsStaff(auth.Role(c)))
	if err != nil {
		return respond(c, l, "get_product", err)
	}

	return c.JSON(http.StatusOK, productResponse{Success: true, ProductDetail: detail})
}

func (h *CatalogHTTP) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.categories")

	items, err := h.Svc.Categories(ctx)
	if err != nil {
		return respond(c, l, "list_categories", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "items": items})
}

func (h *CatalogHTTP) Brands(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.brands")

	items, err := h.Svc.Brands(ctx)
	if err != nil {
		return respond(c, l, "list_brands", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "items": items})
}

func (h *CatalogHTTP) ProductReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.reviews")

	id, err := pathID(c, "id")
	if err != nil {
		return respond(c, l, "list_reviews", err)
	}

	reviews, err := h.Reviews.ListForProduct(ctx, id)
	if err != nil {
		return respond(c, l, "list_reviews", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "items": reviews})
}

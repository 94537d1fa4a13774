package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/receipt"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var testSecret = []byte("test-secret")

type testServer struct {
	e   *echo.Echo
	gdb *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gdb := dbtest.New(t)
	r := &repo.GormRepo{DB: gdb}

	store, err := receipt.NewStore(t.TempDir())
	require.NoError(t, err)
	issuer := &service.ReceiptIssuer{Store: store, StoreName: "LUXURY SHOES"}
	reviews := &service.ReviewService{Repo: r}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	Register(e, &Deps{
		DB:              gdb,
		CatalogHandler:  &CatalogHTTP{Svc: &service.CatalogService{Repo: r}, Reviews: reviews},
		CartHandler:     &CartHTTP{Svc: &service.CartService{Repo: r}},
		CheckoutHandler: &CheckoutHTTP{Svc: &service.CheckoutService{Repo: r, Receipts: issuer}},
		OrderHandler:    &OrderHTTP{Svc: &service.OrderService{Repo: r, Receipts: issuer}},
		ReviewHandler:   &ReviewHTTP{Svc: reviews},
		JWTSecret:       testSecret,
	})
	return &testServer{e: e, gdb: gdb}
}

type user struct {
	id   string
	role string
}

var (
	anna  = &user{id: "1", role: "user"}
	boris = &user{id: "2", role: "user"}
	staff = &user{id: "9", role: "staff"}
)

func (s *testServer) do(t *testing.T, as *user, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if as != nil {
		tok, err := tokens.SignAccess(as.id, as.role, time.Now().Add(time.Hour), testSecret)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: tok})
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func failure(t *testing.T, rec *httptest.ResponseRecorder) transport.ErrorResponse {
	t.Helper()
	var out transport.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCartToReceipt(t *testing.T) {
	s := newTestServer(t)
	p := dbtest.Product(t, s.gdb, "Chelsea boots", "10.00", 5)

	rec := s.do(t, anna, http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "added", body["action"])
	assert.EqualValues(t, 3, body["cart_count"])

	rec = s.do(t, anna, http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"quantity":8}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, failure(t, rec).Message, "cart already holds 3")

	var line models.CartItem
	require.NoError(t, s.gdb.Where("user_id = ?", 1).First(&line).Error)

	rec = s.do(t, anna, http.MethodPatch, "/api/v1/cart/items/"+itoa(line.ID), `{"quantity":6}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, failure(t, rec).Message, "only 5 left")

	rec = s.do(t, anna, http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "30.00", body["total_price"])
	assert.EqualValues(t, 3, body["total_quantity"])

	rec = s.do(t, anna, http.MethodPost, "/api/v1/checkout", `{"address":"Moscow, Arbat 10","paymentMethod":"card","fullName":"Anna"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out transport.CheckoutResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, "30.00", out.TotalAmount)
	assert.Equal(t, "/api/v1/orders/"+out.OrderNumber+"/receipt", out.ReceiptURL)

	assert.Equal(t, 2, dbtest.Reload[models.Product](t, s.gdb, p.ID).Stock)

	rec = s.do(t, anna, http.MethodGet, "/api/v1/cart/status", "")
	assert.EqualValues(t, 0, decode(t, rec)["cart_count"])

	rec = s.do(t, anna, http.MethodGet, out.ReceiptURL, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "receipt_"+out.OrderNumber+".txt")
	assert.Contains(t, rec.Body.String(), "3 pcs × 10.00 = 30.00")

	rec = s.do(t, boris, http.MethodGet, out.ReceiptURL, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, anna, http.MethodGet, "/api/v1/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)

	rec = s.do(t, anna, http.MethodGet, "/api/v1/orders/"+out.OrderNumber, "")
	require.Equal(t, http.StatusOK, rec.Code)
	order := decode(t, rec)["order"].(map[string]any)
	assert.Equal(t, "card", order["payment_method"])
}

func TestCheckout_Failures(t *testing.T) {
	s := newTestServer(t)
	p := dbtest.Product(t, s.gdb, "Loafers", "25.50", 2)

	rec := s.do(t, anna, http.MethodPost, "/api/v1/checkout", `{"address":"Somewhere 1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, anna, http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, anna, http.MethodPost, "/api/v1/checkout", `{"address":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, s.gdb.Model(p).Update("stock", 1).Error)
	rec = s.do(t, anna, http.MethodPost, "/api/v1/checkout", `{"address":"Somewhere 1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, anna, http.MethodGet, "/api/v1/cart/status", "")
	assert.EqualValues(t, 2, decode(t, rec)["cart_count"])
}

func TestCart_RemoveAndClear(t *testing.T) {
	s := newTestServer(t)
	dbtest.Product(t, s.gdb, "Sneakers", "40.00", 10)
	dbtest.Product(t, s.gdb, "Sandals", "15.00", 10)

	s.do(t, anna, http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"quantity":1}`)
	s.do(t, anna, http.MethodPost, "/api/v1/cart/items", `{"product_id":2,"quantity":2}`)

	var line models.CartItem
	require.NoError(t, s.gdb.Where("user_id = ? AND product_id = ?", 1, 1).First(&line).Error)

	rec := s.do(t, boris, http.MethodDelete, "/api/v1/cart/items/"+itoa(line.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, anna, http.MethodDelete, "/api/v1/cart/items/"+itoa(line.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sneakers removed from cart", decode(t, rec)["message"])

	rec = s.do(t, anna, http.MethodDelete, "/api/v1/cart/items/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, anna, http.MethodDelete, "/api/v1/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["removed"])

	rec = s.do(t, anna, http.MethodDelete, "/api/v1/cart", "")
	body := decode(t, rec)
	assert.EqualValues(t, 0, body["removed"])
	assert.Equal(t, "cart is already empty", body["message"])
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, nil, http.MethodGet, "/api/v1/cart", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, failure(t, rec).Success)

	rec = s.do(t, nil, http.MethodGet, "/api/v1/catalog/products", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReviews(t *testing.T) {
	s := newTestServer(t)
	dbtest.Product(t, s.gdb, "Oxfords", "99.00", 3)

	rec := s.do(t, anna, http.MethodPost, "/api/v1/catalog/products/1/reviews", `{"rating":5,"comment":"great shoes, very comfy"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["review"].(map[string]any)["id"]

	rec = s.do(t, anna, http.MethodPost, "/api/v1/catalog/products/1/reviews", `{"rating":4,"comment":"second attempt at it"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, anna, http.MethodPost, "/api/v1/catalog/products/1/reviews", `{"rating":4,"comment":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/api/v1/reviews/" + itoa(uint(id.(float64)))
	rec = s.do(t, boris, http.MethodPatch, path, `{"rating":1,"comment":"not my review at all"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, anna, http.MethodPatch, path, `{"rating":4,"comment":"still great after a month"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, nil, http.MethodGet, "/api/v1/catalog/products/1/reviews", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)

	rec = s.do(t, staff, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalog_HiddenProduct(t *testing.T) {
	s := newTestServer(t)
	p := dbtest.Product(t, s.gdb, "Prototype", "1.00", 1)
	require.NoError(t, s.gdb.Model(p).Update("is_published", false).Error)

	rec := s.do(t, nil, http.MethodGet, "/api/v1/catalog/products/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, staff, http.MethodGet, "/api/v1/catalog/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Prototype", decode(t, rec)["product"].(map[string]any)["name"])

	rec = s.do(t, nil, http.MethodGet, "/api/v1/catalog/products/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorHandler(t *testing.T) {
	s := newTestServer(t)
	s.e.GET("/boom", func(echo.Context) error { return gorm.ErrInvalidDB })

	cases := []struct {
		path string
		want transport.ErrorResponse
		code int
	}{
		{"/boom", transport.ErrorResponse{Message: "internal error"}, http.StatusInternalServerError},
		{"/nowhere", transport.ErrorResponse{Message: "Not Found"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := s.do(t, nil, http.MethodGet, tc.path, "")
		assert.Equal(t, tc.code, rec.Code)
		if diff := cmp.Diff(tc.want, failure(t, rec)); diff != "" {
			t.Errorf("%s body mismatch (-want +got):\n%s", tc.path, diff)
		}
	}
}

func TestStatusOf(t *testing.T) {
	got := map[string]int{
		"validation": statusOf(service.ErrValidation),
		"capacity":   statusOf(service.ErrCapacity),
		"stock":      statusOf(service.ErrOutOfStock),
		"empty":      statusOf(service.ErrEmptyCart),
		"missing":    statusOf(service.ErrNotFound),
		"forbidden":  statusOf(service.ErrForbidden),
		"duplicate":  statusOf(service.ErrDuplicate),
		"checkout":   statusOf(service.ErrCheckout),
	}
	want := map[string]int{
		"validation": 400, "capacity": 400, "stock": 400, "empty": 400,
		"missing": 404, "forbidden": 403, "duplicate": 409, "checkout": 500,
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, nil, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, nil, http.MethodGet, "/health/ready", "").Code)
}

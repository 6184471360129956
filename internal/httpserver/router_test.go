package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubCartService struct {
	view     *cartsvc.View
	err      error
	clearErr error
	cleared  bool
}

func (s *stubCartService) Get(_ context.Context, _ string) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) Add(_ context.Context, _, _ string, _ int) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) SetQuantity(_ context.Context, _, _ string, _ int) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) Remove(_ context.Context, _, _ string) (*cartsvc.View, error) {
	return s.view, s.err
}

func (s *stubCartService) Clear(_ context.Context, _ string) error {
	s.cleared = true
	return s.clearErr
}

type stubOrderService struct {
	receipt   *ordersvc.Receipt
	createErr error
	orders    []domain.Order
	order     *domain.Order
	err       error
	list      *ordersvc.ListResult
	stats     *orderrepo.Stats
	lastQuery ordersvc.ListQuery
	lastInput ordersvc.CreateInput
}

func (s *stubOrderService) Create(_ context.Context, _ string, in ordersvc.CreateInput) (*ordersvc.Receipt, error) {
	s.lastInput = in
	return s.receipt, s.createErr
}

func (s *stubOrderService) ListMine(_ context.Context, _ string) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) Cancel(_ context.Context, _ domain.Identity, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) UpdateStatus(_ context.Context, _ domain.Identity, _ string, _ domain.OrderStatus) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(_ context.Context, q ordersvc.ListQuery) (*ordersvc.ListResult, error) {
	s.lastQuery = q
	return s.list, s.err
}

func (s *stubOrderService) Stats(_ context.Context, _, _ string) (*orderrepo.Stats, error) {
	return s.stats, s.err
}

func newTestRouter(cartService cartService, orderService orderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return buildRouter(logDiscard(), nil, Deps{
		CartSvc:  cartService,
		OrderSvc: orderService,
		Identity: GatewayHeaderResolver{},
	})
}

func doRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func customerHeaders() map[string]string {
	return map[string]string{"X-User-Id": "cust-1", "X-User-Role": "customer"}
}

func staffHeaders() map[string]string {
	return map[string]string{"X-User-Id": "admin-1", "X-User-Role": "admin"}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubCartService{}, &stubOrderService{})
	rec := doRequest(router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	router := newTestRouter(&stubCartService{}, &stubOrderService{})
	for _, path := range []string{"/cart", "/order/my-orders", "/order"} {
		rec := doRequest(router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without identity: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestStaffRoutesRejectCustomers(t *testing.T) {
	router := newTestRouter(&stubCartService{}, &stubOrderService{})
	cases := []struct{ method, path string }{
		{http.MethodGet, "/order"},
		{http.MethodGet, "/order/stats"},
		{http.MethodPut, "/order/some-id/status"},
	}
	for _, tc := range cases {
		rec := doRequest(router, tc.method, tc.path, `{"status":"shipping"}`, customerHeaders())
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s as customer: expected 403, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/models"
	"github.com/trunghai04/webmoi-sub001/internal/service"
	"github.com/trunghai04/webmoi-sub001/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() { gin.SetMode(gin.TestMode) }

// stubOrders / stubCart only need to satisfy the interfaces; the handlers have their own tests.
type stubOrders struct{ service.OrderService }

func (stubOrders) Stats(ctx context.Context) (*service.Stats, error) {
	if _, ok := service.UserIDFromContext(ctx); !ok {
		return nil, service.ErrUnauthorized
	}
	return &service.Stats{ByStatus: []service.StatusStats{{Status: models.OrderStatusProcessing}}}, nil
}

type stubCart struct{ service.CartService }

func (stubCart) List(ctx context.Context) (*service.Cart, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("request context has no deadline")
	}
	return &service.Cart{}, nil
}

func newTestRouter(ready func(context.Context) error) (*gin.Engine, *token.HSVerifier) {
	v := token.NewHSVerifier("secret", "storefront-auth", "storefront")
	r := Router(Deps{
		Orders:         stubOrders{},
		Cart:           stubCart{},
		Verifier:       v,
		Log:            zap.NewNop(),
		RequestTimeout: 5 * time.Second,
		Ready:          ready,
	})
	return r, v
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	r, _ = newTestRouter(func(context.Context) error { return errors.New("db down") })
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	r, _ := newTestRouter(nil)
	for _, path := range []string{"/api/v1/orders/stats", "/api/v1/cart"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAPIWithToken(t *testing.T) {
	r, v := newTestRouter(nil)
	signed, _, err := v.SignAccess(uuid.New(), "ROLE_ADMIN", time.Minute)
	require.NoError(t, err)

	for _, path := range []string{"/api/v1/orders/stats", "/api/v1/cart"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path+": "+w.Body.String())
	}
}

func TestRoutesRegistered(t *testing.T) {
	r, _ := newTestRouter(nil)
	want := map[string]bool{
		"POST /api/v1/orders":                   false,
		"GET /api/v1/orders":                    false,
		"GET /api/v1/orders/stats":              false,
		"GET /api/v1/orders/:id":                false,
		"POST /api/v1/orders/:id/cancel":        false,
		"PATCH /api/v1/orders/:id/status":       false,
		"GET /api/v1/cart":                      false,
		"DELETE /api/v1/cart":                   false,
		"GET /api/v1/cart/validate":             false,
		"POST /api/v1/cart/items":               false,
		"PUT /api/v1/cart/items/:product_id":    false,
		"DELETE /api/v1/cart/items/:product_id": false,
		"GET /health":                           false,
	}
	for _, ri := range r.Routes() {
		key := ri.Method + " " + ri.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, seen := range want {
		assert.True(t, seen, "route %s is not registered", route)
	}
}

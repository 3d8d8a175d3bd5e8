package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/ecommerce-core/internal/app"
	"github.com/your-org/ecommerce-core/internal/config"
	"github.com/your-org/ecommerce-core/internal/infrastructure/database"
	apihttp "github.com/your-org/ecommerce-core/internal/interfaces/http"
	"github.com/your-org/ecommerce-core/internal/pkg/auth"
	"github.com/your-org/ecommerce-core/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
}

type testAPI struct {
	t       *testing.T
	app     *app.App
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	cfg := config.FromEnv()
	cfg.Database.Driver = config.DriverMemory
	cfg.Redis.Enabled = false
	cfg.Security.BcryptCost = bcrypt.MinCost
	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"

	a := app.Build(cfg, logger.Discard(), database.NewMemory(), nil)
	t.Cleanup(func() { _ = a.Close() })

	return &testAPI{t: t, app: a, handler: apihttp.NewServer(a).Handler()}
}

func (api *testAPI) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	api.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(api.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (api *testAPI) register(email string) (id, token string) {
	api.t.Helper()
	w, env := api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "password123",
	})
	require.Equal(api.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User        struct{ ID string } `json:"user"`
		AccessToken string              `json:"access_token"`
	}
	require.NoError(api.t, json.Unmarshal(env.Data, &resp))
	return resp.User.ID, resp.AccessToken
}

func (api *testAPI) admin() string {
	api.t.Helper()
	id, _ := api.register("admin@example.com")
	_, err := api.app.Users.SetRole(context.Background(), "admin@example.com", auth.RoleAdmin)
	require.NoError(api.t, err)
	token, err := api.app.JWT.GenerateAccessToken(id, "admin@example.com", auth.RoleAdmin)
	require.NoError(api.t, err)
	return token
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type idOnly struct {
	ID string `json:"id"`
}

func TestHealthReadyMetrics(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")

	w, _ = api.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")

	w, env := api.do(http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.register("jane@example.com")

	w, env := api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": "Jane", "email": "JANE@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "jane@example.com", "password": "wrong-pass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env = api.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "jane@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, _ = api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidBodies_ReportJSONFieldNames(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register("critic@example.com")

	w, env := api.do(http.MethodPost, "/api/v1/reviews", token, gin.H{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request data: product_id is required; rating must be at most 5", env.Message)
	assert.NotContains(t, env.Message, "CreateReviewRequest")

	w, env = api.do(http.MethodPost, "/api/v1/reviews", token, gin.H{"product_id": "p-1", "rating": "five"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request data", env.Message)

	w, env = api.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "A", "email": "nope", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Message, "email must be a valid email address")

	adminToken := api.admin()
	w, env = api.do(http.MethodGet, "/api/v1/admin/journal?limit=0", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid query parameters: limit must be at least 1", env.Message)

	w, env = api.do(http.MethodGet, "/api/v1/admin/journal?limit=lots", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid query parameters", env.Message)
}

func TestCategoryEndpoints_RequireAdminForWrites(t *testing.T) {
	api := newTestAPI(t)
	_, userToken := api.register("user@example.com")
	adminToken := api.admin()

	w, _ := api.do(http.MethodPost, "/api/v1/categories", "", gin.H{"name": "Electronics"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/categories", userToken, gin.H{"name": "Electronics"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := api.do(http.MethodPost, "/api/v1/categories", adminToken, gin.H{"name": "Electronics"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	root := decode[idOnly](t, env)

	w, env = api.do(http.MethodPost, "/api/v1/categories", adminToken, gin.H{"name": "Phones", "parent_id": root.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	child := decode[idOnly](t, env)

	w, env = api.do(http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	w, env = api.do(http.MethodDelete, "/api/v1/categories/"+root.ID, adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cannot delete category with subcategories", env.Message)

	w, _ = api.do(http.MethodPut, "/api/v1/categories/"+root.ID, adminToken, gin.H{"parent_id": child.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/categories/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingFlow(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.admin()
	userID, userToken := api.register("buyer@example.com")
	_, otherToken := api.register("other@example.com")

	_, env := api.do(http.MethodPost, "/api/v1/categories", adminToken, gin.H{"name": "Electronics"})
	cat := decode[idOnly](t, env)

	w, env := api.do(http.MethodPost, "/api/v1/products", adminToken, gin.H{
		"sku": "PH-1", "name": "Phone", "price": 199.99, "category_id": cat.ID, "stock": 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[idOnly](t, env)

	// reviews
	w, _ = api.do(http.MethodPost, "/api/v1/reviews", userToken, gin.H{"product_id": p.ID, "rating": 4, "comment": "good"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, env = api.do(http.MethodPost, "/api/v1/reviews", userToken, gin.H{"product_id": p.ID, "rating": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "you have already reviewed this product", env.Message)

	_, env = api.do(http.MethodGet, "/api/v1/products/"+p.ID, "", nil)
	rated := decode[struct {
		Rating struct {
			Average float64 `json:"average"`
			Count   int     `json:"count"`
		} `json:"rating"`
	}](t, env)
	assert.Equal(t, 4.0, rated.Rating.Average)
	assert.Equal(t, 1, rated.Rating.Count)

	_, env = api.do(http.MethodGet, "/api/v1/reviews/product/"+p.ID, "", nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)
	listed := decode[[]struct {
		UserID string `json:"user_id"`
		User   struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}](t, env)
	require.Len(t, listed, 1)
	assert.Equal(t, userID, listed[0].User.ID)
	assert.Equal(t, "Test User", listed[0].User.Name)

	// wishlist
	w, _ = api.do(http.MethodPost, "/api/v1/users/wishlist/"+p.ID, userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = api.do(http.MethodPost, "/api/v1/users/wishlist/"+p.ID, userToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "product already in wishlist", env.Message)

	// cart
	w, _ = api.do(http.MethodPost, "/api/v1/users/cart", userToken, gin.H{"product_id": p.ID})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodPost, "/api/v1/users/cart", userToken, gin.H{"product_id": p.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodPut, "/api/v1/users/cart/unknown", userToken, gin.H{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, env = api.do(http.MethodGet, "/api/v1/users/cart", userToken, nil)
	cartView := decode[struct {
		TotalItems int `json:"total_items"`
	}](t, env)
	assert.Equal(t, 3, cartView.TotalItems)

	// order from cart
	w, env = api.do(http.MethodPost, "/api/v1/orders", userToken, gin.H{
		"shipping_address": gin.H{"street": "1 Main St", "city": "Pune", "zip_code": "411001", "country": "IN"},
		"payment_method":   "cod",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[struct {
		ID          string  `json:"id"`
		OrderNumber string  `json:"order_number"`
		UserID      string  `json:"user_id"`
		Subtotal    float64 `json:"subtotal"`
	}](t, env)
	assert.Equal(t, userID, placed.UserID)
	assert.InDelta(t, 599.97, placed.Subtotal, 0.001)

	_, env = api.do(http.MethodGet, "/api/v1/users/cart", userToken, nil)
	assert.Equal(t, 0, decode[struct {
		TotalItems int `json:"total_items"`
	}](t, env).TotalItems)

	// visibility
	w, _ = api.do(http.MethodGet, "/api/v1/orders/"+placed.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodGet, "/api/v1/orders/"+placed.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.do(http.MethodGet, "/api/v1/orders/number/"+placed.OrderNumber, userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, env = api.do(http.MethodGet, "/api/v1/orders", userToken, nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	// lifecycle
	w, _ = api.do(http.MethodPut, "/api/v1/orders/"+placed.ID+"/status", userToken, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodPut, "/api/v1/orders/"+placed.ID+"/status", adminToken, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = api.do(http.MethodPut, "/api/v1/orders/"+placed.ID+"/status", adminToken, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/orders/"+placed.ID+"/cancel", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = api.do(http.MethodPost, "/api/v1/orders/"+placed.ID+"/cancel", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Cancelled by customer")

	w, env = api.do(http.MethodPut, "/api/v1/orders/"+placed.ID+"/payment", adminToken, gin.H{"payment_status": "paid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "order is finalized", env.Message)

	// journal
	w, _ = api.do(http.MethodGet, "/api/v1/admin/journal", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = api.do(http.MethodGet, "/api/v1/admin/journal", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
	w, _ = api.do(http.MethodPost, "/api/v1/admin/journal/replay", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReviewOwnership(t *testing.T) {
	api := newTestAPI(t)
	adminToken := api.admin()
	_, authorToken := api.register("author@example.com")
	_, otherToken := api.register("other@example.com")

	_, env := api.do(http.MethodPost, "/api/v1/categories", adminToken, gin.H{"name": "Books"})
	cat := decode[idOnly](t, env)
	_, env = api.do(http.MethodPost, "/api/v1/products", adminToken, gin.H{
		"sku": "BK-1", "name": "Novel", "price": 12.5, "category_id": cat.ID,
	})
	p := decode[idOnly](t, env)

	_, env = api.do(http.MethodPost, "/api/v1/reviews", authorToken, gin.H{"product_id": p.ID, "rating": 5})
	review := decode[idOnly](t, env)

	w, _ := api.do(http.MethodPut, "/api/v1/reviews/"+review.ID, otherToken, gin.H{"rating": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodPut, "/api/v1/reviews/missing", authorToken, gin.H{"rating": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = api.do(http.MethodPut, "/api/v1/reviews/"+review.ID+"/approval", authorToken, gin.H{"approved": false})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodPut, "/api/v1/reviews/"+review.ID+"/approval", adminToken, gin.H{"approved": false})
	assert.Equal(t, http.StatusOK, w.Code)

	_, env = api.do(http.MethodGet, "/api/v1/reviews/product/"+p.ID, "", nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)

	w, _ = api.do(http.MethodDelete, "/api/v1/reviews/"+review.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

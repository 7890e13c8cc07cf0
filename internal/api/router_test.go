package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/auth"
	"github.com/lookprice/lookprice/internal/live"
	"github.com/lookprice/lookprice/internal/middleware"
	"github.com/lookprice/lookprice/internal/models"
	"github.com/lookprice/lookprice/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"
const testCurrency = "TRY"

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer wires real handlers over in-memory repositories, with the same
// routes and middleware main.go registers.
type testServer struct {
	engine *gin.Engine

	stores   *memStoreRepo
	users    *memUserRepo
	products *memProductRepo
	scans    *memScanRepo
	branding *memBrandingCache
	hub      *live.Hub

	analytics *AnalyticsHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	users := newMemUserRepo()
	stores := newMemStoreRepo(users)
	products := newMemProductRepo()
	scans := newMemScanRepo(products)
	branding := newMemBrandingCache()
	hub := live.NewHub(logger)

	authHandler := NewAuthHandler(users, testSecret, time.Hour, logger)
	publicHandler := NewPublicHandler(stores, products, scans, branding, hub, logger)
	adminHandler := NewAdminHandler(stores, users, branding, testCurrency, logger)
	productHandler := NewProductHandler(products, testCurrency, logger)
	importHandler := NewImportHandler(products, testCurrency, logger)
	userHandler := NewUserHandler(users, logger)
	analyticsHandler := NewAnalyticsHandler(scans, logger)
	brandingHandler := NewBrandingHandler(stores, branding, logger)

	engine := gin.New()

	public := engine.Group("/api/public")
	public.GET("/store/:slug", publicHandler.GetBranding)
	public.GET("/scan/:slug/:barcode", publicHandler.Scan)

	engine.POST("/api/auth/login", authHandler.Login)

	admin := engine.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(testSecret), middleware.RequireSuperadmin())
	admin.GET("/stores", adminHandler.ListStores)
	admin.POST("/stores", adminHandler.CreateStore)
	admin.PUT("/stores/:id", adminHandler.UpdateStore)
	admin.POST("/stores/bulk-subscription", adminHandler.BulkSubscription)
	admin.GET("/stats", adminHandler.Stats)

	store := engine.Group("/api/store")
	store.Use(middleware.AuthMiddleware(testSecret))
	store.GET("/me", userHandler.GetMe)
	store.GET("/products", productHandler.List)
	store.POST("/products", productHandler.Create)
	store.PUT("/products/:id", productHandler.Update)
	store.DELETE("/products/:id", productHandler.Delete)
	store.DELETE("/products", productHandler.DeleteAll)
	store.POST("/import", importHandler.Import)
	store.GET("/users", userHandler.List)
	store.POST("/users", userHandler.Invite)
	store.DELETE("/users/:id", userHandler.Delete)
	store.GET("/analytics", analyticsHandler.Get)
	store.POST("/branding", brandingHandler.Update)

	return &testServer{
		engine:    engine,
		stores:    stores,
		users:     users,
		products:  products,
		scans:     scans,
		branding:  branding,
		hub:       hub,
		analytics: analyticsHandler,
	}
}

// seedStore creates a store plus its owner and returns both.
func (ts *testServer) seedStore(t *testing.T, name, slug string) (*models.Store, *models.User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store, owner, err := ts.stores.CreateWithOwner(context.Background(), repository.StoreParams{
		Name:         name,
		Slug:         slug,
		PrimaryColor: "#4f46e5",
		Currency:     testCurrency,
	}, "owner-"+slug+"@example.com", string(hash))
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store, owner
}

func (ts *testServer) seedUser(t *testing.T, storeID uuid.UUID, email string, role models.Role) *models.User {
	t.Helper()
	u, err := ts.users.Create(context.Background(), storeID, email, "x", role)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (ts *testServer) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := auth.GenerateToken(u.ID, u.StoreID, u.Role, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

// do issues a request; body (if non-nil) is JSON-encoded, token (if
// non-empty) becomes the bearer header.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, want, w.Body.String())
	}
}

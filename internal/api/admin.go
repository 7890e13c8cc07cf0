package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandler is the superadmin console: tenant provisioning, billing, and
// system-wide stats. The whole route group sits behind RequireSuperadmin, so
// these handlers never re-check the role.
type AdminHandler struct {
	storeRepo       repository.StoreRepository
	userRepo        repository.UserRepository
	branding        BrandingCache
	defaultCurrency string
	logger          *zap.Logger
}

func NewAdminHandler(
	storeRepo repository.StoreRepository,
	userRepo repository.UserRepository,
	branding BrandingCache,
	defaultCurrency string,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		storeRepo:       storeRepo,
		userRepo:        userRepo,
		branding:        branding,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// dateOnly is the wire format for subscription_end.
const dateOnly = "2006-01-02"

type storeRequest struct {
	Name            string `json:"name" binding:"required"`
	Slug            string `json:"slug" binding:"required"`
	Address         string `json:"address"`
	ContactPerson   string `json:"contact_person"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	SubscriptionEnd string `json:"subscription_end"`
	LogoURL         string `json:"logo_url"`
	PrimaryColor    string `json:"primary_color"`
	BackgroundURL   string `json:"background_url"`
	Currency        string `json:"currency"`
}

func (r *storeRequest) params(defaultCurrency string) (repository.StoreParams, error) {
	params := repository.StoreParams{
		Name:          r.Name,
		Slug:          r.Slug,
		Address:       r.Address,
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
		Email:         r.Email,
		LogoURL:       r.LogoURL,
		PrimaryColor:  r.PrimaryColor,
		BackgroundURL: r.BackgroundURL,
		Currency:      r.Currency,
	}
	if params.PrimaryColor == "" {
		params.PrimaryColor = "#4f46e5"
	}
	if params.Currency == "" {
		params.Currency = defaultCurrency
	}
	if r.SubscriptionEnd != "" {
		end, err := time.Parse(dateOnly, r.SubscriptionEnd)
		if err != nil {
			return params, err
		}
		params.SubscriptionEnd = &end
	}
	return params, nil
}

type createStoreRequest struct {
	storeRequest
	OwnerEmail    string `json:"owner_email" binding:"required,email"`
	OwnerPassword string `json:"owner_password" binding:"required,min=8"`
}

// ListStores handles GET /api/admin/stores
func (h *AdminHandler) ListStores(c *gin.Context) {
	stores, err := h.storeRepo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list stores", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stores"})
		return
	}
	c.JSON(http.StatusOK, stores)
}

// CreateStore handles POST /api/admin/stores
//
// Provisions the tenant: the store row plus its owning storeadmin, in one
// transaction inside the repository. Slug and owner email are pre-checked so
// the common duplicate cases come back as 409 rather than a raw constraint
// error; the unique indexes still catch any race.
func (h *AdminHandler) CreateStore(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params, err := req.params(h.defaultCurrency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription_end, expected YYYY-MM-DD"})
		return
	}

	existing, err := h.storeRepo.GetBySlug(c.Request.Context(), req.Slug)
	if err != nil {
		h.logger.Error("failed to check slug", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create store"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "slug already in use"})
		return
	}

	owner, err := h.userRepo.GetByEmail(c.Request.Context(), req.OwnerEmail)
	if err != nil {
		h.logger.Error("failed to check owner email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create store"})
		return
	}
	if owner != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash owner password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create store"})
		return
	}

	store, ownerUser, err := h.storeRepo.CreateWithOwner(c.Request.Context(), params, req.OwnerEmail, string(hash))
	if err != nil {
		h.logger.Error("failed to provision store", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create store"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"store": store,
		"owner": ownerUser,
	})
}

// UpdateStore handles PUT /api/admin/stores/:id
func (h *AdminHandler) UpdateStore(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
		return
	}

	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params, err := req.params(h.defaultCurrency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription_end, expected YYYY-MM-DD"})
		return
	}

	// Fetch first: the pre-update slug is needed below, so a cached entry
	// under the old slug cannot outlive a rename.
	existing, err := h.storeRepo.GetByID(c.Request.Context(), storeID)
	if err != nil {
		h.logger.Error("failed to get store", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update store"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
		return
	}
	oldSlug := existing.Slug

	store, err := h.storeRepo.Update(c.Request.Context(), storeID, params)
	if err != nil {
		h.logger.Error("failed to update store", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update store"})
		return
	}
	if store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
		return
	}

	// The slug or branding may have changed; the public page must not keep
	// serving a stale entry for up to a TTL — under either slug.
	h.branding.Invalidate(c.Request.Context(), oldSlug)
	if store.Slug != oldSlug {
		h.branding.Invalidate(c.Request.Context(), store.Slug)
	}

	c.JSON(http.StatusOK, store)
}

type bulkSubscriptionRequest struct {
	StoreIDs []uuid.UUID `json:"store_ids" binding:"required,min=1"`
	Days     int         `json:"days" binding:"required,gt=0"`
}

// BulkSubscription handles POST /api/admin/stores/bulk-subscription
func (h *AdminHandler) BulkSubscription(c *gin.Context) {
	var req bulkSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.storeRepo.ExtendSubscriptions(c.Request.Context(), req.StoreIDs, req.Days)
	if err != nil {
		h.logger.Error("failed to extend subscriptions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to extend subscriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": updated,
		"total":   len(req.StoreIDs),
	})
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.storeRepo.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

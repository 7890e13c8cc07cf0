package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/auth"
	"github.com/lookprice/lookprice/internal/middleware"
	"github.com/lookprice/lookprice/internal/models"
	"github.com/lookprice/lookprice/internal/repository"
	"go.uber.org/zap"
)

// BrandingHandler lets a storeadmin restyle the public scan page. Billing
// and contact fields stay console-only; this endpoint can only touch the
// theme.
type BrandingHandler struct {
	storeRepo repository.StoreRepository
	branding  BrandingCache
	logger    *zap.Logger
}

func NewBrandingHandler(storeRepo repository.StoreRepository, branding BrandingCache, logger *zap.Logger) *BrandingHandler {
	return &BrandingHandler{storeRepo: storeRepo, branding: branding, logger: logger}
}

type brandingRequest struct {
	StoreID       uuid.UUID `json:"store_id"`
	LogoURL       string    `json:"logo_url"`
	PrimaryColor  string    `json:"primary_color" binding:"required"`
	BackgroundURL string    `json:"background_url"`
	Currency      string    `json:"currency" binding:"required"`
}

// Update handles POST /api/store/branding
func (h *BrandingHandler) Update(c *gin.Context) {
	if !auth.CanManageBranding(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req brandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storeID, ok := storeIDOrAbort(c, req.StoreID)
	if !ok {
		return
	}

	store, err := h.storeRepo.UpdateBranding(c.Request.Context(), storeID, models.Branding{
		LogoURL:       req.LogoURL,
		PrimaryColor:  req.PrimaryColor,
		BackgroundURL: req.BackgroundURL,
		Currency:      req.Currency,
	})
	if err != nil {
		h.logger.Error("failed to update branding", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update branding"})
		return
	}
	if store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
		return
	}

	// Drop the cached public entry so customers see the new theme on the
	// very next scan instead of after the cache TTL.
	h.branding.Invalidate(c.Request.Context(), store.Slug)

	c.JSON(http.StatusOK, store)
}

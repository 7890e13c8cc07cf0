package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lookprice/lookprice/internal/live"
	"github.com/lookprice/lookprice/internal/models"
	"github.com/lookprice/lookprice/internal/observ"
	"github.com/lookprice/lookprice/internal/repository"
	"go.uber.org/zap"
)

// BrandingCache is the slice of the cache layer the handlers touch.
// *cache.BrandingCache satisfies it — including its disabled nil form, whose
// methods all no-op.
type BrandingCache interface {
	Get(ctx context.Context, slug string) (*models.Branding, bool)
	Set(ctx context.Context, slug string, b models.Branding)
	Invalidate(ctx context.Context, slug string)
}

// PublicHandler serves the customer-facing endpoints — the ones a QR code
// points at. No auth: anyone holding the label can look up the price.
type PublicHandler struct {
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	scanRepo    repository.ScanRepository
	branding    BrandingCache
	hub         *live.Hub
	logger      *zap.Logger
}

func NewPublicHandler(
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	scanRepo repository.ScanRepository,
	branding BrandingCache,
	hub *live.Hub,
	logger *zap.Logger,
) *PublicHandler {
	return &PublicHandler{
		storeRepo:   storeRepo,
		productRepo: productRepo,
		scanRepo:    scanRepo,
		branding:    branding,
		hub:         hub,
		logger:      logger,
	}
}

// GetBranding handles GET /api/public/store/:slug
//
// Read-through cached: branding changes rarely and every scan page load asks
// for it, so a hit skips Postgres entirely.
func (h *PublicHandler) GetBranding(c *gin.Context) {
	slug := c.Param("slug")

	if b, ok := h.branding.Get(c.Request.Context(), slug); ok {
		c.JSON(http.StatusOK, b)
		return
	}

	store, err := h.storeRepo.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("failed to get store by slug", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load store"})
		return
	}
	if store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
		return
	}

	b := store.Branding()
	h.branding.Set(c.Request.Context(), slug, b)
	c.JSON(http.StatusOK, b)
}

type scanResponse struct {
	models.Product
	Store models.Branding `json:"store"`
}

// Scan handles GET /api/public/scan/:slug/:barcode
//
// The scan-log append happens synchronously before the response, but it is
// deliberately not atomic with the lookup: a crash in between loses one
// analytics row, never a customer-facing answer. On a product miss the store
// branding is still returned so the client renders a themed not-found page.
func (h *PublicHandler) Scan(c *gin.Context) {
	slug := c.Param("slug")
	barcode := c.Param("barcode")

	store, err := h.storeRepo.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		h.logger.Error("failed to get store by slug", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		return
	}
	if store == nil {
		observ.ObserveScan("store_miss")
		c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
		return
	}

	product, err := h.productRepo.GetByBarcode(c.Request.Context(), store.ID, barcode)
	if err != nil {
		h.logger.Error("failed to get product by barcode", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		return
	}
	if product == nil {
		observ.ObserveScan("product_miss")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "product not found",
			"store": store.Branding(),
		})
		return
	}

	ev, err := h.scanRepo.Append(c.Request.Context(), store.ID, product.ID)
	if err != nil {
		// The customer still gets their price; only analytics lost a row.
		h.logger.Error("failed to append scan log", zap.Error(err))
	} else {
		h.hub.Publish(store.ID, live.Event{
			ProductID: product.ID,
			Name:      product.Name,
			Barcode:   product.Barcode,
			ScannedAt: ev.CreatedAt,
		})
	}

	observ.ObserveScan("hit")
	c.JSON(http.StatusOK, scanResponse{
		Product: *product,
		Store:   store.Branding(),
	})
}

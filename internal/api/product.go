package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/auth"
	"github.com/lookprice/lookprice/internal/middleware"
	"github.com/lookprice/lookprice/internal/repository"
	"go.uber.org/zap"
)

// ProductHandler is the tenant-scoped catalog CRUD. Reads are open to every
// role in the store; writes are gated by the authorization predicates, and
// the effective store id always comes from middleware.EffectiveStoreID —
// no handler reads a store id off the request on its own.
type ProductHandler struct {
	repo            repository.ProductRepository
	defaultCurrency string
	logger          *zap.Logger
}

func NewProductHandler(repo repository.ProductRepository, defaultCurrency string, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{repo: repo, defaultCurrency: defaultCurrency, logger: logger}
}

// productRequest is the write shape. Price is a pointer so that an explicit
// 0 is distinguishable from a missing field (0 is a legal price, absent is
// not). StoreID is only honored for superadmin callers.
type productRequest struct {
	StoreID     uuid.UUID `json:"store_id"`
	Barcode     string    `json:"barcode" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Price       *float64  `json:"price" binding:"required,gte=0"`
	Currency    string    `json:"currency"`
	Description string    `json:"description"`
}

func (r *productRequest) params(defaultCurrency string) repository.ProductParams {
	currency := r.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return repository.ProductParams{
		Barcode:     r.Barcode,
		Name:        r.Name,
		Price:       *r.Price,
		Currency:    currency,
		Description: r.Description,
	}
}

func storeIDOrAbort(c *gin.Context, bodyStoreID uuid.UUID) (uuid.UUID, bool) {
	storeID, err := middleware.EffectiveStoreID(c, bodyStoreID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return uuid.Nil, false
	}
	return storeID, true
}

// List handles GET /api/store/products
func (h *ProductHandler) List(c *gin.Context) {
	storeID, ok := storeIDOrAbort(c, uuid.Nil)
	if !ok {
		return
	}

	products, err := h.repo.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// Create handles POST /api/store/products
//
// Upsert semantics: posting a barcode that already exists in the store
// replaces that product's fields, it never creates a second row.
func (h *ProductHandler) Create(c *gin.Context) {
	if !auth.CanWriteCatalog(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storeID, ok := storeIDOrAbort(c, req.StoreID)
	if !ok {
		return
	}

	product, err := h.repo.Upsert(c.Request.Context(), storeID, req.params(h.defaultCurrency))
	if err != nil {
		h.logger.Error("failed to upsert product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update handles PUT /api/store/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	if !auth.CanWriteCatalog(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storeID, ok := storeIDOrAbort(c, req.StoreID)
	if !ok {
		return
	}

	product, err := h.repo.Update(c.Request.Context(), storeID, productID, req.params(h.defaultCurrency))
	if err != nil {
		h.logger.Error("failed to update product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /api/store/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if !auth.CanWriteCatalog(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	storeID, ok := storeIDOrAbort(c, uuid.Nil)
	if !ok {
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), storeID, productID)
	if err != nil {
		h.logger.Error("failed to delete product", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// DeleteAll handles DELETE /api/store/products
//
// Destructive bulk deletion — storeadmin (or superadmin) only; editors may
// not wipe the catalog.
func (h *ProductHandler) DeleteAll(c *gin.Context) {
	if !auth.CanBulkDeleteCatalog(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	storeID, ok := storeIDOrAbort(c, uuid.Nil)
	if !ok {
		return
	}

	removed, err := h.repo.DeleteAll(c.Request.Context(), storeID)
	if err != nil {
		h.logger.Error("failed to delete all products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}

package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/auth"
	"github.com/lookprice/lookprice/internal/middleware"
	"github.com/lookprice/lookprice/internal/repository"
	"go.uber.org/zap"
)

// ImportHandler bulk-loads a catalog from already-parsed spreadsheet rows.
// Parsing the file itself (xlsx/csv) happens client-side; the API receives
// string cells plus a column mapping.
type ImportHandler struct {
	repo            repository.ProductRepository
	defaultCurrency string
	logger          *zap.Logger
}

func NewImportHandler(repo repository.ProductRepository, defaultCurrency string, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{repo: repo, defaultCurrency: defaultCurrency, logger: logger}
}

// columnMapping gives the index of each field in a row; -1 means the sheet
// has no such column.
type columnMapping struct {
	Barcode     int `json:"barcode"`
	Name        int `json:"name"`
	Price       int `json:"price"`
	Currency    int `json:"currency"`
	Description int `json:"description"`
}

type importRequest struct {
	StoreID uuid.UUID     `json:"store_id"`
	Rows    [][]string    `json:"rows" binding:"required"`
	Mapping columnMapping `json:"mapping"`
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Import handles POST /api/store/import
//
// Bad rows are skipped, not errors: a 5 000-row sheet with three typos
// should load 4 997 products, and the {count, total} response tells the
// operator exactly how many landed. Each accepted row is an upsert keyed on
// (store, barcode), so re-running the same import is harmless — which is
// also why the per-row commit (rather than one big transaction) is safe: a
// mid-import failure is recovered by simply importing again.
func (h *ImportHandler) Import(c *gin.Context) {
	if !auth.CanWriteCatalog(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storeID, ok := storeIDOrAbort(c, req.StoreID)
	if !ok {
		return
	}

	accepted := 0
	for _, row := range req.Rows {
		barcode := cell(row, req.Mapping.Barcode)
		name := cell(row, req.Mapping.Name)
		if barcode == "" || name == "" {
			continue
		}

		// ParseFloat happily returns NaN and ±Inf, and NaN even slips past
		// the < 0 check; none of them are prices, and a stored NaN would
		// break JSON rendering of the whole catalog.
		price, err := strconv.ParseFloat(strings.ReplaceAll(cell(row, req.Mapping.Price), ",", "."), 64)
		if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			continue
		}

		currency := cell(row, req.Mapping.Currency)
		if currency == "" {
			currency = h.defaultCurrency
		}

		params := repository.ProductParams{
			Barcode:     barcode,
			Name:        name,
			Price:       price,
			Currency:    currency,
			Description: cell(row, req.Mapping.Description),
		}
		if _, err := h.repo.Upsert(c.Request.Context(), storeID, params); err != nil {
			// A store-layer failure mid-import aborts the batch; rows
			// already committed stay (idempotent upserts, re-run to finish).
			h.logger.Error("import upsert failed", zap.Error(err), zap.String("barcode", barcode))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "import failed partway",
				"count": accepted,
				"total": len(req.Rows),
			})
			return
		}
		accepted++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   accepted,
		"total":   len(req.Rows),
	})
}

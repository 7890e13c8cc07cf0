package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/repository"
	"go.uber.org/zap"
)

// Fixed shapes of the dashboard: a trailing 7-day series, top 5 products,
// last 10 scans. Recomputed from the ledger on every call — no caching,
// the aggregation queries are cheap at this volume.
const (
	analyticsWindowDays = 7
	topProductsLimit    = 5
	recentScansLimit    = 10
)

// AnalyticsHandler serves the read-only scan aggregations.
type AnalyticsHandler struct {
	scanRepo repository.ScanRepository
	logger   *zap.Logger

	// now is swappable in tests so the 7-day window is deterministic.
	now func() time.Time
}

func NewAnalyticsHandler(scanRepo repository.ScanRepository, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{scanRepo: scanRepo, logger: logger, now: time.Now}
}

type dailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type analyticsResponse struct {
	TotalScans  int64                         `json:"total_scans"`
	Daily       []dailyCount                  `json:"daily"`
	TopProducts []repository.ProductScanCount `json:"top_products"`
	Recent      []repository.RecentScan       `json:"recent"`
}

// Get handles GET /api/store/analytics
func (h *AnalyticsHandler) Get(c *gin.Context) {
	storeID, ok := storeIDOrAbort(c, uuid.Nil)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	total, err := h.scanRepo.TotalByStore(ctx, storeID)
	if err != nil {
		h.logger.Error("failed to count scans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}

	// Window start: midnight UTC six days ago, so today is the seventh and
	// last entry.
	today := h.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(analyticsWindowDays - 1))

	counts, err := h.scanRepo.DailyCounts(ctx, storeID, since)
	if err != nil {
		h.logger.Error("failed to load daily counts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}

	// Always exactly 7 entries, oldest first, zero-filled — the chart on the
	// dashboard must not skip quiet days.
	daily := make([]dailyCount, 0, analyticsWindowDays)
	for i := 0; i < analyticsWindowDays; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		daily = append(daily, dailyCount{Date: day, Count: counts[day]})
	}

	top, err := h.scanRepo.TopProducts(ctx, storeID, topProductsLimit)
	if err != nil {
		h.logger.Error("failed to load top products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}

	recent, err := h.scanRepo.Recent(ctx, storeID, recentScansLimit)
	if err != nil {
		h.logger.Error("failed to load recent scans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}

	c.JSON(http.StatusOK, analyticsResponse{
		TotalScans:  total,
		Daily:       daily,
		TopProducts: top,
		Recent:      recent,
	})
}

package handler

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/reuben-idan/alx-backend-storage/internal/repository"
	"github.com/reuben-idan/alx-backend-storage/internal/webcache"
	"github.com/reuben-idan/alx-backend-storage/pkg/apierror"
	"github.com/reuben-idan/alx-backend-storage/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	webCache  *webcache.WebCache
	fetchLog  repository.FetchLogRepository // nil when the journal is disabled
	storeType string
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	webCache *webcache.WebCache,
	fetchLog repository.FetchLogRepository,
	storeType string,
) *AdminHandler {
	return &AdminHandler{
		webCache:  webCache,
		fetchLog:  fetchLog,
		storeType: storeType,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["store_type"] = h.storeType

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
		"heap_alloc_mb":  float64(memStats.HeapAlloc) / 1024 / 1024,
		"heap_inuse_mb":  float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":         memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	// Web cache hit/miss totals
	if wcStats, err := h.webCache.Stats(ctx); err == nil {
		stats["webcache"] = map[string]interface{}{
			"hits":   wcStats.Hits,
			"misses": wcStats.Misses,
			"status": "connected",
		}
	} else {
		stats["webcache"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	}

	// Fetch journal stats
	if h.fetchLog != nil {
		if _, total, err := h.fetchLog.ListFetches(ctx, 1, 0); err == nil {
			stats["fetch_journal"] = map[string]interface{}{
				"total_fetches": total,
				"status":        "connected",
			}
		} else {
			stats["fetch_journal"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["fetch_journal"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Runtime info
	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// ListFetches handles GET /api/v1/admin/fetches
func (h *AdminHandler) ListFetches(w http.ResponseWriter, r *http.Request) {
	if h.fetchLog == nil {
		response.Error(w, apierror.ServiceUnavailable("fetch journal is not configured"))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	records, total, err := h.fetchLog.ListFetches(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to list fetches"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, records, page, limit, total)
}

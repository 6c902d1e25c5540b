package handler

import (
	"errors"
	"net/http"

	"github.com/reuben-idan/alx-backend-storage/internal/webcache"
	"github.com/reuben-idan/alx-backend-storage/pkg/apierror"
	"github.com/reuben-idan/alx-backend-storage/pkg/response"
)

// PageHandler handles web cache HTTP requests.
type PageHandler struct {
	webCache *webcache.WebCache
}

// NewPageHandler creates a new page handler.
func NewPageHandler(webCache *webcache.WebCache) *PageHandler {
	return &PageHandler{webCache: webCache}
}

// GetPage handles GET /api/v1/page?url=...
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		response.Error(w, apierror.BadRequest("url is required"))
		return
	}

	body, err := h.webCache.GetPage(r.Context(), url)
	if err != nil {
		if errors.Is(err, webcache.ErrUpstream) {
			response.Error(w, apierror.BadGateway("failed to fetch "+url))
			return
		}
		response.Error(w, apierror.InternalError("failed to serve page"))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(body))
}

// GetPageCount handles GET /api/v1/page/count?url=...
func (h *PageHandler) GetPageCount(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		response.Error(w, apierror.BadRequest("url is required"))
		return
	}

	count, err := h.webCache.AccessCount(r.Context(), url)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to read access count"))
		return
	}

	response.OK(w, map[string]any{
		"url":   url,
		"count": count,
	})
}

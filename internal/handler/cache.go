package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/reuben-idan/alx-backend-storage/internal/cache"
	"github.com/reuben-idan/alx-backend-storage/internal/kv"
	"github.com/reuben-idan/alx-backend-storage/pkg/apierror"
	"github.com/reuben-idan/alx-backend-storage/pkg/response"
	"github.com/reuben-idan/alx-backend-storage/pkg/uid"
)

// CacheHandler handles cache-related HTTP requests.
type CacheHandler struct {
	client *cache.Client
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(client *cache.Client) *CacheHandler {
	return &CacheHandler{client: client}
}

// storeRequest is the body of POST /api/v1/cache. Bytes values are
// base64 encoded.
type storeRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// StoreValue handles POST /api/v1/cache
func (h *CacheHandler) StoreValue(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	defer r.Body.Close()

	value, err := decodeStoreValue(req)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}

	key, err := h.client.Store(r.Context(), value)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to store value"))
		return
	}

	response.Created(w, map[string]string{"key": key})
}

// decodeStoreValue converts the request into the typed value to store.
func decodeStoreValue(req storeRequest) (any, error) {
	switch req.Type {
	case "", "string":
		return req.Value, nil
	case "bytes":
		data, err := base64.StdEncoding.DecodeString(req.Value)
		if err != nil {
			return nil, errors.New("value is not valid base64")
		}
		return data, nil
	case "int":
		n, err := strconv.ParseInt(req.Value, 10, 64)
		if err != nil {
			return nil, errors.New("value is not an integer")
		}
		return n, nil
	case "float":
		f, err := strconv.ParseFloat(req.Value, 64)
		if err != nil {
			return nil, errors.New("value is not a float")
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown type %q", req.Type)
	}
}

// GetValue handles GET /api/v1/cache/{key}
func (h *CacheHandler) GetValue(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if !uid.IsValid(key) {
		response.Error(w, apierror.BadRequest("key must be a UUID"))
		return
	}

	as := r.URL.Query().Get("as")
	if as == "" {
		as = "text"
	}

	ctx := r.Context()
	var payload any
	var err error

	switch as {
	case "text":
		payload, err = h.client.GetString(ctx, key)
	case "bytes":
		var data []byte
		data, err = h.client.Get(ctx, key)
		payload = base64.StdEncoding.EncodeToString(data)
	case "int":
		payload, err = h.client.GetInt(ctx, key)
	case "float":
		payload, err = h.client.GetFloat(ctx, key)
	default:
		response.Error(w, apierror.BadRequest("as must be one of text, bytes, int, float"))
		return
	}

	switch {
	case errors.Is(err, kv.ErrNotFound):
		response.Error(w, apierror.NotFound("key not found"))
		return
	case errors.Is(err, cache.ErrDecode):
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	case err != nil:
		response.Error(w, apierror.InternalError("failed to read value"))
		return
	}

	response.OK(w, map[string]any{
		"key":   key,
		"as":    as,
		"value": payload,
	})
}

// Replay handles GET /api/v1/cache/replay/{method}
func (h *CacheHandler) Replay(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")
	if method == "" {
		response.Error(w, apierror.BadRequest("method is required"))
		return
	}

	report, err := h.client.Replay(r.Context(), method)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to build replay report"))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(report))
}

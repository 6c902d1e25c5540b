package middleware_test

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reuben-idan/alx-backend-storage/internal/middleware"
)

// panicChain wires Recovery around RequestID in the same order the
// router does, with a handler that always panics.
func panicChain() http.Handler {
	return middleware.Recovery(middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
}

// captureLog redirects the standard logger while fn runs and returns
// what it wrote.
func captureLog(t *testing.T, fn func()) string {
	t.Helper()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	fn()
	return buf.String()
}

func TestRecoveryLogsRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-id-42")
	rr := httptest.NewRecorder()

	logged := captureLog(t, func() {
		panicChain().ServeHTTP(rr, req)
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "req-id-42", rr.Header().Get("X-Request-ID"))
	assert.Contains(t, logged, "PANIC [req-id-42]: boom")
}

func TestRecoveryLogsGeneratedRequestID(t *testing.T) {
	rr := httptest.NewRecorder()

	logged := captureLog(t, func() {
		panicChain().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	id := rr.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logged, "PANIC ["+id+"]: boom")
}

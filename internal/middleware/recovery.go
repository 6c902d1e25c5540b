package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/reuben-idan/alx-backend-storage/pkg/apierror"
)

// Recovery is a middleware that recovers from panics.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// RequestID runs inside Recovery, so by panic time the
				// id is on the response header, not on r's context.
				log.Printf("PANIC [%s]: %v\n%s", w.Header().Get(headerRequestID), err, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(apierror.InternalError("internal server error").ToJSON())
			}
		}()

		next.ServeHTTP(w, r)
	})
}

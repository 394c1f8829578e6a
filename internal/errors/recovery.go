package errors

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/copyleftdev/RAVINE/internal/logging"
)

// RecoveryMiddleware converts handler panics into 500 responses. The
// panic value and stack are logged with the request identity so a
// crashing job submission never takes the server down.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	recoveryLogger := logger.Named("recovery")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// The connection is gone; nothing useful to write.
					panic(rec)
				}

				recoveryLogger.Error("Recovered from panic", map[string]interface{}{
					"panic":      rec,
					"stack":      string(debug.Stack()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": middleware.GetReqID(r.Context()),
				})

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/GeorgeHategan/sector-rotation/internal/api/handlers"
	"github.com/GeorgeHategan/sector-rotation/internal/api/ws"
	"github.com/GeorgeHategan/sector-rotation/pkg/logger"
)

// NewRouter creates and configures the HTTP router. jobHandler and
// hub may be nil when the API runs without the scheduler or the
// realtime feed.
func NewRouter(scanHandler *handlers.ScanHandler, jobHandler *handlers.JobHandler, hub *ws.Hub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Scan endpoints
	api.HandleFunc("/scans/latest", scanHandler.GetLatest).Methods("GET")
	api.HandleFunc("/scans", scanHandler.GetRange).Methods("GET")
	api.HandleFunc("/scans", scanHandler.Trigger).Methods("POST")
	api.HandleFunc("/sectors", scanHandler.GetSectors).Methods("GET")

	// Scheduler endpoints
	if jobHandler != nil {
		api.HandleFunc("/jobs", jobHandler.GetStats).Methods("GET")
		api.HandleFunc("/jobs/{name}/history", jobHandler.GetHistory).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", jobHandler.RunNow).Methods("POST")
	}

	// Realtime feed
	if hub != nil {
		r.Handle("/ws", hub)
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "sector-rotation-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

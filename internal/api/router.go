package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gometeo/forecast/internal/api/handlers"
)

// NewRouter собирает все маршруты сервиса. metrics может быть nil.
func NewRouter(h *handlers.ForecastHandler, metrics http.Handler, logger *slog.Logger) *mux.Router {
	router := mux.NewRouter()

	// Экран
	router.HandleFunc("/", h.Page).Methods("GET")
	router.HandleFunc("/search", h.Search).Methods("POST")

	// API маршруты
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/forecast", h.GetForecast).Methods("GET")
	api.HandleFunc("/city", h.SetCity).Methods("PUT")
	api.HandleFunc("/health", h.HealthCheck).Methods("GET")
	api.Use(contentTypeMiddleware)

	if metrics != nil {
		router.Handle("/metrics", metrics).Methods("GET")
	}

	router.Use(loggingMiddleware(logger))

	return router
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rw, r)

			logger.Info("HTTP запрос",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// responseWriter запоминает статус ответа для лога
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

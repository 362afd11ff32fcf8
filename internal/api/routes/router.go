package routes

import (
	"net/http"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/api/handlers"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/api/middleware"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.SearchHandler
	queueHandler  *handlers.QueueHandler
	priceHandler  *handlers.PriceHandler
	streamHandler *handlers.StreamHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	queueHandler *handlers.QueueHandler,
	priceHandler *handlers.PriceHandler,
	streamHandler *handlers.StreamHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		searchHandler: searchHandler,
		queueHandler:  queueHandler,
		priceHandler:  priceHandler,
		streamHandler: streamHandler,
		metrics:       metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Liveness endpoints
	r.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Service matching API running!")); err != nil {
			return
		}
	})
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("GET /search-service", r.searchHandler.SearchService)
	r.mux.HandleFunc("GET /search-service-timeline", r.searchHandler.SearchServiceTimeline)

	// Queue endpoint
	r.mux.HandleFunc("POST /add-case-queue", r.queueHandler.AddCaseQueue)

	// Catalog price endpoint
	r.mux.HandleFunc("GET /price", r.priceHandler.GetPrice)

	// Real-time queue updates, available only when the event bus is wired
	if r.streamHandler != nil {
		r.mux.HandleFunc("GET /stream/labs/{id}", r.streamHandler.StreamLabUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so its headers are set on every response.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

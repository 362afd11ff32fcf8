package handlers

import (
	"net/http"
	"strconv"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/application/services"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
)

// SearchHandler handles lab search requests with price and timeline
// predictions
type SearchHandler struct {
	pricing  *services.PricingService
	timeline *services.TimelineService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(pricing *services.PricingService, timeline *services.TimelineService) *SearchHandler {
	return &SearchHandler{
		pricing:  pricing,
		timeline: timeline,
	}
}

// SearchService handles GET /search-service?type=<int>&service=<id>
func (h *SearchHandler) SearchService(w http.ResponseWriter, r *http.Request) {
	labType, serviceID, ok := searchParams(w, r)
	if !ok {
		return
	}

	quotes, err := h.pricing.SearchPriced(r.Context(), labType, serviceID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, searchResponse(quotes))
}

// SearchServiceTimeline handles GET /search-service-timeline?type=<int>&service=<id>
func (h *SearchHandler) SearchServiceTimeline(w http.ResponseWriter, r *http.Request) {
	labType, serviceID, ok := searchParams(w, r)
	if !ok {
		return
	}

	quotes, err := h.timeline.SearchWithTimeline(r.Context(), labType, serviceID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, searchResponse(quotes))
}

func searchParams(w http.ResponseWriter, r *http.Request) (int, string, bool) {
	query := r.URL.Query()

	rawType := query.Get("type")
	if rawType == "" {
		respondWithError(w, http.StatusBadRequest, "type parameter is required")
		return 0, "", false
	}
	labType, err := strconv.Atoi(rawType)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "type parameter must be an integer")
		return 0, "", false
	}

	serviceID := query.Get("service")
	if serviceID == "" {
		respondWithError(w, http.StatusBadRequest, "service parameter is required")
		return 0, "", false
	}

	return labType, serviceID, true
}

func searchResponse(quotes []*entities.LabQuote) map[string]interface{} {
	return map[string]interface{}{
		"count":   len(quotes),
		"results": quotes,
	}
}

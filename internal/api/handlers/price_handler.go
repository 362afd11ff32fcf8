package handlers

import (
	"net/http"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/repositories"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/utils"
)

// PriceHandler serves the stored catalog price and average turnaround
// for a single lab service
type PriceHandler struct {
	repo repositories.LabRepository
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(repo repositories.LabRepository) *PriceHandler {
	return &PriceHandler{
		repo: repo,
	}
}

// GetPrice handles GET /price?lab_id=<id>&service=<id>
func (h *PriceHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	labID := query.Get("lab_id")
	if labID == "" {
		respondWithError(w, http.StatusBadRequest, "lab_id parameter is required")
		return
	}
	serviceID := query.Get("service")
	if serviceID == "" {
		respondWithError(w, http.StatusBadRequest, "service parameter is required")
		return
	}

	lab, err := h.repo.GetByID(r.Context(), labID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	offering, ok := lab.ServicesAvailable[serviceID]
	if !ok {
		respondWithError(w, http.StatusNotFound, "service not offered by this lab")
		return
	}
	if offering.Price == nil {
		respondWithError(w, http.StatusNotFound, "service has no listed price")
		return
	}

	response := map[string]interface{}{
		"lab_id":     labID,
		"service_id": serviceID,
		"price":      *offering.Price,
	}
	if offering.AvgTATDays != nil {
		response["avg_tat"] = utils.ConvertTAT(*offering.AvgTATDays)
	}

	respondWithJSON(w, http.StatusOK, response)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/application/services"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/domain/entities"
)

// QueueHandler handles case admission requests
type QueueHandler struct {
	admission *services.AdmissionService
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(admission *services.AdmissionService) *QueueHandler {
	return &QueueHandler{
		admission: admission,
	}
}

type addCaseRequest struct {
	LabID       string `json:"lab_id"`
	CaseID      string `json:"case_id"`
	ServiceType string `json:"service_type"`
}

type addCaseResponse struct {
	Message string `json:"message"`
	*entities.AdmissionState
}

// AddCaseQueue handles POST /add-case-queue
func (h *QueueHandler) AddCaseQueue(w http.ResponseWriter, r *http.Request) {
	var req addCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.admission.Admit(r.Context(), req.LabID, req.CaseID, req.ServiceType)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, addCaseResponse{
		Message:        "case added to queue",
		AdmissionState: state,
	})
}

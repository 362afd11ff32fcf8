package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/internal/api/handlers"
	"github.com/SooYeonAhn1/gcp-smart-dental-v2-lab/pkg/utils"
)

func TestPriceHandler_GetPrice_Success(t *testing.T) {
	handler := handlers.NewPriceHandler(newTestRepo(serviceLab("L1", 1, 10)))

	req := httptest.NewRequest("GET", "/price?lab_id=L1&service=5", nil)
	w := httptest.NewRecorder()
	handler.GetPrice(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		LabID     string             `json:"lab_id"`
		ServiceID string             `json:"service_id"`
		Price     float64            `json:"price"`
		AvgTAT    utils.TATBreakdown `json:"avg_tat"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.Equal(t, "L1", response.LabID)
	assert.Equal(t, "5", response.ServiceID)
	assert.InDelta(t, 100.0, response.Price, 1e-9)
	// 1.5 fractional days is one day and twelve hours.
	assert.Equal(t, utils.TATBreakdown{Days: 1, Hours: 12, Minutes: 0}, response.AvgTAT)
}

func TestPriceHandler_GetPrice_MissingParams(t *testing.T) {
	handler := handlers.NewPriceHandler(newTestRepo(serviceLab("L1", 1, 10)))

	for _, url := range []string{"/price", "/price?lab_id=L1", "/price?service=5"} {
		req := httptest.NewRequest("GET", url, nil)
		w := httptest.NewRecorder()
		handler.GetPrice(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
	}
}

func TestPriceHandler_GetPrice_UnknownLabOrService(t *testing.T) {
	handler := handlers.NewPriceHandler(newTestRepo(serviceLab("L1", 1, 10)))

	req := httptest.NewRequest("GET", "/price?lab_id=ghost&service=5", nil)
	w := httptest.NewRecorder()
	handler.GetPrice(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest("GET", "/price?lab_id=L1&service=nope", nil)
	w = httptest.NewRecorder()
	handler.GetPrice(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

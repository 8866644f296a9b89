package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/quickbites/dispatch/internal/server/http/handlers"
	testhelpers "github.com/quickbites/dispatch/internal/test"
)

func TestSetupRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := testhelpers.DispatchFacadeStub{}
	control := &testhelpers.AssignmentControlStub{}
	engine := Setup(facade, control, logger)

	tests := []struct {
		method string
		path   string
		body   any
		status int
	}{
		{http.MethodPost, "/orders", map[string]any{"restaurantId": "r1", "customer": map[string]string{"name": "Amal", "address": "12 Galle Rd"}}, http.StatusCreated},
		{http.MethodGet, "/orders/O1", nil, http.StatusOK},
		{http.MethodGet, "/orders/ready-for-pickup", nil, http.StatusOK},
		{http.MethodPut, "/orders/update-status/O1", map[string]string{"newStatus": "Confirmed"}, http.StatusOK},
		{http.MethodPut, "/orders/cancel/O1", map[string]string{"reason": "late", "cancelledBy": "customer"}, http.StatusOK},
		{http.MethodPut, "/orders/O1/driver-assignment", map[string]string{"driverId": "D1", "assignmentStatus": "accepted"}, http.StatusOK},
		{http.MethodPut, "/orders/O1/driver-location", map[string]float64{"latitude": 6.9, "longitude": 79.86}, http.StatusOK},
		{http.MethodPost, "/drivers", map[string]string{"name": "Nimal"}, http.StatusCreated},
		{http.MethodGet, "/drivers/D1", nil, http.StatusOK},
		{http.MethodPut, "/drivers/D1/availability", map[string]bool{"isAvailable": true}, http.StatusOK},
		{http.MethodPut, "/drivers/D1/location", map[string]float64{"latitude": 6.9, "longitude": 79.86}, http.StatusOK},
		{http.MethodPost, "/drivers/D1/accept-order/O1", nil, http.StatusOK},
		{http.MethodPost, "/drivers/D1/reject-order/O1", map[string]string{"reason": "too far"}, http.StatusOK},
		{http.MethodPost, "/drivers/D1/complete-order/O1", nil, http.StatusOK},
		{http.MethodPost, "/assignment/start", nil, http.StatusOK},
		{http.MethodPost, "/assignment/trigger", nil, http.StatusOK},
		{http.MethodPost, "/assignment/stop", nil, http.StatusOK},
	}

	for _, tt := range tests {
		var reader io.Reader
		if tt.body != nil {
			raw, _ := json.Marshal(tt.body)
			reader = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(tt.method, tt.path, reader)
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		engine.ServeHTTP(resp, req)
		if resp.Code != tt.status {
			t.Fatalf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.status, resp.Code)
		}
	}

	if !control.Started || !control.Stopped || control.SweepRuns != 1 {
		t.Fatalf("expected engine control exercised, got %+v", control)
	}
}

var _ handlers.DispatchFacade = (*testhelpers.DispatchFacadeStub)(nil)

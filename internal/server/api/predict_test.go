package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPredictHandler_ReturnsLabelForTrainedClass(t *testing.T) {
	a := newTestApp(t)

	hv, err := a.Recognizer().Encode(flatLandmarks())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	a.Recognizer().AddExample("THUMBS_UP", hv)

	handler := NewPredictHandler(a)

	pts := flatLandmarks()
	row := make([]landmarkPoint, len(pts))
	for i, p := range pts {
		row[i] = landmarkPoint{X: p.X, Y: p.Y, Z: p.Z}
	}
	body, _ := json.Marshal(predictRequest{Landmarks: row})

	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var response predictResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if response.Label != "THUMBS_UP" {
		t.Errorf("label = %q, want THUMBS_UP", response.Label)
	}
}

func TestPredictHandler_WrongLandmarkCount(t *testing.T) {
	a := newTestApp(t)
	handler := NewPredictHandler(a)

	body, _ := json.Marshal(predictRequest{Landmarks: []landmarkPoint{{X: 1, Y: 2, Z: 3}}})

	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPredictHandler_MethodNotAllowed(t *testing.T) {
	a := newTestApp(t)
	handler := NewPredictHandler(a)

	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func landmarksJSON(t *testing.T) [][]landmarkPoint {
	t.Helper()
	pts := flatLandmarks()
	row := make([]landmarkPoint, len(pts))
	for i, p := range pts {
		row[i] = landmarkPoint{X: p.X, Y: p.Y, Z: p.Z}
	}
	return [][]landmarkPoint{row, row, row}
}

func TestSamplesHandler_CreateAddsExamplesAndPersists(t *testing.T) {
	a := newTestApp(t)
	handler := NewSamplesHandler(a)

	body, _ := json.Marshal(createSamplesRequest{Samples: landmarksJSON(t)})

	req := httptest.NewRequest(http.MethodPost, "/api/gestures/thumbs_up/samples", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	if got := a.Recognizer().GetExampleCount("THUMBS_UP"); got != 3 {
		t.Errorf("example count = %d, want 3", got)
	}

	samples, err := a.Store().Samples().GetByGestureID("THUMBS_UP")
	if err != nil {
		t.Fatalf("GetByGestureID() error = %v", err)
	}
	if len(samples) != 3 {
		t.Errorf("archived samples = %d, want 3", len(samples))
	}
}

func TestSamplesHandler_Create_WrongLandmarkCount(t *testing.T) {
	a := newTestApp(t)
	handler := NewSamplesHandler(a)

	body, _ := json.Marshal(createSamplesRequest{Samples: [][]landmarkPoint{{{X: 1, Y: 2, Z: 3}}}})

	req := httptest.NewRequest(http.MethodPost, "/api/gestures/thumbs_up/samples", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSamplesHandler_Create_EmptySamples(t *testing.T) {
	a := newTestApp(t)
	handler := NewSamplesHandler(a)

	body, _ := json.Marshal(createSamplesRequest{Samples: nil})

	req := httptest.NewRequest(http.MethodPost, "/api/gestures/thumbs_up/samples", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSamplesHandler_List(t *testing.T) {
	a := newTestApp(t)
	handler := NewSamplesHandler(a)

	createBody, _ := json.Marshal(createSamplesRequest{Samples: landmarksJSON(t)})
	req := httptest.NewRequest(http.MethodPost, "/api/gestures/thumbs_up/samples", bytes.NewReader(createBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", rec.Code, http.StatusCreated)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/gestures/thumbs_up/samples", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response listSamplesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(response.Samples) != 3 {
		t.Errorf("listed samples = %d, want 3", len(response.Samples))
	}
}

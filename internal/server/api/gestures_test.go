package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/kuchipudi-hdc/internal/app"
	"github.com/ayusman/kuchipudi-hdc/internal/detector"
	"github.com/ayusman/kuchipudi-hdc/internal/store"
)

// flatLandmarks returns a fixed 21-point hand pose for encoding in tests.
func flatLandmarks() []detector.Point3D {
	hand := detector.ThumbsUpLandmarks()
	return hand.Points[:]
}

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "kuchipudi-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// newTestApp creates an App backed by a fresh temporary store.
func newTestApp(t *testing.T) *app.App {
	t.Helper()
	s := newTestStore(t)
	return app.New(app.Config{Store: s, PluginDir: t.TempDir()})
}

func TestGestureHandler_List(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	hv, err := a.Recognizer().Encode(flatLandmarks())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	a.Recognizer().AddExample("thumbs_up", hv)

	req := httptest.NewRequest(http.MethodGet, "/api/gestures", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response listGesturesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Gestures) != 1 {
		t.Fatalf("expected 1 gesture, got %d", len(response.Gestures))
	}
	if response.Gestures[0].Name != "THUMBS_UP" {
		t.Errorf("expected gesture name THUMBS_UP, got %q", response.Gestures[0].Name)
	}
	if response.Gestures[0].ExampleCount != 1 {
		t.Errorf("expected example count 1, got %d", response.Gestures[0].ExampleCount)
	}
}

func TestGestureHandler_Create(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	body, _ := json.Marshal(createGestureRequest{Name: "wave"})

	req := httptest.NewRequest(http.MethodPost, "/api/gestures", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var response gestureResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Name != "WAVE" {
		t.Errorf("expected name WAVE, got %q", response.Name)
	}
	if response.ExampleCount != 0 {
		t.Errorf("expected example count 0, got %d", response.ExampleCount)
	}

	created, err := a.Store().Gestures().GetByName("WAVE")
	if err != nil {
		t.Fatalf("failed to get created gesture: %v", err)
	}
	if created.Name != "WAVE" {
		t.Errorf("stored gesture name mismatch: got %q, want WAVE", created.Name)
	}
}

func TestGestureHandler_Create_Duplicate(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	body, _ := json.Marshal(createGestureRequest{Name: "wave"})

	req := httptest.NewRequest(http.MethodPost, "/api/gestures", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d, want %d", rec.Code, http.StatusCreated)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/gestures", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d on duplicate, got %d", http.StatusConflict, rec.Code)
	}
}

func TestGestureHandler_Create_InvalidJSON(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	req := httptest.NewRequest(http.MethodPost, "/api/gestures", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGestureHandler_Create_MissingName(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	body, _ := json.Marshal(createGestureRequest{})

	req := httptest.NewRequest(http.MethodPost, "/api/gestures", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGestureHandler_Get(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	hv, err := a.Recognizer().Encode(flatLandmarks())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	a.Recognizer().AddExample("thumbs_up", hv)

	req := httptest.NewRequest(http.MethodGet, "/api/gestures/thumbs_up", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response gestureResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Name != "THUMBS_UP" {
		t.Errorf("expected name THUMBS_UP, got %q", response.Name)
	}
}

func TestGestureHandler_Get_NotFound(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	req := httptest.NewRequest(http.MethodGet, "/api/gestures/non-existent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestGestureHandler_Delete(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	hv, err := a.Recognizer().Encode(flatLandmarks())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	a.Recognizer().AddExample("thumbs_up", hv)
	if err := a.SaveRecognizer(); err != nil {
		t.Fatalf("SaveRecognizer() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/gestures/thumbs_up", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/gestures/thumbs_up", nil)
	rec = httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d after delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestGestureHandler_Delete_PlaceholderOnly(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	createBody, _ := json.Marshal(createGestureRequest{Name: "wave"})
	req := httptest.NewRequest(http.MethodPost, "/api/gestures", bytes.NewReader(createBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", rec.Code, http.StatusCreated)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/gestures/wave", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestGestureHandler_Delete_NotFound(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	req := httptest.NewRequest(http.MethodDelete, "/api/gestures/non-existent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestGestureHandler_MethodNotAllowed(t *testing.T) {
	a := newTestApp(t)
	handler := NewGestureHandler(a)

	// PATCH is not allowed on the collection endpoint
	req := httptest.NewRequest(http.MethodPatch, "/api/gestures", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

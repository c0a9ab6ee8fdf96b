// Package api provides HTTP API handlers for the Kuchipudi gesture recognition system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/kuchipudi-hdc/internal/app"
	"github.com/ayusman/kuchipudi-hdc/internal/store"
)

// GestureHandler handles HTTP requests for learned gesture classes.
type GestureHandler struct {
	app *app.App
}

// NewGestureHandler creates a new GestureHandler backed by the given app.
func NewGestureHandler(a *app.App) *GestureHandler {
	return &GestureHandler{app: a}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse the path to determine if this is a collection or item request
	// Expected paths: /api/gestures or /api/gestures/{name}
	path := strings.TrimPrefix(r.URL.Path, "/api/gestures")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/gestures
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Item endpoint: /api/gestures/{name}
	name := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodDelete:
		h.delete(w, r, name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createGestureRequest struct {
	Name string `json:"name"`
}

type gestureResponse struct {
	Name         string `json:"name"`
	ExampleCount uint64 `json:"example_count"`
}

type listGesturesResponse struct {
	Gestures []gestureResponse `json:"gestures"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/gestures and returns every learned class.
func (h *GestureHandler) list(w http.ResponseWriter, r *http.Request) {
	recognizer := h.app.Recognizer()
	names := recognizer.GetClassNames()

	response := listGesturesResponse{
		Gestures: make([]gestureResponse, 0, len(names)),
	}
	for _, name := range names {
		response.Gestures = append(response.Gestures, gestureResponse{
			Name:         name,
			ExampleCount: recognizer.GetExampleCount(name),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/gestures/{name} and returns one class's example count.
func (h *GestureHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	recognizer := h.app.Recognizer()
	count := recognizer.GetExampleCount(name)

	found := false
	for _, n := range recognizer.GetClassNames() {
		if n == strings.ToUpper(name) {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "Gesture not found")
		return
	}

	writeJSON(w, http.StatusOK, gestureResponse{Name: strings.ToUpper(name), ExampleCount: count})
}

// create handles POST /api/gestures and registers a gesture name with a
// zero-example, zero prototype, ready to accumulate examples via
// POST /api/gestures/{name}/samples. Registration happens directly in
// the store because the recognizer's class map only gains an entry on
// the first AddExample (spec.md §4.6) — this row stakes out the name
// ahead of that.
func (h *GestureHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createGestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	st := h.app.Store()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "No persistence configured")
		return
	}

	name := strings.ToUpper(req.Name)
	dim := h.app.Recognizer().Config().Dim

	g := &store.Gesture{
		ID:           name,
		Name:         name,
		ExampleCount: 0,
		Prototype:    make([]float64, dim),
	}
	if err := st.Gestures().Create(g); err != nil {
		writeError(w, http.StatusConflict, "Gesture already exists")
		return
	}

	writeJSON(w, http.StatusCreated, gestureResponse{Name: name, ExampleCount: 0})
}

// delete handles DELETE /api/gestures/{name} and removes a learned class
// from both the live recognizer and the store.
func (h *GestureHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	removed := h.app.Recognizer().RemoveGesture(name)

	if err := h.app.SaveRecognizer(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist removal")
		return
	}

	if !removed {
		// Might still exist in the store as a zero-example registration
		// that never received a sample.
		if st := h.app.Store(); st != nil {
			if err := st.Gestures().Delete(strings.ToUpper(name)); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeError(w, http.StatusNotFound, "Gesture not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "Failed to delete gesture")
				return
			}
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

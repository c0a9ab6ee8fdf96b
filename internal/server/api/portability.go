package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/kuchipudi-hdc/internal/app"
	"github.com/ayusman/kuchipudi-hdc/internal/gesture"
)

// PortabilityHandler exports and imports the full recognizer state
// document (spec.md §4.7) so a trained model can move between machines.
type PortabilityHandler struct {
	app *app.App
}

// NewPortabilityHandler creates a new PortabilityHandler backed by the given app.
func NewPortabilityHandler(a *app.App) *PortabilityHandler {
	return &PortabilityHandler{app: a}
}

// ServeHTTP implements the http.Handler interface.
// GET  /api/export returns the current State as JSON.
// POST /api/import replaces the current recognizer with the posted State,
// rejecting it (without mutating anything) if it fails validation.
func (h *PortabilityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.export(w, r)
	case http.MethodPost:
		h.import_(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *PortabilityHandler) export(w http.ResponseWriter, r *http.Request) {
	state := h.app.Recognizer().Export()
	writeJSON(w, http.StatusOK, state)
}

func (h *PortabilityHandler) import_(w http.ResponseWriter, r *http.Request) {
	var state gesture.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.app.Recognizer().Import(state); err != nil {
		if errors.Is(err, gesture.ErrInvalidState) {
			writeError(w, http.StatusBadRequest, "Invalid recognizer state")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to import state")
		return
	}

	if err := h.app.SaveRecognizer(); err != nil {
		writeError(w, http.StatusInternalServerError, "Imported but failed to persist state")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

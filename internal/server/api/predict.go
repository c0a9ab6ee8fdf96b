package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/kuchipudi-hdc/internal/app"
	"github.com/ayusman/kuchipudi-hdc/internal/detector"
)

// PredictHandler classifies a single set of hand landmarks against the
// recognizer's learned classes without touching the camera pipeline —
// useful for testing a trained recognizer from recorded landmarks.
type PredictHandler struct {
	app *app.App
}

// NewPredictHandler creates a new PredictHandler backed by the given app.
func NewPredictHandler(a *app.App) *PredictHandler {
	return &PredictHandler{app: a}
}

type predictRequest struct {
	Landmarks []landmarkPoint `json:"landmarks"`
}

type predictResponse struct {
	Label        string             `json:"label"`
	Confidence   float64            `json:"confidence"`
	Similarities map[string]float64 `json:"similarities"`
}

// ServeHTTP implements the http.Handler interface.
func (h *PredictHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Landmarks) != detector.NumLandmarks {
		writeError(w, http.StatusBadRequest, "Exactly 21 landmarks are required")
		return
	}

	points := make([]detector.Point3D, len(req.Landmarks))
	for i, p := range req.Landmarks {
		points[i] = detector.Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}

	recognizer := h.app.Recognizer()
	hv, err := recognizer.Encode(points)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to encode landmarks")
		return
	}

	result := recognizer.Predict(hv)
	writeJSON(w, http.StatusOK, predictResponse{
		Label:        result.Label,
		Confidence:   result.Confidence,
		Similarities: result.Similarities,
	})
}

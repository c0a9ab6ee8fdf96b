package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ayusman/kuchipudi-hdc/internal/app"
	"github.com/ayusman/kuchipudi-hdc/internal/detector"
)

// SamplesHandler handles few-shot training sample uploads for a gesture.
type SamplesHandler struct {
	app *app.App
}

// NewSamplesHandler creates a new SamplesHandler backed by the given app.
func NewSamplesHandler(a *app.App) *SamplesHandler {
	return &SamplesHandler{app: a}
}

// ServeHTTP implements the http.Handler interface.
// Expected path: /api/gestures/{name}/samples
func (h *SamplesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/gestures/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "samples" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	gestureName := parts[0]

	switch r.Method {
	case http.MethodGet:
		h.list(w, r, gestureName)
	case http.MethodPost:
		h.create(w, r, gestureName)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request types

type landmarkPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type createSamplesRequest struct {
	// Samples is one set of 21 landmarks per training example.
	Samples [][]landmarkPoint `json:"samples"`
}

// Response types

type sampleResponse struct {
	ID          int64           `json:"id"`
	GestureID   string          `json:"gesture_id"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

// list handles GET /api/gestures/{name}/samples and returns the raw
// landmark samples recorded for the named gesture.
func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, gestureName string) {
	st := h.app.Store()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "No persistence configured")
		return
	}

	name := strings.ToUpper(gestureName)
	samples, err := st.Samples().GetByGestureID(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{Samples: make([]sampleResponse, 0, len(samples))}
	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			ID:          s.ID,
			GestureID:   s.GestureID,
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/gestures/{name}/samples. Each sample's 21
// landmarks are encoded into a hypervector and folded into the named
// class via Recognizer.AddExample, then the raw landmarks are archived
// in gesture_samples for audit/retraining (mirroring the teacher's
// SampleRepository.Create, adapted from path-averaging to HDC folding).
func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, gestureName string) {
	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}

	recognizer := h.app.Recognizer()
	raw := make([]json.RawMessage, 0, len(req.Samples))

	for _, sample := range req.Samples {
		if len(sample) != detector.NumLandmarks {
			writeError(w, http.StatusBadRequest, "Each sample must contain exactly 21 landmarks")
			return
		}

		points := make([]detector.Point3D, len(sample))
		for i, p := range sample {
			points[i] = detector.Point3D{X: p.X, Y: p.Y, Z: p.Z}
		}

		hv, err := recognizer.Encode(points)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to encode sample")
			return
		}
		recognizer.AddExample(gestureName, hv)

		encoded, err := json.Marshal(sample)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to archive sample")
			return
		}
		raw = append(raw, encoded)
	}

	if err := h.app.SaveRecognizer(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist recognizer state")
		return
	}

	if st := h.app.Store(); st != nil {
		if err := st.Samples().Create(strings.ToUpper(gestureName), raw); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to archive samples")
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":        "ok",
		"example_count": recognizer.GetExampleCount(gestureName),
	})
}

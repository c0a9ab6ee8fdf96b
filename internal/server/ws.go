// Package server provides the HTTP server for the Kuchipudi gesture recognition system.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/kuchipudi-hdc/internal/capture"
	"github.com/ayusman/kuchipudi-hdc/internal/detector"
	"github.com/ayusman/kuchipudi-hdc/internal/gesture"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LandmarksHandler broadcasts real-time hand landmarks, and the recognizer's
// prediction for each hand, via WebSocket.
type LandmarksHandler struct {
	detector   detector.Detector
	camera     capture.Camera
	recognizer *gesture.Recognizer // optional; nil skips the prediction field
	clients    map[*websocket.Conn]bool
	mu         sync.RWMutex
}

// NewLandmarksHandler creates a new LandmarksHandler with the given detector,
// camera and recognizer. recognizer may be nil, in which case broadcast
// frames carry landmarks only.
func NewLandmarksHandler(d detector.Detector, c capture.Camera, r *gesture.Recognizer) *LandmarksHandler {
	h := &LandmarksHandler{
		detector:   d,
		camera:     c,
		recognizer: r,
		clients:    make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends landmark data to all connected clients.
func (h *LandmarksHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		frame, err := h.camera.ReadFrame()
		if err != nil {
			continue
		}

		hands, err := h.detector.Detect(frame)
		frame.Close()
		if err != nil {
			continue
		}

		payload := map[string]any{
			"hands":     hands,
			"timestamp": time.Now().UnixMilli(),
		}

		if h.recognizer != nil && len(hands) > 0 {
			predictions := make([]gesture.PredictResult, 0, len(hands))
			for i := range hands {
				hv, err := h.recognizer.Encode(hands[i].Points[:])
				if err != nil {
					continue
				}
				predictions = append(predictions, h.recognizer.Predict(hv))
			}
			payload["predictions"] = predictions
		}

		msg, _ := json.Marshal(payload)

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}

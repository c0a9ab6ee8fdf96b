package app

import (
	"log"
	"time"

	"github.com/ayusman/kuchipudi-hdc/internal/detector"
	"github.com/ayusman/kuchipudi-hdc/internal/plugin"
)

// runPipeline is the main detection loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5)
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Run hand detection
// 4. Encode each hand into a hypervector
// 5. In training mode, fold the HV into the active gesture's prototype;
//    otherwise classify it by nearest-prototype cosine similarity
// 6. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	// Track whether we're in active mode
	activeMode := false

	// Track the last motion detection time
	lastMotionTime := time.Now()

	// Frame interval based on current FPS
	frameInterval := time.Second / time.Duration(IdleFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			// Skip processing if detection is disabled
			if !a.IsEnabled() {
				continue
			}

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				// Switch to active mode if not already
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				// Check if we should switch back to idle mode
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Skip further processing if not in active mode or no detector
			if !activeMode || a.detector == nil {
				frame.Close()
				continue
			}

			// Step 2: Hand detection
			hands, err := a.detector.Detect(frame)
			frame.Close() // Done with the frame

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			if len(hands) == 0 {
				continue
			}

			// Process each detected hand
			for i := range hands {
				a.processHand(hands[i].Points[:])
			}
		}
	}
}

// processHand encodes one hand's landmarks and either folds it into the
// gesture under active training or classifies it against the learned
// classes, executing any bound action on a non-null prediction.
func (a *App) processHand(landmarks []detector.Point3D) {
	a.mu.Lock()
	trainingName := a.trainingName
	recognizer := a.recognizer
	a.mu.Unlock()

	hv, err := recognizer.Encode(landmarks)
	if err != nil {
		log.Printf("Error encoding landmarks: %v", err)
		return
	}

	if trainingName != "" {
		count := recognizer.AddExample(trainingName, hv)
		log.Printf("Added training example for %q (count=%d)", trainingName, count)
		if err := a.SaveRecognizer(); err != nil {
			log.Printf("Error persisting recognizer state: %v", err)
		}
		return
	}

	result := recognizer.Predict(hv)
	if result.Label == "" {
		return
	}

	log.Printf("Gesture matched: %s (confidence: %.3f)", result.Label, result.Confidence)
	a.executeAction(result.Label)
}

// executeAction executes the action associated with a recognized gesture.
// It looks up the action binding by gesture name in the database and
// executes the corresponding plugin. HDC classes are name-addressed
// (spec.md §3), so gestureName doubles as the store.Gesture row ID.
func (a *App) executeAction(gestureName string) {
	// Skip if no store configured
	if a.config.Store == nil {
		return
	}

	// Look up action binding
	action, err := a.config.Store.Actions().GetByGestureID(gestureName)
	if err != nil {
		log.Printf("Error looking up action: %v", err)
		return
	}
	if action == nil || !action.Enabled {
		return // No action bound or disabled - silent skip
	}

	// Get plugin
	plug, err := a.pluginMgr.Get(action.PluginName)
	if err != nil {
		log.Printf("Plugin not found: %s", action.PluginName)
		return
	}

	// Build request
	req := &plugin.Request{
		Action:  action.ActionName,
		Gesture: gestureName,
		Config:  action.Config,
	}

	// Execute async to not block pipeline
	go func() {
		resp, err := a.pluginExec.Execute(plug, req)
		if err != nil {
			log.Printf("Plugin execution failed: %v", err)
			return
		}
		if !resp.Success {
			log.Printf("Plugin returned error: %s", resp.Error)
		}
	}()
}

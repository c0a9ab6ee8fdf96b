// Package app provides the main application logic for the Kuchipudi gesture recognition system.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/kuchipudi-hdc/internal/capture"
	"github.com/ayusman/kuchipudi-hdc/internal/detector"
	"github.com/ayusman/kuchipudi-hdc/internal/gesture"
	"github.com/ayusman/kuchipudi-hdc/internal/plugin"
	"github.com/ayusman/kuchipudi-hdc/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	PluginDir    string
	CameraID     int
	MotionThresh float64
}

// App is the main application that orchestrates gesture detection and action execution.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	recognizer *gesture.Recognizer
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor

	enabled      bool
	trainingName string // non-empty while the next encoded hand should be AddExample'd instead of predicted

	mu             sync.RWMutex
	stopCh         chan struct{}
	lastMotionTime time.Time
}

// New creates a new App instance with the given configuration. The
// recognizer is loaded from config.Store if it already holds a saved
// state; otherwise a fresh recognizer with gesture.DefaultConfig is
// created and will be persisted on first save.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:         config,
		camera:         capture.NewCamera(config.CameraID),
		motion:         capture.NewMotionDetector(motionThreshold),
		recognizer:     gesture.New(gesture.DefaultConfig()),
		pluginMgr:      plugin.NewManager(config.PluginDir),
		pluginExec:     plugin.NewExecutor(5000), // 5 second timeout for plugin execution
		enabled:        false,
		stopCh:         nil,
		lastMotionTime: time.Now(),
	}

	if config.Store != nil {
		if loaded, err := config.Store.LoadRecognizer(); err == nil {
			a.recognizer = loaded
			log.Println("Loaded recognizer state from database")
		} else if err != store.ErrNotFound {
			log.Printf("Failed to load recognizer state (%v), starting fresh", err)
		}
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// StartTraining puts the pipeline into training mode: the next hand
// encoded from the camera feed is folded into name via Recognizer.AddExample
// instead of being classified. Canonicalization (case folding) happens
// inside the recognizer.
func (a *App) StartTraining(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trainingName = name
}

// StopTraining returns the pipeline to inference mode.
func (a *App) StopTraining() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.trainingName = ""
}

// IsTraining reports whether the pipeline is currently in training mode.
func (a *App) IsTraining() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.trainingName != ""
}

// Recognizer returns the gesture recognizer. Callers that mutate it
// (AddExample, Import, ClearAll, RemoveGesture) must hold no other
// reference concurrently — the pipeline goroutine only reaches it while
// a.mu is held (spec.md §5's single-owner rule for a Recognizer).
func (a *App) Recognizer() *gesture.Recognizer {
	return a.recognizer
}

// SaveRecognizer persists the current recognizer state to the store, if
// one is configured.
func (a *App) SaveRecognizer() error {
	if a.config.Store == nil {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.Store.SaveRecognizer(a.recognizer)
}

// Store returns the configured persistence store, or nil if none was set.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start begins the detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Signal the pipeline to stop
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close motion detector
	a.motion.Close()

	// Close the hand detector if set
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/kuchipudi-hdc/internal/app"
	"github.com/ayusman/kuchipudi-hdc/internal/detector"
	"github.com/ayusman/kuchipudi-hdc/internal/server"
	"github.com/ayusman/kuchipudi-hdc/internal/store"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "data.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	application := app.New(app.Config{
		Store:        s,
		PluginDir:    filepath.Join(tmpDir, "plugins"),
		MotionThresh: 0.05,
	})

	srv := server.New(server.Config{App: application})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("CreateGesture", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/gestures",
			"application/json",
			strings.NewReader(`{"name": "wave"}`),
		)
		if err != nil {
			t.Fatalf("create gesture error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
	})

	t.Run("TrainAndPredict", func(t *testing.T) {
		thumbsUp := detector.ThumbsUpLandmarks()
		landmarks := make([]map[string]float64, len(thumbsUp.Points))
		for i, p := range thumbsUp.Points {
			landmarks[i] = map[string]float64{"x": p.X, "y": p.Y, "z": p.Z}
		}

		samplesBody, _ := json.Marshal(map[string]any{
			"samples": [][]map[string]float64{landmarks, landmarks, landmarks},
		})

		resp, err := client.Post(
			ts.URL+"/api/gestures/wave/samples",
			"application/json",
			strings.NewReader(string(samplesBody)),
		)
		if err != nil {
			t.Fatalf("post samples error = %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("post samples status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}
		resp.Body.Close()

		predictBody, _ := json.Marshal(map[string]any{"landmarks": landmarks})
		resp, err = client.Post(
			ts.URL+"/api/predict",
			"application/json",
			strings.NewReader(string(predictBody)),
		)
		if err != nil {
			t.Fatalf("predict error = %v", err)
		}
		defer resp.Body.Close()

		var predictResp struct {
			Label      string  `json:"label"`
			Confidence float64 `json:"confidence"`
		}
		json.NewDecoder(resp.Body).Decode(&predictResp)

		if predictResp.Label != "WAVE" {
			t.Errorf("label = %q, want %q", predictResp.Label, "WAVE")
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after app operations")
		}
		resp.Body.Close()
	})
}

func TestE2E_ExportImportRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, _ := store.New(filepath.Join(tmpDir, "data.db"))
	defer s.Close()

	application := app.New(app.Config{Store: s, PluginDir: filepath.Join(tmpDir, "plugins")})
	srv := server.New(server.Config{App: application})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	recognizer := application.Recognizer()
	hand := detector.ThumbsUpLandmarks()
	hv, err := recognizer.Encode(hand.Points[:])
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	recognizer.AddExample("THUMBS_UP", hv)

	resp, err := client.Get(ts.URL + "/api/export")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	fresh := app.New(app.Config{PluginDir: filepath.Join(tmpDir, "plugins-2")})
	freshSrv := server.New(server.Config{App: fresh})
	freshTS := httptest.NewServer(freshSrv)
	defer freshTS.Close()

	importResp, err := client.Post(freshTS.URL+"/api/import", "application/json", strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("import error = %v", err)
	}
	defer importResp.Body.Close()

	if importResp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d, want %d", importResp.StatusCode, http.StatusOK)
	}

	names := fresh.Recognizer().GetClassNames()
	if len(names) != 1 || names[0] != "THUMBS_UP" {
		t.Errorf("imported class names = %v, want [THUMBS_UP]", names)
	}
}

func TestE2E_ActionBinding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, _ := store.New(filepath.Join(tmpDir, "data.db"))
	defer s.Close()

	application := app.New(app.Config{Store: s, PluginDir: filepath.Join(tmpDir, "plugins")})
	srv := server.New(server.Config{App: application})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	resp, err := client.Post(
		ts.URL+"/api/gestures",
		"application/json",
		strings.NewReader(`{"name": "test-gesture"}`),
	)
	if err != nil {
		t.Fatalf("create gesture error = %v", err)
	}

	var gestureResp struct {
		Name string `json:"name"`
	}
	json.NewDecoder(resp.Body).Decode(&gestureResp)
	resp.Body.Close()

	actionReq := map[string]interface{}{
		"gesture_id":  gestureResp.Name,
		"plugin_name": "system-control",
		"action_name": "volume_up",
		"enabled":     true,
	}
	actionBody, _ := json.Marshal(actionReq)

	resp, err = client.Post(
		ts.URL+"/api/actions",
		"application/json",
		strings.NewReader(string(actionBody)),
	)
	if err != nil {
		t.Fatalf("create action error = %v", err)
	}

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("create action status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/api/actions")
	if err != nil {
		t.Fatalf("list actions error = %v", err)
	}

	var listResp struct {
		Actions []struct {
			ID         string `json:"id"`
			GestureID  string `json:"gesture_id"`
			PluginName string `json:"plugin_name"`
			ActionName string `json:"action_name"`
			Enabled    bool   `json:"enabled"`
		} `json:"actions"`
	}
	json.NewDecoder(resp.Body).Decode(&listResp)
	resp.Body.Close()

	if len(listResp.Actions) != 1 {
		t.Errorf("expected 1 action, got %d", len(listResp.Actions))
	}

	if listResp.Actions[0].GestureID != gestureResp.Name {
		t.Errorf("action gesture_id mismatch: got %s, want %s", listResp.Actions[0].GestureID, gestureResp.Name)
	}
}


package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeRequestsFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "gallery.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write requests file: %v", err)
	}
	return path
}

func TestGenerationRequest_Filename(t *testing.T) {
	req := GenerationRequest{ID: "wizard", Width: 128, Height: 64}
	if got := req.Filename(); got != "wizard_128x64.png" {
		t.Errorf("Filename() = %q, want wizard_128x64.png", got)
	}
}

func TestLoadRequests_Valid(t *testing.T) {
	dir := t.TempDir()
	path := writeRequestsFile(t, dir, `
- id: wizard
  description: a wizard
  width: 128
  height: 128
  seed: 42
- id: knight
  description: a knight
  width: 64
  height: 64
`)

	reqs, err := LoadRequests(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("got %d requests, want 2", len(reqs))
	}
	if reqs[0].ID != "wizard" {
		t.Errorf("reqs[0].ID = %q, want wizard", reqs[0].ID)
	}
	if reqs[0].Seed == nil || *reqs[0].Seed != 42 {
		t.Errorf("reqs[0].Seed = %v, want 42", reqs[0].Seed)
	}
	if reqs[1].Seed != nil {
		t.Errorf("reqs[1].Seed = %v, want nil", reqs[1].Seed)
	}
}

func TestLoadRequests_MissingFile(t *testing.T) {
	_, err := LoadRequests(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRequests_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeRequestsFile(t, dir, ": : bad yaml [[[")

	_, err := LoadRequests(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadRequests_Empty(t *testing.T) {
	dir := t.TempDir()
	path := writeRequestsFile(t, dir, "[]\n")

	_, err := LoadRequests(path)
	if err == nil {
		t.Error("expected error for empty request list")
	}
}

func TestLoadRequests_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	path := writeRequestsFile(t, dir, `
- id: wizard
  description: a wizard
  width: 128
  height: 128
- id: wizard
  description: another wizard
  width: 128
  height: 128
`)

	_, err := LoadRequests(path)
	if err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestLoadRequests_BadDimensions(t *testing.T) {
	dir := t.TempDir()
	path := writeRequestsFile(t, dir, `
- id: wizard
  description: a wizard
  width: 0
  height: 128
`)

	_, err := LoadRequests(path)
	if err == nil {
		t.Error("expected error for zero width")
	}
}

func TestManifest_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	seed := 42
	m := &Manifest{
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Images: []ManifestEntry{
			{
				ID:          "wizard",
				Filename:    "wizard_128x128.png",
				Description: "a wizard",
				Width:       128,
				Height:      128,
				Seed:        &seed,
				GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			},
			{
				ID:       "knight",
				Filename: "knight_128x128.png",
				Width:    128,
				Height:   128,
			},
		},
	}

	if err := m.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if decoded["generated_at"] != "2026-01-02T03:04:05Z" {
		t.Errorf("generated_at = %v, want 2026-01-02T03:04:05Z", decoded["generated_at"])
	}

	images, ok := decoded["images"].([]interface{})
	if !ok || len(images) != 2 {
		t.Fatalf("images = %v, want 2 entries", decoded["images"])
	}

	first := images[0].(map[string]interface{})
	if first["seed"] != float64(42) {
		t.Errorf("first seed = %v, want 42", first["seed"])
	}

	// A missing seed is serialized as an explicit null.
	second := images[1].(map[string]interface{})
	if v, present := second["seed"]; !present || v != nil {
		t.Errorf("second seed = %v (present=%v), want null", v, present)
	}
}

func TestManifest_Save_BadPath(t *testing.T) {
	m := &Manifest{GeneratedAt: time.Now()}
	if err := m.Save(filepath.Join(t.TempDir(), "missing", "metadata.json")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestDefaultRequests(t *testing.T) {
	reqs := DefaultRequests()
	if len(reqs) != 6 {
		t.Fatalf("got %d default requests, want 6", len(reqs))
	}

	seen := make(map[string]bool)
	for _, req := range reqs {
		if req.ID == "" || req.Description == "" {
			t.Errorf("request %+v missing id or description", req)
		}
		if seen[req.ID] {
			t.Errorf("duplicate default request id %q", req.ID)
		}
		seen[req.ID] = true
		if req.Width != 128 || req.Height != 128 {
			t.Errorf("request %q dimensions = %dx%d, want 128x128", req.ID, req.Width, req.Height)
		}
		if req.Seed == nil {
			t.Errorf("request %q has no seed", req.ID)
		}
	}
}

package models

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// GenerationRequest describes one image to generate. Requests are defined
// once at startup, either from the built-in list or from a YAML file, and
// are processed strictly in order.
type GenerationRequest struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	Width       int    `yaml:"width" json:"width"`
	Height      int    `yaml:"height" json:"height"`
	Seed        *int   `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// Filename returns the output file name for this request.
func (r GenerationRequest) Filename() string {
	return fmt.Sprintf("%s_%dx%d.png", r.ID, r.Width, r.Height)
}

// ManifestEntry records one successfully generated image. Every entry
// corresponds to exactly one PNG file in the images directory.
type ManifestEntry struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Description string    `json:"description"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Seed        *int      `json:"seed"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Manifest is the gallery metadata file. It is built once per run and
// written wholesale, overwriting any previous manifest.
type Manifest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Images      []ManifestEntry `json:"images"`
}

// Save writes the manifest as indented JSON to the given path.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}

	return nil
}

// LoadRequests loads a generation request list from a YAML file.
func LoadRequests(path string) ([]GenerationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requests file: %w", err)
	}

	var requests []GenerationRequest
	if err := yaml.Unmarshal(data, &requests); err != nil {
		return nil, fmt.Errorf("failed to parse requests file: %w", err)
	}

	if len(requests) == 0 {
		return nil, fmt.Errorf("requests file %s contains no requests", path)
	}

	seen := make(map[string]bool, len(requests))
	for i, req := range requests {
		if req.ID == "" {
			return nil, fmt.Errorf("request %d: id is required", i)
		}
		if seen[req.ID] {
			return nil, fmt.Errorf("request %d: duplicate id %q", i, req.ID)
		}
		seen[req.ID] = true

		if req.Description == "" {
			return nil, fmt.Errorf("request %q: description is required", req.ID)
		}
		if req.Width <= 0 || req.Height <= 0 {
			return nil, fmt.Errorf("request %q: width and height must be positive", req.ID)
		}
	}

	return requests, nil
}

// intPtr is a convenience for building the default request list.
func intPtr(v int) *int {
	return &v
}

// DefaultRequests returns the built-in gallery request list.
func DefaultRequests() []GenerationRequest {
	return []GenerationRequest{
		{
			ID:          "wizard",
			Description: "a mysterious pixel art wizard with a glowing staff and purple robes, fantasy RPG style",
			Width:       128,
			Height:      128,
			Seed:        intPtr(42),
		},
		{
			ID:          "knight",
			Description: "a brave pixel art knight in shining armor with a sword and shield, retro game style",
			Width:       128,
			Height:      128,
			Seed:        intPtr(123),
		},
		{
			ID:          "dragon",
			Description: "a fierce pixel art dragon breathing fire, classic 16-bit RPG style",
			Width:       128,
			Height:      128,
			Seed:        intPtr(456),
		},
		{
			ID:          "spaceship",
			Description: "a sleek pixel art spaceship with glowing engines, retro sci-fi arcade style",
			Width:       128,
			Height:      128,
			Seed:        intPtr(789),
		},
		{
			ID:          "robot",
			Description: "a friendly pixel art robot with antenna and digital eyes, cute retro style",
			Width:       128,
			Height:      128,
			Seed:        intPtr(101),
		},
		{
			ID:          "treasure",
			Description: "an open pixel art treasure chest overflowing with gold coins and gems, classic RPG style",
			Width:       128,
			Height:      128,
			Seed:        intPtr(202),
		},
	}
}

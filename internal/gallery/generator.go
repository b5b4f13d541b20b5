package gallery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ctavolazzi/pixel-gallery/internal/config"
	"github.com/ctavolazzi/pixel-gallery/internal/pixellab"
	"github.com/ctavolazzi/pixel-gallery/pkg/models"
	"go.uber.org/zap"
)

// ImageClient is the slice of the PixelLab client the generator needs.
type ImageClient interface {
	GenerateImage(ctx context.Context, params pixellab.GenerateImageParams) (*pixellab.GenerationResult, error)
	Balance(ctx context.Context) (map[string]interface{}, error)
}

// Generator turns an ordered request list into PNG files plus one manifest
// file. Requests are processed strictly sequentially; per-item failures are
// isolated and never abort the batch.
type Generator struct {
	client ImageClient
	cfg    config.GalleryConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewGenerator creates a new gallery generator
func NewGenerator(client ImageClient, cfg config.GalleryConfig, logger *zap.Logger) *Generator {
	return &Generator{
		client: client,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Summary is the per-run tally reported after a batch.
type Summary struct {
	Succeeded int
	Failed    int
	Total     int
}

// Run generates every request in order and writes the manifest once at the
// end, overwriting any previous manifest wholesale. The returned error is
// non-nil only for setup or manifest-write failures; per-item failures are
// reflected in the Summary.
func (g *Generator) Run(ctx context.Context, requests []models.GenerationRequest) (*Summary, error) {
	if err := os.MkdirAll(g.cfg.ImagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}

	g.checkBalance(ctx)

	manifest := &models.Manifest{
		GeneratedAt: g.now(),
		Images:      []models.ManifestEntry{},
	}
	summary := &Summary{Total: len(requests)}

	for _, req := range requests {
		g.logger.Info("Generating image",
			zap.String("id", req.ID),
			zap.String("description", truncate(req.Description, 60)))

		if err := g.generateOne(ctx, req, manifest); err != nil {
			g.logger.Error("Generation failed",
				zap.String("id", req.ID),
				zap.Error(err))
			summary.Failed++
			continue
		}
		summary.Succeeded++
	}

	if err := manifest.Save(g.cfg.ManifestPath); err != nil {
		return summary, err
	}

	g.logger.Info("Gallery generation complete",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("total", summary.Total),
		zap.String("manifest", g.cfg.ManifestPath))

	return summary, nil
}

// generateOne issues a single API call for one request, decodes the first
// returned image and writes it to the images directory.
func (g *Generator) generateOne(ctx context.Context, req models.GenerationRequest, manifest *models.Manifest) error {
	result, err := g.client.GenerateImage(ctx, pixellab.GenerateImageParams{
		Description: req.Description,
		Width:       req.Width,
		Height:      req.Height,
		Seed:        req.Seed,
	})
	if err != nil {
		return err
	}

	if len(result.Images) == 0 {
		return errors.New("no images returned")
	}

	data, err := decodeImage(result.Images[0])
	if err != nil {
		return fmt.Errorf("failed to decode image payload: %w", err)
	}

	path := filepath.Join(g.cfg.ImagesDir, req.Filename())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	manifest.Images = append(manifest.Images, models.ManifestEntry{
		ID:          req.ID,
		Filename:    req.Filename(),
		Description: req.Description,
		Width:       req.Width,
		Height:      req.Height,
		Seed:        req.Seed,
		GeneratedAt: g.now(),
	})

	g.logger.Info("Saved image",
		zap.String("id", req.ID),
		zap.String("file", path),
		zap.Int("bytes", len(data)))

	return nil
}

// checkBalance logs the account balance as a diagnostic. Any error here is
// logged and swallowed; a failed balance check never aborts generation.
func (g *Generator) checkBalance(ctx context.Context) {
	balance, err := g.client.Balance(ctx)
	if err != nil {
		g.logger.Warn("Could not check balance", zap.Error(err))
		return
	}
	g.logger.Info("Account balance", zap.Any("balance", balance))
}

// ListExisting enumerates PNG files already present in the images directory
// and writes a name + size report. Read-only.
func (g *Generator) ListExisting(w io.Writer) error {
	entries, err := os.ReadDir(g.cfg.ImagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "No gallery images found.")
			return nil
		}
		return fmt.Errorf("failed to read images directory: %w", err)
	}

	var images []os.DirEntry
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			images = append(images, entry)
		}
	}

	if len(images) == 0 {
		fmt.Fprintln(w, "No gallery images found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d images:\n", len(images))
	for _, img := range images {
		info, err := img.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", img.Name(), err)
		}
		fmt.Fprintf(w, "  - %s (%.1f KB)\n", img.Name(), float64(info.Size())/1024)
	}

	return nil
}

// DryRun prints the planned request list without calling the API or
// touching the filesystem.
func DryRun(w io.Writer, requests []models.GenerationRequest) {
	fmt.Fprintln(w, "Would generate the following images:")
	for _, req := range requests {
		fmt.Fprintf(w, "  - %s: %s (%dx%d)\n",
			req.ID, truncate(req.Description, 50), req.Width, req.Height)
	}
}

// decodeImage base64-decodes one image payload, stripping a
// "data:image/png;base64," style prefix before the comma if present.
func decodeImage(payload string) ([]byte, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

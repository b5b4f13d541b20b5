package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ctavolazzi/pixel-gallery/internal/config"
	"github.com/ctavolazzi/pixel-gallery/internal/gallery"
	"github.com/ctavolazzi/pixel-gallery/internal/pixellab"
	"github.com/ctavolazzi/pixel-gallery/pkg/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listFlag     bool
	dryRunFlag   bool
	requestsPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gallery",
		Short: "Generate pixel art gallery images via the PixelLab API",
		Long: `Generates the portfolio gallery: calls the PixelLab API for each
configured request, writes the resulting PNG files to the images directory
and rewrites the JSON metadata manifest.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().BoolVar(&listFlag, "list", false, "list existing gallery images and exit")
	rootCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "print the planned requests without generating")
	rootCmd.Flags().StringVar(&requestsPath, "requests", "", "YAML file overriding the built-in request list")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path := requestsPath
	if path == "" {
		path = cfg.Gallery.RequestsPath
	}

	requests := models.DefaultRequests()
	if path != "" {
		requests, err = models.LoadRequests(path)
		if err != nil {
			return err
		}
	}

	if dryRunFlag {
		gallery.DryRun(os.Stdout, requests)
		return nil
	}

	client := pixellab.NewClient(cfg.PixelLab, logger)
	generator := gallery.NewGenerator(client, cfg.Gallery, logger)

	if listFlag {
		return generator.ListExisting(os.Stdout)
	}

	if !client.HasAPIKey() {
		fmt.Fprintln(os.Stderr, "Error: PIXELLAB_API_KEY not found in environment")
		fmt.Fprintln(os.Stderr, "Please set it in .env:")
		fmt.Fprintln(os.Stderr, "  PIXELLAB_API_KEY=your-api-key-here")
		return errors.New("missing API key")
	}

	summary, err := generator.Run(context.Background(), requests)
	if err != nil {
		return err
	}

	fmt.Println("==================================================")
	fmt.Println("Gallery Generation Complete")
	fmt.Println("==================================================")
	fmt.Printf("Successful: %d\n", summary.Succeeded)
	fmt.Printf("Failed: %d\n", summary.Failed)
	fmt.Printf("Total: %d\n", summary.Total)

	// Per-item failures do not change the exit code; the run completed.
	return nil
}

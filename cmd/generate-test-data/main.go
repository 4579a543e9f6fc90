package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"strings"

	"github.com/atlasocr/wasl/internal/config"
	"github.com/atlasocr/wasl/internal/template"
	"github.com/atlasocr/wasl/internal/testutil"
	"github.com/atlasocr/wasl/internal/utils"
)

func main() {
	// Set up structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		generatePages = flag.Bool("pages", true, "Generate sample document pages")
		generateCrops = flag.Bool("crops", true, "Generate per-region crops of the receipt page")
		verbose       = flag.Bool("v", false, "Verbose output")
		help          = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate sample documents for wasl testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                 # Generate all sample data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -pages          # Generate only document pages\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -crops          # Generate only region crops\n", os.Args[0])
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	slog.Info("Starting sample document generation...")

	if *verbose {
		slog.Info("Options", "pages", *generatePages, "crops", *generateCrops)
	}

	// Get project root so the output lands next to the bundled templates
	root, err := testutil.GetProjectRoot()
	if err != nil {
		slog.Error("Failed to find project root", "error", err)
		os.Exit(1)
	}

	if *verbose {
		slog.Info("Project root", "path", root)
	}

	if err := os.Chdir(root); err != nil {
		slog.Error("Failed to change to project root", "error", err)
		os.Exit(1)
	}

	if *generatePages {
		slog.Info("Generating sample document pages...")

		if err := generateSamplePages(); err != nil {
			slog.Error("Failed to generate sample pages", "error", err)
			os.Exit(1)
		}

		slog.Info("✓ Generated sample document pages")
	}

	if *generateCrops {
		slog.Info("Generating region crops...")

		if err := generateRegionCrops(); err != nil {
			slog.Error("Failed to generate region crops", "error", err)
			os.Exit(1)
		}

		slog.Info("✓ Generated region crops")
	}

	slog.Info("Sample document generation completed successfully!")
}

// generateSamplePages renders the synthetic pages used for manual extract
// and scan runs: the association receipt matching the bundled template, a
// French-only declaration, and a blank page.
func generateSamplePages() error {
	pagesDir := "testdata/images"
	if err := testutil.EnsureDir(pagesDir); err != nil {
		return fmt.Errorf("failed to create pages directory: %w", err)
	}

	if err := savePage(testutil.Receipt(), pagesDir+"/assoc_receipt.png"); err != nil {
		return fmt.Errorf("failed to save receipt page: %w", err)
	}

	declaration := testutil.DefaultDocumentConfig()
	declaration.Lines = []testutil.TextLine{
		{Text: "ROYAUME DU MAROC", X: 0.34, Y: 0.04},
		{Text: "PREFECTURE DE RABAT", X: 0.32, Y: 0.09},
		{Text: "Declaration de constitution d'une association", X: 0.18, Y: 0.18},
		{Text: "Commune de Rabat", X: 0.06, Y: 0.30},
		{Text: "Association des Parents d'Eleves", X: 0.06, Y: 0.40},
		{Text: "N 2025/0457", X: 0.06, Y: 0.55},
		{Text: "Le 15/03/2025", X: 0.56, Y: 0.55},
	}
	if err := savePage(testutil.RenderDocument(declaration), pagesDir+"/declaration_fr.png"); err != nil {
		return fmt.Errorf("failed to save declaration page: %w", err)
	}

	if err := savePage(testutil.RenderDocument(testutil.DefaultDocumentConfig()), pagesDir+"/blank.png"); err != nil {
		return fmt.Errorf("failed to save blank page: %w", err)
	}

	return nil
}

// generateRegionCrops cuts the receipt page along the bundled template's
// regions, one image per field, for eyeballing region placement.
func generateRegionCrops() error {
	cropsDir := "testdata/images/crops"
	if err := testutil.EnsureDir(cropsDir); err != nil {
		return fmt.Errorf("failed to create crops directory: %w", err)
	}

	store, err := template.Load(config.DefaultTemplatesPath)
	if err != nil {
		return fmt.Errorf("failed to load bundled templates: %w", err)
	}
	tpl, err := store.Get("assoc_receipt")
	if err != nil {
		return fmt.Errorf("failed to look up receipt template: %w", err)
	}

	page := testutil.Receipt()
	bounds := page.Bounds()

	for _, region := range tpl.Regions {
		box := region.Locate(bounds.Dx(), bounds.Dy())
		crop := utils.CropBox(page, box)

		name := strings.ReplaceAll(region.Key(), ".", "_") + ".png"
		if err := savePage(crop, cropsDir+"/"+name); err != nil {
			return fmt.Errorf("failed to save crop for '%s': %w", region.Key(), err)
		}
	}

	return nil
}

// savePage writes an image as PNG without requiring a testing.T.
func savePage(img image.Image, path string) error {
	file, err := os.Create(path) //nolint:gosec // G304: generation uses controlled paths
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return file.Close()
}

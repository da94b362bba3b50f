// Command extracttest runs the extraction pipeline headlessly: it clips an
// image by a polygon read from a JSON file and writes the result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cutout/internal/backend"
	"cutout/internal/compositor"
	"cutout/internal/extract"
	"cutout/internal/imageio"
	"cutout/internal/selection"
	"cutout/pkg/geometry"
)

func main() {
	imagePath := flag.String("image", "", "Path to the input image (PNG, JPEG, TIFF)")
	polyPath := flag.String("polygon", "", "Path to a JSON array of [x,y] vertices")
	outPath := flag.String("out", "out.png", "Output path (.png or .webp)")
	backendURL := flag.String("backend", "", "Collaborator base URL; empty uses the stub")
	removeBG := flag.Bool("remove-bg", false, "Route the crop through background removal")
	keepSize := flag.Bool("keep-size", false, "Keep the original canvas size")
	keyOut := flag.Bool("key-out", false, "Key out near-white pixels")
	tolerance := flag.Float64("tolerance", compositor.DefaultOptions().Tolerance, "Keying tolerance")
	softness := flag.Float64("softness", compositor.DefaultOptions().Softness, "Keying softness")
	flag.Parse()

	if *imagePath == "" || *polyPath == "" {
		fmt.Println("Usage: extracttest -image <path> -polygon <path> [-out out.png]")
		os.Exit(1)
	}

	img, err := imageio.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded image: %dx%d pixels\n", img.Bounds().Dx(), img.Bounds().Dy())

	poly, err := loadPolygon(*polyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load polygon: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Polygon: %d vertices, bounds %.0fx%.0f\n",
		len(poly.Points), poly.Bounds.Width, poly.Bounds.Height)

	var remover backend.BackgroundRemover = &backend.Stub{}
	if *backendURL != "" {
		remover = backend.NewHTTPBackend(*backendURL)
	}

	opts := extract.Options{
		RemoveBackground: *removeBG,
		KeepSize:         *keepSize,
		KeyOut:           *keyOut,
		Key:              compositor.Options{Tolerance: *tolerance, Softness: *softness},
	}

	result, err := extract.New(remover).Extract(context.Background(), img, poly, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(*outPath), ".webp") {
		data, err = imageio.EncodeWebP(result)
	} else {
		data, err = imageio.EncodePNG(result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", *outPath, result.Bounds().Dx(), result.Bounds().Dy())
}

// loadPolygon reads a JSON array of [x,y] pairs and closes it.
func loadPolygon(path string) (*selection.Polygon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pairs [][2]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(pairs) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(pairs))
	}
	points := make([]geometry.Point2D, len(pairs))
	for i, p := range pairs {
		points[i] = geometry.Point2D{X: p[0], Y: p[1]}
	}
	return selection.NewClosedPolygon(points), nil
}

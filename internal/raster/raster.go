package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ErrNoPages is returned when rasterization produces zero page bitmaps.
var ErrNoPages = errors.New("document produced no pages")

// ErrUnsupported is returned for file formats the rasterizer cannot decode.
var ErrUnsupported = errors.New("unsupported document format")

// Config controls rasterization.
type Config struct {
	DPI          int // rasterization resolution for PDF pages, default 200
	FirstPage    int // 1-based first page to render, 0 = first
	LastPage     int // 1-based last page to render, 0 = last
	MaxDimension int // bitmaps larger than this on either axis are downscaled, default 1200
}

// Rasterizer turns a document file (PDF or raster image) into page bitmaps.
type Rasterizer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Rasterizer, filling in config defaults.
func New(cfg Config, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = 1200
	}
	return &Rasterizer{cfg: cfg, logger: logger}
}

// Pages renders the document at path into one bitmap per page, in page
// order. PDFs are rendered through MuPDF; raster images are decoded as a
// single page. Oversized bitmaps are downscaled to fit MaxDimension.
func (r *Rasterizer) Pages(path string) ([]image.Image, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return r.pdfPages(path)
	}
	img, err := r.decodeImage(path)
	if err != nil {
		return nil, err
	}
	return []image.Image{r.bound(img)}, nil
}

func (r *Rasterizer) pdfPages(path string) ([]image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	first := r.cfg.FirstPage
	if first < 1 {
		first = 1
	}
	last := r.cfg.LastPage
	if last < 1 || last > doc.NumPage() {
		last = doc.NumPage()
	}

	var pages []image.Image
	for n := first; n <= last; n++ {
		img, err := doc.ImageDPI(n-1, float64(r.cfg.DPI))
		if err != nil {
			r.logger.Warn("rendering PDF page failed", "path", path, "page", n, "error", err)
			continue
		}
		pages = append(pages, r.bound(img))
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, path)
	}
	return pages, nil
}

func (r *Rasterizer) decodeImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// HEIC/HEIF (common on iPhones) is not covered by the standard
	// image decoders, so sniff it by magic bytes first.
	if isHEIC(data) {
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC image: %w", err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// bound downscales img to fit within MaxDimension on both axes, keeping
// aspect ratio. Smaller images pass through untouched.
func (r *Rasterizer) bound(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= r.cfg.MaxDimension && b.Dy() <= r.cfg.MaxDimension {
		return img
	}
	return imaging.Fit(img, r.cfg.MaxDimension, r.cfg.MaxDimension, imaging.Lanczos)
}

// isHEIC checks for an ftyp box with a HEIC-related brand.
func isHEIC(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

// Package bill sequences the full pipeline: rasterize, enhance, run OCR,
// classify the bill type and extract a per-unit cost. It is the only
// surface consumed by the upload-handling layer around this core.
package bill

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/gfranchi/billscan/internal/classify"
	"github.com/gfranchi/billscan/internal/enhance"
	"github.com/gfranchi/billscan/internal/ocr"
	"github.com/gfranchi/billscan/internal/raster"
)

var (
	// ErrConversion wraps rasterization failures, including documents
	// that produce zero pages.
	ErrConversion = errors.New("document conversion failed")

	// ErrPreprocess wraps enhancement failures that are fatal to the
	// document (single-page documents only; multi-page documents
	// degrade the failed page to empty text instead).
	ErrPreprocess = errors.New("image pre-processing failed")

	// ErrNoText means recognition yielded nothing across all pages.
	// Nothing downstream can succeed without text.
	ErrNoText = errors.New("no text extracted")

	// ErrUnclassified is the distinguished soft failure for an UNKNOWN
	// classification. The accompanying Result is still populated, so a
	// lenient caller can inspect it.
	ErrUnclassified = errors.New("bill type could not be identified")
)

// Config bundles the per-stage configuration.
type Config struct {
	Raster  raster.Config
	Enhance enhance.Config
	Runner  ocr.RunnerConfig
}

// Result is the outcome of processing one bill document.
type Result struct {
	CostPerUnit *float64          // nil when no plausible cost was found
	BillType    classify.BillType // GAS, LUCE, MIX or UNKNOWN
	Text        string            // extracted text, newline-joined in page order
	Pages       int               // pages rasterized
	PageErrors  []error           // per-page degradations (enhancement, OCR, timeout)
}

// Processor runs the pipeline against document files.
type Processor struct {
	rasterizer *raster.Rasterizer
	enhancer   *enhance.Enhancer
	runner     *ocr.Runner
	logger     *slog.Logger
}

// NewProcessor wires the pipeline stages around the given OCR engine.
func NewProcessor(engine ocr.Engine, cfg Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Enhance == (enhance.Config{}) {
		cfg.Enhance = enhance.DefaultConfig()
	}
	return &Processor{
		rasterizer: raster.New(cfg.Raster, logger),
		enhancer:   enhance.New(cfg.Enhance),
		runner:     ocr.NewRunner(engine, cfg.Runner, logger),
		logger:     logger,
	}
}

// Process runs the full pipeline on the document at path.
//
// Error policy: input and conversion errors are fatal; a pre-processing
// or recognition failure on one page of a multi-page document degrades
// that page to empty text; an UNKNOWN classification returns the
// populated Result together with ErrUnclassified; a missing cost value is
// never an error.
func (p *Processor) Process(ctx context.Context, path string) (*Result, error) {
	if _, err := os.Stat(path); err != nil {
		p.logger.Error("document not readable", "path", path, "error", err)
		return nil, fmt.Errorf("reading document: %w", err)
	}

	pages, err := p.rasterizer.Pages(path)
	if err != nil {
		p.logger.Error("rasterization failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	var pageErrs []error
	enhanced := make([]image.Image, 0, len(pages))
	indices := make([]int, 0, len(pages))
	for i, page := range pages {
		img, err := p.enhancer.Enhance(page)
		if err != nil {
			p.logger.Warn("enhancement failed", "path", path, "page", i+1, "error", err)
			if len(pages) == 1 {
				return nil, fmt.Errorf("%w: %v", ErrPreprocess, err)
			}
			pageErrs = append(pageErrs, fmt.Errorf("page %d: %w", i+1, err))
			continue
		}
		enhanced = append(enhanced, img)
		indices = append(indices, i)
	}

	texts := make([]string, len(pages))
	recognized, err := p.runner.Run(ctx, enhanced)
	if err != nil {
		p.logger.Error("recognition aborted", "path", path, "error", err)
		return nil, fmt.Errorf("running ocr: %w", err)
	}
	for j, page := range recognized {
		if page.Err != nil {
			pageErrs = append(pageErrs, page.Err)
			continue
		}
		texts[indices[j]] = page.Text
	}

	text := joinPages(texts)
	if strings.TrimSpace(text) == "" {
		p.logger.Error("no text extracted", "path", path, "pages", len(pages), "page_errors", len(pageErrs))
		if len(pageErrs) > 0 {
			// The page failures explain the empty text; keep them in
			// the chain so callers can match ocr.ErrTimeout and retry
			// with a different configuration.
			return nil, fmt.Errorf("%w: %s: %w", ErrNoText, path, errors.Join(pageErrs...))
		}
		return nil, fmt.Errorf("%w: %s", ErrNoText, path)
	}

	result := &Result{
		BillType:   classify.Classify(text),
		Text:       text,
		Pages:      len(pages),
		PageErrors: pageErrs,
	}
	if cost, ok := classify.ExtractCost(text); ok {
		result.CostPerUnit = &cost
	}

	p.logger.Info("bill processed",
		"path", path,
		"pages", result.Pages,
		"bill_type", result.BillType,
		"cost_found", result.CostPerUnit != nil,
		"degraded_pages", len(pageErrs),
	)

	if result.BillType == classify.Unknown {
		return result, fmt.Errorf("%w: %s", ErrUnclassified, path)
	}
	return result, nil
}

func joinPages(texts []string) string {
	var parts []string
	for _, t := range texts {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// ProcessBillOCR is the single-call contract consumed by the upload
// layer: given a document path it returns the extracted per-unit cost
// (nil when absent) and the classified bill type.
func ProcessBillOCR(ctx context.Context, engine ocr.Engine, path string) (*float64, classify.BillType, error) {
	result, err := NewProcessor(engine, Config{}, nil).Process(ctx, path)
	if result == nil {
		return nil, classify.Unknown, err
	}
	return result.CostPerUnit, result.BillType, err
}

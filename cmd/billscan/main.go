package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/gfranchi/billscan/internal/bill"
	"github.com/gfranchi/billscan/internal/enhance"
	"github.com/gfranchi/billscan/internal/ocr"
	"github.com/gfranchi/billscan/internal/raster"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	fs := ff.NewFlagSet("billscan")
	var (
		engineType  = fs.StringLong("engine", "tesseract", "OCR engine: 'tesseract', 'tesseract-cli', 'gemini' or 'ollama'")
		languages   = fs.StringLong("languages", "ita+eng", "Tesseract language packs")
		dpi         = fs.IntLong("dpi", 200, "PDF rasterization resolution")
		firstPage   = fs.IntLong("first-page", 0, "First PDF page to process (0 = start)")
		lastPage    = fs.IntLong("last-page", 0, "Last PDF page to process (0 = end)")
		maxDim      = fs.IntLong("max-dimension", 1200, "Downscale page bitmaps beyond this size")
		timeoutSecs = fs.IntLong("page-timeout", 20, "Wall-clock OCR deadline per page, in seconds")
		workers     = fs.IntLong("workers", 4, "Concurrent OCR workers")
		noDeskew    = fs.BoolLong("no-deskew", "Disable skew correction")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set BILLSCAN_GEMINI_KEY)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLSCAN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	args := fs.GetArgs()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "usage: billscan [flags] <bill.pdf|bill.png|bill.jpg|bill.heic>")
		os.Exit(1)
	}

	engine, err := newEngine(*engineType, *languages, *geminiKey, *geminiModel, *ollamaURL, *ollamaModel)
	if err != nil {
		slog.Error("Failed to initialize OCR engine", "engine", *engineType, "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	enhanceCfg := enhance.DefaultConfig()
	enhanceCfg.Deskew = !*noDeskew

	processor := bill.NewProcessor(engine, bill.Config{
		Raster: raster.Config{
			DPI:          *dpi,
			FirstPage:    *firstPage,
			LastPage:     *lastPage,
			MaxDimension: *maxDim,
		},
		Enhance: enhanceCfg,
		Runner: ocr.RunnerConfig{
			Workers:     *workers,
			PageTimeout: time.Duration(*timeoutSecs) * time.Second,
		},
	}, slog.Default())

	result, err := processor.Process(context.Background(), args[0])
	switch {
	case errors.Is(err, bill.ErrUnclassified):
		fmt.Printf("bill_type: %s\n", result.BillType)
		fmt.Println("could not identify the bill type, inspect the extracted text")
	case err != nil:
		slog.Error("Processing failed", "path", args[0], "error", err)
		os.Exit(1)
	default:
		fmt.Printf("bill_type: %s\n", result.BillType)
		if result.CostPerUnit != nil {
			fmt.Printf("cost_per_unit: %g\n", *result.CostPerUnit)
		} else {
			fmt.Println("cost_per_unit: not found")
		}
	}
	for _, pageErr := range result.PageErrors {
		fmt.Fprintf(os.Stderr, "degraded: %v\n", pageErr)
	}
}

func newEngine(engineType, languages, geminiKey, geminiModel, ollamaURL, ollamaModel string) (ocr.Engine, error) {
	switch engineType {
	case "tesseract":
		slog.Info("Initializing Tesseract engine...", "languages", languages)
		return ocr.NewTesseract(languages)
	case "tesseract-cli":
		slog.Info("Initializing Tesseract CLI engine...", "languages", languages)
		return ocr.NewTesseractCLI("", languages, slog.Default())
	case "gemini":
		if geminiKey == "" {
			geminiKey = os.Getenv("GEMINI_API_KEY")
		}
		if geminiKey == "" {
			return nil, fmt.Errorf("gemini API key is required, set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini engine...", "model", geminiModel)
		return ocr.NewGemini(geminiKey, geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama engine...", "url", ollamaURL, "model", ollamaModel)
		return ocr.NewOllama(ollamaURL, ollamaModel)
	default:
		return nil, fmt.Errorf("invalid engine type %q, valid: tesseract, tesseract-cli, gemini, ollama", engineType)
	}
}

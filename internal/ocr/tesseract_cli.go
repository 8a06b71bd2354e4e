package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// TesseractCLI implements the Engine interface by driving the tesseract
// binary through os/exec. Unlike the in-process engine, a cancelled
// context kills the child process, so this is the backend to use when
// strict resource bounding matters.
type TesseractCLI struct {
	binary    string
	languages string
	logger    *slog.Logger
}

// NewTesseractCLI creates an exec-based Tesseract engine. binary defaults
// to "tesseract" on PATH, languages to "ita+eng".
func NewTesseractCLI(binary, languages string, logger *slog.Logger) (*TesseractCLI, error) {
	if binary == "" {
		binary = "tesseract"
	}
	if languages == "" {
		languages = "ita+eng"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("tesseract binary not found: %w", err)
	}
	return &TesseractCLI{binary: binary, languages: languages, logger: logger}, nil
}

// Recognize writes the image to a temp file and runs
// `tesseract <file> stdout -l <languages>`.
func (t *TesseractCLI) Recognize(ctx context.Context, png []byte) (string, error) {
	tmp, err := os.CreateTemp("", "billscan-page-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp image: %w", err)
	}

	out, stderr, err := t.run(ctx, tmp.Name(), "stdout", "-l", t.languages)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(stderr, 512))
	}
	return out, nil
}

func (t *TesseractCLI) run(ctx context.Context, args ...string) (string, string, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, t.binary, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		t.logger.Error("exec failed",
			"cmd", t.binary,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10),
		)
	} else {
		t.logger.Debug("exec ok",
			"cmd", t.binary,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
		)
	}

	return out.String(), errb.String(), err
}

// Close releases engine resources (no-op).
func (t *TesseractCLI) Close() error {
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Engine interface with an in-process Tesseract
// client. Note that a recognition in flight cannot be interrupted: the
// Runner's timeout abandons the call, it does not stop it.
type Tesseract struct {
	languages []string
	psm       gosseract.PageSegMode
}

// NewTesseract creates a Tesseract engine. The default languages are
// Italian plus English, matching the bills this pipeline is tuned for.
func NewTesseract(languages string) (*Tesseract, error) {
	if languages == "" {
		languages = "ita+eng"
	}
	return &Tesseract{
		languages: strings.Split(languages, "+"),
		psm:       gosseract.PSM_AUTO,
	}, nil
}

// Recognize extracts text from a PNG-encoded image.
func (t *Tesseract) Recognize(ctx context.Context, png []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// One client per call: gosseract clients are not safe for
	// concurrent use and the Runner fans out across pages.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting languages: %w", err)
	}
	if err := client.SetPageSegMode(t.psm); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognition: %w", err)
	}
	return text, nil
}

// Close releases engine resources (no-op, clients are per-call).
func (t *Tesseract) Close() error {
	return nil
}

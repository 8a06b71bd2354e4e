// Package ocr runs an external text-recognition engine against page
// bitmaps, bounded by per-page timeouts and a small worker pool.
package ocr

import "context"

// Engine defines the interface to a text-recognition backend.
type Engine interface {
	// Recognize extracts the text visible in a PNG-encoded image.
	Recognize(ctx context.Context, png []byte) (string, error)
	// Close releases engine resources.
	Close() error
}

// transcribePrompt is shared by the vision-LLM backends. It asks for a
// verbatim transcription, not an interpretation, so the downstream
// heuristics see the same kind of raw text a conventional OCR engine
// would produce.
const transcribePrompt = `You are transcribing a scanned utility bill (Italian gas or electricity invoice). Read every piece of text visible in the image and return it as plain text.

Rules:
- Transcribe the text exactly as written, including numbers, units (kWh, Smc, m³), codes (POD, PDR) and currency amounts
- Preserve the reading order: top to bottom, left to right
- Separate distinct blocks or sections with a blank line
- Do not translate, summarize, interpret or reformat anything
- Do not add any commentary before or after the transcription
- If a region is illegible, skip it`

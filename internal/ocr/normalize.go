package ocr

import (
	"regexp"
	"strings"
)

var (
	// Line noise tesseract tends to produce on table borders and rules.
	reBoxNoise = regexp.MustCompile(`[|¦]{2,}|_{4,}|[=~]{4,}|-{6,}`)
	reSpaces   = regexp.MustCompile(`[ \t]{2,}`)
	reBlank    = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans raw engine output before classification: unifies line
// endings and unicode spaces, strips box-drawing noise, collapses runs of
// spaces and blank lines. Paragraph boundaries (single blank lines) are
// preserved, downstream classification tallies terms per paragraph.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, " ", " ")
	text = reBoxNoise.ReplaceAllString(text, " ")
	text = reSpaces.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " ")
	}
	text = strings.Join(lines, "\n")

	text = reBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

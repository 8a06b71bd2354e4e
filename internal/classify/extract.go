package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// Cost values outside this open interval are rejected as OCR artifacts
// (a misread meter serial, a yearly total, a decimal point lost).
const (
	minCost = 0.0
	maxCost = 1000.0
)

// costPatterns are tried in order, most specific first. Each pattern
// captures the numeric value in group 1.
var costPatterns = []*regexp.Regexp{
	// Labeled price phrase, e.g. "Prezzo energia F1 0,1234 €/kWh".
	regexp.MustCompile(`(?i)(?:prezzo|costo|corrispettivo|tariffa)[^\n€$]{0,40}?[€$]?\s*(\d+(?:[.,]\d+)?)\s*(?:€|\$|euro)?\s*/?\s*(?:kwh|kw|smc|mc|m³|m3)\b`),
	// Currency amount per unit, e.g. "0,095 €/Smc", "0,12 euro al kWh".
	regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:€|\$|euro)\s*(?:/|al|per)?\s*(?:kwh|kw|smc|mc|m³|m3)\b`),
	// Bare numeral adjacent to a power unit.
	regexp.MustCompile(`(?i)[€$]?\s*(\d+(?:[.,]\d+)?)\s*(?:/|\s+per\s+|\s+al\s+)?\s*(?:kwh|kw)\b`),
	// Bare numeral adjacent to a gas volume unit.
	regexp.MustCompile(`(?i)[€$]?\s*(\d+(?:[.,]\d+)?)\s*(?:/|\s+per\s+|\s+al\s+)?\s*(?:m³|m3|mc|smc)\b`),
}

// ExtractCost searches the text for a plausible per-unit energy or gas
// cost. Patterns are applied in order of decreasing specificity; within
// one pattern, matches are visited in order of appearance and the first
// value inside (0, 1000) after locale normalization wins. A missing cost
// is a legitimate outcome, not an error.
func ExtractCost(text string) (float64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}
	for _, pattern := range costPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if v, ok := parseAmount(match[1]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// parseAmount normalizes an Italian-locale numeral (decimal comma,
// optional currency symbol) and applies the plausibility range check.
func parseAmount(raw string) (float64, bool) {
	s := strings.NewReplacer(",", ".", "€", "", "$", "", " ", "").Replace(raw)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if v <= minCost || v >= maxCost {
		return 0, false
	}
	return v, true
}

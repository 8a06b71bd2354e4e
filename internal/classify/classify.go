// Package classify determines the service type of an Italian utility
// bill from its OCR text and extracts a per-unit cost figure. Both
// operations are pure functions of the input text.
package classify

import (
	"regexp"
	"strings"
)

// BillType is the classification label for a bill.
type BillType string

const (
	Gas         BillType = "GAS"
	Electricity BillType = "LUCE"
	Mix         BillType = "MIX"
	Unknown     BillType = "UNKNOWN"
)

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// Classify determines the bill type from extracted text. Evidence is
// evaluated in tiers of decreasing specificity, short-circuiting at the
// first confident verdict:
//
//  1. an explicit dual-service phrase settles MIX outright;
//  2. strong gas AND electricity measurement signals together mean MIX;
//  3. a single strong measurement signal settles GAS or LUCE;
//  4. a per-paragraph vocabulary tally decides between GAS, LUCE and MIX;
//  5. otherwise UNKNOWN.
//
// Empty or whitespace-only input is UNKNOWN, never an error.
func Classify(text string) BillType {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}
	lower := strings.ToLower(text)

	for _, phrase := range mixPhrases {
		if strings.Contains(lower, phrase) {
			return Mix
		}
	}

	gasUnit := matchAny(gasUnitPatterns, lower)
	elecUnit := matchAny(electricityUnitPatterns, lower)
	switch {
	case gasUnit && elecUnit:
		return Mix
	case gasUnit:
		return Gas
	case elecUnit:
		return Electricity
	}

	gasTally, elecTally := vocabularyTally(lower)
	switch {
	case gasTally > 0 && elecTally > 0:
		return Mix
	case gasTally > 0:
		return Gas
	case elecTally > 0:
		return Electricity
	}

	return Unknown
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// vocabularyTally scores the gas and electricity vocabularies paragraph
// by paragraph. Within one paragraph a lone opposing term is discarded
// when outnumbered at least 3:1, so a stray cross-domain word in a
// footer cannot force a false MIX. Tallies are summed over paragraphs,
// which makes the verdict independent of paragraph order.
func vocabularyTally(lower string) (gas, electricity int) {
	for _, paragraph := range paragraphSplit.Split(lower, -1) {
		g := tally(gasVocabulary, paragraph)
		e := tally(electricityVocabulary, paragraph)

		switch {
		case g > 0 && e > 0 && g >= 3*e:
			e = 0
		case g > 0 && e > 0 && e >= 3*g:
			g = 0
		}

		gas += g
		electricity += e
	}
	return gas, electricity
}

func tally(vocabulary []keyword, paragraph string) int {
	score := 0
	for _, k := range vocabulary {
		score += len(k.re.FindAllStringIndex(paragraph, -1)) * k.weight
	}
	return score
}

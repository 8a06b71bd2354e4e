package classify

import "regexp"

// The rule tables below are the calibrated ruleset for Italian utility
// bills. They are fixed per version and deliberately kept apart from the
// control flow in classify.go.

// mixPhrases are explicit dual-service markers. Any one of them settles
// the classification as MIX on its own (tier 1). Matched as substrings of
// the lowercased text.
var mixPhrases = []string{
	"dual fuel",
	"offerta dual",
	"dual energy",
	"luce e gas",
	"gas e luce",
	"luce & gas",
	"gas & luce",
	"gas ed energia elettrica",
	"energia elettrica e gas",
	"fornitura congiunta",
	"doppia fornitura",
	"bolletta unica luce e gas",
}

// gasUnitPatterns are strong gas measurement signals: volume units, meter
// reading phrasing and the PDR delivery-point code (tiers 2 and 3).
var gasUnitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsmc\b`),
	regexp.MustCompile(`(?i)\bm³`),
	regexp.MustCompile(`(?i)\bmetr[oi] cub[oi]\b`),
	regexp.MustCompile(`(?i)\blettura gas\b`),
	regexp.MustCompile(`(?i)\bconsumo gas\b`),
	regexp.MustCompile(`(?i)\bpdr\b\s*[:.]?\s*\d`),
}

// electricityUnitPatterns are strong electricity measurement signals:
// power/energy units, meter reading phrasing and the POD delivery-point
// code (tiers 2 and 3).
var electricityUnitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bkwh?\b`),
	regexp.MustCompile(`(?i)\bkilowatt`),
	regexp.MustCompile(`(?i)\bpotenza impegnata\b`),
	regexp.MustCompile(`(?i)\blettura energia\b`),
	regexp.MustCompile(`(?i)\bpod\b\s*[:.]?\s*it\w+`),
}

// keyword is one vocabulary entry for the tier-4 tally. Longer service
// phrases weigh more than bare nouns because they survive OCR noise far
// better.
type keyword struct {
	re     *regexp.Regexp
	weight int
}

func kw(pattern string, weight int) keyword {
	return keyword{re: regexp.MustCompile(`(?i)` + pattern), weight: weight}
}

// gasVocabulary is the gas side of the tier-4 tally.
var gasVocabulary = []keyword{
	kw(`\bgas naturale\b`, 2),
	kw(`\bfornitura gas\b`, 2),
	kw(`\bdistribuzione gas\b`, 2),
	kw(`\bconsumo gas\b`, 2),
	kw(`\bmetano\b`, 2),
	kw(`\bgas\b`, 1),
	kw(`\bcoefficiente c\b`, 1),
	kw(`\bpotere calorifico\b`, 1),
}

// electricityVocabulary is the electricity side of the tier-4 tally.
var electricityVocabulary = []keyword{
	kw(`\benergia elettrica\b`, 2),
	kw(`\bcorrente elettrica\b`, 2),
	kw(`\bservizio elettrico\b`, 2),
	kw(`\bconsumo energia\b`, 2),
	kw(`\belettricit[aà]\b`, 2),
	kw(`\bdispacciamento\b`, 2),
	kw(`\benergia attiva\b`, 2),
	kw(`\bfasce orarie\b`, 1),
	kw(`\bluce\b`, 1),
	kw(`\bpotenza\b`, 1),
	kw(`\belettric[oa]\b`, 1),
}

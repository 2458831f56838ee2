package esg

import (
	"regexp"
	"strings"
)

// unitTokens are checked in order; the first token contained in the value
// text wins, regardless of where it appears. List position, not textual
// position, is the tie-break.
var unitTokens = []string{
	"%", "kg", "tons", "tco2e", "kwh", "mwh", "gj",
	"liters", "gallons", "$", "usd", "eur",
}

// unitFallbackPattern matches the first contiguous run of letters, percent,
// or currency symbols. It can pick up unrelated text (stray symbols from
// adjacent content); callers get no stronger guarantee than "first such run".
var unitFallbackPattern = regexp.MustCompile(`[a-zA-Z%$€£]+`)

// ExtractUnit guesses the measurement unit in a raw cell value. Known unit
// tokens are matched case-insensitively first; otherwise the fallback
// pattern is tried. Returns the empty string when nothing matches.
func ExtractUnit(valueText string) string {
	lowered := strings.ToLower(valueText)
	for _, unit := range unitTokens {
		if strings.Contains(lowered, unit) {
			return unit
		}
	}
	return unitFallbackPattern.FindString(valueText)
}

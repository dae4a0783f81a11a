package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// colourPlaceholder is the supply-side value meaning the colour is not yet
// known. It is rendered with a "Colour" prefix so descriptions read naturally.
const colourPlaceholder = "to be confirmed"

// knownAcronyms are descriptor tokens kept fully upper-cased when a group opts
// into title-cased descriptions.
var knownAcronyms = map[string]struct{}{
	"II": {}, "FR": {}, "UV": {}, "PVC": {}, "GSM": {}, "LED": {},
	"AC": {}, "DC": {}, "LM": {}, "SQM": {}, "GST": {}, "DD": {}, "POA": {},
}

var titleCaser = cases.Title(language.English)

// NormalizeColour renders the third descriptor part for human-facing
// descriptions. The placeholder value becomes "Colour To Be Confirmed";
// everything else passes through trimmed.
func NormalizeColour(colour string) string {
	trimmed := strings.TrimSpace(colour)
	if strings.EqualFold(trimmed, colourPlaceholder) {
		return "Colour To Be Confirmed"
	}
	return trimmed
}

// BuildDescription renders the full human-facing description for a variant:
// the group's prefix followed by the three descriptor parts, with the colour
// placeholder override applied. Empty parts are skipped. When titleCase is
// set, descriptor words are title-cased with known acronyms preserved.
func BuildDescription(prefix, field1, field2, field3 string, titleCase bool) string {
	parts := []string{
		strings.TrimSpace(prefix),
		strings.TrimSpace(field1),
		strings.TrimSpace(field2),
		NormalizeColour(field3),
	}

	if titleCase {
		for i := 1; i < len(parts); i++ {
			parts[i] = TitleCase(parts[i])
		}
	}

	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// TitleCase title-cases each word of s while keeping known acronyms (FR, UV,
// PVC, ...) fully upper-cased.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if _, ok := knownAcronyms[strings.ToUpper(w)]; ok {
			words[i] = strings.ToUpper(w)
			continue
		}
		words[i] = titleCaser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}

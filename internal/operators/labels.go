package operators

import (
	"slices"
	"strings"

	"github.com/agext/levenshtein"
)

// LabelMap maps an operator token to its display phrase.
type LabelMap map[string]string

// Canonical phrases for symbolic operator labels.
const (
	PhraseLessThan           = "is less than"
	PhraseGreaterThan        = "is greater than"
	PhraseLessThanOrEqual    = "is less than or equal to"
	PhraseGreaterThanOrEqual = "is greater than or equal to"
	PhraseEqual              = "is equal to"
	PhraseNotEqual           = "is not equal to"
)

var aliasPhrases = map[string]string{
	"<":     PhraseLessThan,
	"&lt;":  PhraseLessThan,
	">":     PhraseGreaterThan,
	"&gt;":  PhraseGreaterThan,
	"<=":    PhraseLessThanOrEqual,
	"≤":     PhraseLessThanOrEqual,
	"&lt;=": PhraseLessThanOrEqual,
	"&le;":  PhraseLessThanOrEqual,
	">=":    PhraseGreaterThanOrEqual,
	"≥":     PhraseGreaterThanOrEqual,
	"&gt;=": PhraseGreaterThanOrEqual,
	"&ge;":  PhraseGreaterThanOrEqual,
	"=":     PhraseEqual,
	"==":    PhraseEqual,
	"!=":    PhraseNotEqual,
	"<>":    PhraseNotEqual,
	"≠":     PhraseNotEqual,
	"&ne;":  PhraseNotEqual,
}

// Translator localises a fixed phrase. A nil Translator leaves phrases in
// English.
type Translator func(msgID string) string

// NormalizeLabel trims raw and replaces symbolic aliases with their
// canonical phrase. Other labels pass through trimmed.
func NormalizeLabel(raw string) string {
	return normalizeLabel(raw, nil)
}

func normalizeLabel(raw string, translate Translator) string {
	label := strings.TrimSpace(raw)
	if label == "" {
		return ""
	}
	phrase, ok := aliasPhrases[label]
	if !ok {
		return label
	}
	if translate != nil {
		return translate(phrase)
	}
	return phrase
}

// BuildLabelMap resolves every operator token found in facets to a phrase.
// The first facet seen for a token wins. Datatypes are visited in lexical
// order so duplicates resolve the same way on every call.
func BuildLabelMap(facets FacetsByDatatype) LabelMap {
	return BuildLocalizedLabelMap(facets, nil)
}

// BuildLocalizedLabelMap is BuildLabelMap with alias phrases passed
// through translate.
func BuildLocalizedLabelMap(facets FacetsByDatatype, translate Translator) LabelMap {
	labels := LabelMap{}

	for _, datatype := range facets.Datatypes() {
		for _, facet := range facets[datatype] {
			token := facet.Operator
			if token == "" {
				continue
			}
			if _, seen := labels[token]; seen {
				continue
			}

			phrase := normalizeLabel(facet.Label.Extract(), translate)
			if phrase == "" {
				phrase = token
			}
			labels[token] = phrase
		}
	}

	return labels
}

// Resolve returns the phrase for token, falling back to the raw token.
func (m LabelMap) Resolve(token string) string {
	if phrase := m[token]; phrase != "" {
		return phrase
	}
	return token
}

// Known reports whether token has an entry.
func (m LabelMap) Known(token string) bool {
	_, ok := m[token]
	return ok
}

// Suggest returns the known token closest to token by edit distance, if one
// is close enough to be a plausible typo.
func (m LabelMap) Suggest(token string) (string, bool) {
	if token == "" || len(m) == 0 {
		return "", false
	}

	candidates := make([]string, 0, len(m))
	for k := range m {
		candidates = append(candidates, k)
	}
	slices.Sort(candidates)

	needle := strings.ToUpper(token)
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.Distance(needle, strings.ToUpper(c), nil)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}

	limit := max(2, len(token)/3)
	if bestDist > limit {
		return "", false
	}
	return best, true
}

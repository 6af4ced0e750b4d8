package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"<", PhraseLessThan},
		{"&lt;", PhraseLessThan},
		{">", PhraseGreaterThan},
		{"&gt;", PhraseGreaterThan},
		{"<=", PhraseLessThanOrEqual},
		{"≤", PhraseLessThanOrEqual},
		{"&le;", PhraseLessThanOrEqual},
		{">=", PhraseGreaterThanOrEqual},
		{"≥", PhraseGreaterThanOrEqual},
		{"&ge;", PhraseGreaterThanOrEqual},
		{"=", PhraseEqual},
		{"==", PhraseEqual},
		{"!=", PhraseNotEqual},
		{"<>", PhraseNotEqual},
		{"≠", PhraseNotEqual},
		{"&ne;", PhraseNotEqual},
		{"  <=  ", PhraseLessThanOrEqual},
		{"contains", "contains"},
		{"  has any value ", "has any value"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeLabel(tt.raw))
		})
	}
}

func TestBuildLabelMap(t *testing.T) {
	facets := FacetsByDatatype{
		"number": {
			{Operator: "LESS_THAN_OR_EQUAL", Label: PlainLabel("<=")},
			{Operator: "GREATER_THAN", Label: PlainLabel("is greater than")},
		},
		"string": {
			{Operator: "LIKE", Label: LocalizedLabel(
				Translation{Language: "en", Text: "contains"},
				Translation{Language: "de", Text: "enthält"},
			)},
			{Operator: "", Label: PlainLabel("ignored")},
			{Operator: "BLANK", Label: PlainLabel("  ")},
		},
	}

	labels := BuildLabelMap(facets)

	assert.Equal(t, LabelMap{
		"LESS_THAN_OR_EQUAL": PhraseLessThanOrEqual,
		"GREATER_THAN":       "is greater than",
		"LIKE":               "contains",
		"BLANK":              "BLANK",
	}, labels)
}

func TestBuildLabelMap_FirstFacetWins(t *testing.T) {
	facets := FacetsByDatatype{
		"date":   {{Operator: "EQUALS", Label: PlainLabel("is on")}},
		"number": {{Operator: "EQUALS", Label: PlainLabel("=")}},
		"string": {
			{Operator: "EQUALS", Label: PlainLabel("matches")},
			{Operator: "EQUALS", Label: PlainLabel("later duplicate")},
		},
	}

	// datatypes are visited in lexical order: date, number, string
	labels := BuildLabelMap(facets)
	assert.Equal(t, "is on", labels["EQUALS"])

	// repeated calls are stable
	for range 10 {
		assert.Equal(t, labels, BuildLabelMap(facets))
	}
}

func TestBuildLocalizedLabelMap(t *testing.T) {
	facets := FacetsByDatatype{
		"number": {{Operator: "LT", Label: PlainLabel("<")}},
	}
	translate := func(msgID string) string { return "[fr] " + msgID }

	labels := BuildLocalizedLabelMap(facets, translate)
	assert.Equal(t, "[fr] is less than", labels["LT"])
}

func TestLabelMap_Resolve(t *testing.T) {
	labels := LabelMap{"GREATER_THAN": "is greater than", "EMPTY": ""}

	assert.Equal(t, "is greater than", labels.Resolve("GREATER_THAN"))
	assert.Equal(t, "CUSTOM_OP", labels.Resolve("CUSTOM_OP"))
	assert.Equal(t, "EMPTY", labels.Resolve("EMPTY"))
	assert.True(t, labels.Known("EMPTY"))
	assert.False(t, labels.Known("CUSTOM_OP"))
}

func TestLabelMap_Suggest(t *testing.T) {
	labels := LabelMap{
		"GREATER_THAN":  "is greater than",
		"LESS_THAN":     "is less than",
		"HAS_ANY_VALUE": "has any value",
	}

	got, ok := labels.Suggest("GREATER_THNA")
	assert.True(t, ok)
	assert.Equal(t, "GREATER_THAN", got)

	got, ok = labels.Suggest("less_than")
	assert.True(t, ok)
	assert.Equal(t, "LESS_THAN", got)

	_, ok = labels.Suggest("SOMETHING_ELSE_ENTIRELY")
	assert.False(t, ok)

	_, ok = LabelMap{}.Suggest("X")
	assert.False(t, ok)
}

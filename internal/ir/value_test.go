package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
	}{
		{"string", `"hello"`, String("hello")},
		{"int", `18`, Number("18")},
		{"float keeps text", `18.50`, Number("18.50")},
		{"bool", `true`, Bool(true)},
		{"null", `null`, Null{}},
		{"array", `[1,"a",null]`, Array{Number("1"), String("a"), Null{}}},
		{"language map", `{"en":"Oak"}`, Object{"en": String("Oak")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := UnmarshalValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestUnmarshalValue_Invalid(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestMarshalValue(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"nil is null", nil, "null"},
		{"null", Null{}, "null"},
		{"number text preserved", Number("2.50"), "2.50"},
		{"object sorted", Object{"b": Bool(false), "a": String("x")}, `{"a":"x","b":false}`},
		{"nested array", Array{Array{}, Object{}}, `[[],{}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalValue(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(data))
		})
	}
}

func TestNumber_InvalidLiteral(t *testing.T) {
	_, err := MarshalValue(Number("eighteen"))
	assert.Error(t, err)
}

func TestObject_UnmarshalJSONRejectsArray(t *testing.T) {
	var obj Object
	err := json.Unmarshal([]byte(`[1]`), &obj)
	assert.Error(t, err)
}

func TestFromAny_YAMLShapes(t *testing.T) {
	// yaml.v3 decodes integers as int and floats as float64
	v, err := FromAny(map[string]any{
		"count": 3,
		"ratio": 0.5,
		"tags":  []any{"a", nil},
	})
	require.NoError(t, err)

	assert.Equal(t, Object{
		"count": Number("3"),
		"ratio": Number("0.5"),
		"tags":  Array{String("a"), Null{}},
	}, v)
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.Error(t, err)
}

func TestToAny_RoundTrip(t *testing.T) {
	original := Object{
		"n":    Number("1.25"),
		"list": Array{Bool(true), Null{}},
	}

	back, err := FromAny(ToAny(original))
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"nil", nil, ""},
		{"null", Null{}, ""},
		{"string", String("Oak"), "Oak"},
		{"number", Number("18"), "18"},
		{"bool", Bool(false), "false"},
		{"array joins with comma", Array{Number("1"), String("b")}, "1,b"},
		{"object renders canonical", Object{"en": String("Oak")}, `{"en":"Oak"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Display(tt.input))
		})
	}
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+FB01 sorts before U+1F600 in UTF-8 but after it in UTF-16
	obj := Object{"\U0001F600": Null{}, "ﬁ": Null{}, "a": Null{}}
	assert.Equal(t, []string{"a", "\U0001F600", "ﬁ"}, obj.SortedKeys())
}

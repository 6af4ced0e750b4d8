package narrate

import (
	"strings"

	"github.com/roach88/advsearch/internal/operators"
)

// PhraseFunc returns the text for a message id with %{name} placeholders
// filled from vars.
type PhraseFunc func(msgID string, vars map[string]string) string

// Message ids. They double as the English text.
const (
	MsgFindAll        = "Find all %{graph} instances."
	MsgFindAllThat    = "Find all %{graph} instances that %{conditions}."
	MsgFindAllWhere   = "Find all %{graph} instances where %{conditions}."
	MsgPair           = "%{first} and %{second}"
	MsgListAnd        = "%{list}, and %{last}"
	MsgListOr         = "%{list}, or %{last}"
	MsgJoinAnd        = "%{left}, and %{right}"
	MsgJoinOr         = "%{left}, or %{right}"
	MsgClauseValue    = "the value of the %{field} node %{operator} %{value}"
	MsgClauseNoValue  = "the %{field} node %{operator}"
	MsgLocalizedValue = "%{value} (%{language})"
	MsgPathGraphField = "the %{graph} %{field} node"
	MsgPathField      = "the %{field} node"

	MsgInverseAllWhere  = "are the %{field} of all %{graph} instances where %{conditions}"
	MsgInverseAll       = "are the %{field} of all %{graph} instances"
	MsgInverseNoneWhere = "are the %{field} of no %{graph} instances where %{conditions}"
	MsgInverseNone      = "are the %{field} of no %{graph} instances"
	MsgInverseAnyWhere  = "are the %{field} of any %{graph} instances where %{conditions}"
	MsgInverseAny       = "are the %{field} of any %{graph} instances"
	MsgForwardAllWhere  = "have only %{field} where %{conditions}"
	MsgForwardAll       = "have only %{field}"
	MsgForwardNoneWhere = "have no %{field} where %{conditions}"
	MsgForwardNone      = "have no %{field}"
	MsgForwardAnyWhere  = "have at least one %{field} where %{conditions}"
	MsgForwardAny       = "have at least one %{field}"
)

// Interpolate is the default PhraseFunc: it substitutes %{name}
// placeholders in msgID. Unknown placeholders are left as written.
func Interpolate(msgID string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(msgID, "%{") {
		return msgID
	}

	var b strings.Builder
	rest := msgID
	for {
		start := strings.Index(rest, "%{")
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start

		b.WriteString(rest[:start])
		name := rest[start+2 : end]
		if v, ok := vars[name]; ok {
			b.WriteString(v)
		} else {
			b.WriteString(rest[start : end+1])
		}
		rest = rest[end+1:]
	}
	return b.String()
}

// Catalog is a PhraseFunc backed by a message table. Ids missing from the
// table fall back to the id itself, as gettext does.
func Catalog(messages map[string]string) PhraseFunc {
	return func(msgID string, vars map[string]string) string {
		if translated, ok := messages[msgID]; ok && translated != "" {
			msgID = translated
		}
		return Interpolate(msgID, vars)
	}
}

// OperatorLabels builds the operator label map with symbolic aliases
// translated through phrase.
func OperatorLabels(facets operators.FacetsByDatatype, phrase PhraseFunc) operators.LabelMap {
	if phrase == nil {
		return operators.BuildLabelMap(facets)
	}
	return operators.BuildLocalizedLabelMap(facets, func(msgID string) string {
		return phrase(msgID, nil)
	})
}

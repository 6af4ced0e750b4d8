package narrate

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/advsearch/internal/querytree"
)

// LocalizedDatatype is the datatype whose values arrive as language maps.
const LocalizedDatatype = "string"

// GraphSummary identifies a graph and its display names.
type GraphSummary struct {
	Slug  string `json:"slug" yaml:"slug"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// NodeMetadata describes one node of a graph.
type NodeMetadata struct {
	Label    string `json:"card_x_node_x_widget_label,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// NodeMetadataMap holds metadata keyed by (graph, node alias).
//
// On the wire the keys are tuple strings, "('person', 'age')", as
// produced by the node-metadata endpoint. Keys without the space after
// the comma are accepted too.
type NodeMetadataMap map[querytree.Segment]NodeMetadata

// FormatNodeKey renders a node key as a tuple string.
func FormatNodeKey(seg querytree.Segment) string {
	return fmt.Sprintf("('%s', '%s')", seg.Graph, seg.Node)
}

// ParseNodeKey parses a tuple string such as "('person', 'age')" or
// "('person','age')". Double quotes are accepted in either position.
func ParseNodeKey(key string) (querytree.Segment, bool) {
	s := strings.TrimSpace(key)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return querytree.Segment{}, false
	}
	s = strings.TrimSpace(s[1 : len(s)-1])

	graph, rest, ok := cutQuoted(s)
	if !ok {
		return querytree.Segment{}, false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, ",") {
		return querytree.Segment{}, false
	}
	node, rest, ok := cutQuoted(strings.TrimSpace(rest[1:]))
	if !ok || strings.TrimSpace(rest) != "" {
		return querytree.Segment{}, false
	}
	return querytree.Seg(graph, node), true
}

// cutQuoted reads one quoted string from the start of s and returns it
// along with whatever follows the closing quote.
func cutQuoted(s string) (value, rest string, ok bool) {
	if s == "" || (s[0] != '\'' && s[0] != '"') {
		return "", "", false
	}
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s):
			i++
			b.WriteByte(s[i])
		case c == quote:
			return b.String(), s[i+1:], true
		default:
			b.WriteByte(c)
		}
	}
	return "", "", false
}

// Lookup returns metadata for (graph, node).
func (m NodeMetadataMap) Lookup(graph, node string) (NodeMetadata, bool) {
	md, ok := m[querytree.Seg(graph, node)]
	return md, ok
}

// MarshalJSON writes tuple-string keys in sorted order.
func (m NodeMetadataMap) MarshalJSON() ([]byte, error) {
	keys := make([]querytree.Segment, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b querytree.Segment) int {
		if c := strings.Compare(a.Graph, b.Graph); c != 0 {
			return c
		}
		return strings.Compare(a.Node, b.Node)
	})

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		key, err := json.Marshal(FormatNodeKey(k))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m[k])
		if err != nil {
			return nil, err
		}
		out = append(out, string(key)+":"+string(val))
	}
	return []byte("{" + strings.Join(out, ",") + "}"), nil
}

// UnmarshalJSON reads tuple-string keys. A key that is not a tuple is an
// error; when both spellings of a key are present the spaced one wins.
func (m *NodeMetadataMap) UnmarshalJSON(data []byte) error {
	var raw map[string]NodeMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(NodeMetadataMap, len(raw))
	spaced := map[querytree.Segment]bool{}
	for key, md := range raw {
		seg, ok := ParseNodeKey(key)
		if !ok {
			return fmt.Errorf("node metadata key %q is not a (graph, node) tuple", key)
		}
		isSpaced := strings.Contains(key, ", ")
		if _, dup := out[seg]; dup && spaced[seg] && !isSpaced {
			continue
		}
		out[seg] = md
		spaced[seg] = isSpaced
	}
	*m = out
	return nil
}

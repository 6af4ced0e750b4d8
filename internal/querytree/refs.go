package querytree

// ReferencedNodes returns every (graph, node) pair a tree mentions, in
// first-seen depth-first order without duplicates. Subjects, PATH operands
// and relationship paths all count, including intermediate segments.
//
// The result is what a caller needs to fetch node metadata for narration.
func ReferencedNodes(g Group) []Segment {
	c := &refCollector{seen: map[Segment]bool{}, out: []Segment{}}
	c.group(g)
	return c.out
}

type refCollector struct {
	seen map[Segment]bool
	out  []Segment
}

func (c *refCollector) path(p Path) {
	for _, seg := range p {
		if seg.Graph == "" && seg.Node == "" {
			continue
		}
		if !c.seen[seg] {
			c.seen[seg] = true
			c.out = append(c.out, seg)
		}
	}
}

func (c *refCollector) group(g Group) {
	for _, clause := range g.Clauses {
		c.path(clause.Subject)
		for _, op := range clause.Operands {
			if p, ok := op.(PathOperand); ok {
				c.path(p.Path)
			}
		}
	}
	if g.Relationship != nil {
		c.path(g.Relationship.Path)
	}
	for _, child := range g.Groups {
		c.group(child)
	}
}

// GraphSlugs returns every graph slug used by a group in the tree, in
// depth-first order without duplicates.
func GraphSlugs(g Group) []string {
	seen := map[string]bool{}
	out := []string{}
	var walk func(Group)
	walk = func(g Group) {
		if g.GraphSlug != "" && !seen[g.GraphSlug] {
			seen[g.GraphSlug] = true
			out = append(out, g.GraphSlug)
		}
		for _, child := range g.Groups {
			walk(child)
		}
	}
	walk(g)
	return out
}

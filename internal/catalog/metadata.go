package catalog

import (
	"context"
	"fmt"

	"github.com/roach88/advsearch/internal/narrate"
	"github.com/roach88/advsearch/internal/querytree"
)

// Languages selects which translation of a localised label to show.
type Languages struct {
	Preferred string
	Default   string
}

// NodeMetadataForPayload returns the datatype and widget label of every
// node g references. Nodes missing from the catalog are still present,
// with an empty datatype and label.
func NodeMetadataForPayload(ctx context.Context, src Source, g querytree.Group, langs Languages) (narrate.NodeMetadataMap, error) {
	segs := querytree.ReferencedNodes(g)
	found, err := src.LookupNodes(ctx, segs)
	if err != nil {
		return nil, fmt.Errorf("node metadata: %w", err)
	}

	out := make(narrate.NodeMetadataMap, len(segs))
	for _, seg := range segs {
		n, ok := found[seg]
		if !ok {
			out[seg] = narrate.NodeMetadata{}
			continue
		}
		out[seg] = narrate.NodeMetadata{
			Label:    n.Label(langs.Preferred, langs.Default),
			Datatype: n.Datatype,
		}
	}
	return out, nil
}

// GraphSummaries lists every graph with its name resolved for langs.
func GraphSummaries(ctx context.Context, src Source, langs Languages) ([]narrate.GraphSummary, error) {
	graphs, err := src.Graphs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]narrate.GraphSummary, len(graphs))
	for i, g := range graphs {
		out[i] = narrate.GraphSummary{
			Slug: g.Slug,
			Name: g.Name.For(langs.Preferred, langs.Default),
		}
	}
	return out, nil
}

// NarrationOptions tunes NarrationConfig.
type NarrationOptions struct {
	Languages Languages
	// Phrase localises narration and operator alias phrases. Nil is English.
	Phrase narrate.PhraseFunc
	// Labels, when set, resolves labels for nodes without a widget label.
	Labels *CachedLabels
}

// NarrationConfig assembles everything a Narrator needs to describe g.
func NarrationConfig(ctx context.Context, src Source, g querytree.Group, opts NarrationOptions) (narrate.Config, error) {
	graphs, err := GraphSummaries(ctx, src, opts.Languages)
	if err != nil {
		return narrate.Config{}, fmt.Errorf("narration config: %w", err)
	}
	facets, err := src.Facets(ctx)
	if err != nil {
		return narrate.Config{}, fmt.Errorf("narration config: %w", err)
	}
	nodes, err := NodeMetadataForPayload(ctx, src, g, opts.Languages)
	if err != nil {
		return narrate.Config{}, fmt.Errorf("narration config: %w", err)
	}

	cfg := narrate.Config{
		Graphs:         graphs,
		OperatorLabels: narrate.OperatorLabels(facets, opts.Phrase),
		Nodes:          nodes,
		Phrase:         opts.Phrase,
	}
	if opts.Labels != nil {
		cfg.NodeLabel = opts.Labels.Label
	}
	return cfg, nil
}

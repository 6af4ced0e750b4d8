package catalog

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/advsearch/internal/querytree"
)

// DefaultCacheSize is used when NewCachedLabels is given a size below 1.
const DefaultCacheSize = 1024

// CachedLabels resolves node display labels through an LRU cache. Misses
// are cached too, so unknown nodes do not hit the Source repeatedly.
type CachedLabels struct {
	src   Source
	langs Languages
	cache *lru.Cache[querytree.Segment, string]
}

// NewCachedLabels creates a cache over src holding up to size labels.
func NewCachedLabels(src Source, size int, langs Languages) (*CachedLabels, error) {
	if size < 1 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[querytree.Segment, string](size)
	if err != nil {
		return nil, fmt.Errorf("create label cache: %w", err)
	}
	return &CachedLabels{src: src, langs: langs, cache: cache}, nil
}

// Label returns the display label of (graph, node): the widget label,
// else the node name. Unknown nodes give "". Satisfies
// narrate.NodeLabelFunc.
func (c *CachedLabels) Label(graph, node string) string {
	seg := querytree.Seg(graph, node)
	if label, ok := c.cache.Get(seg); ok {
		return label
	}

	found, err := c.src.LookupNodes(context.Background(), []querytree.Segment{seg})
	if err != nil {
		slog.Warn("node label lookup failed", "graph", graph, "node", node, "error", err)
		return ""
	}

	label := ""
	if n, ok := found[seg]; ok {
		label = n.DisplayLabel(c.langs.Preferred, c.langs.Default)
	}
	c.cache.Add(seg, label)
	slog.Debug("node label cached", "graph", graph, "node", node, "label", label)
	return label
}

// Warm loads the labels of segs in one lookup.
func (c *CachedLabels) Warm(ctx context.Context, segs []querytree.Segment) error {
	missing := make([]querytree.Segment, 0, len(segs))
	for _, seg := range segs {
		if !c.cache.Contains(seg) {
			missing = append(missing, seg)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	found, err := c.src.LookupNodes(ctx, missing)
	if err != nil {
		return fmt.Errorf("warm label cache: %w", err)
	}
	for _, seg := range missing {
		label := ""
		if n, ok := found[seg]; ok {
			label = n.DisplayLabel(c.langs.Preferred, c.langs.Default)
		}
		c.cache.Add(seg, label)
	}
	return nil
}

// WarmAll loads the labels of every node in the catalog and returns how
// many nodes it saw. Catalogs larger than the cache keep the last nodes.
func (c *CachedLabels) WarmAll(ctx context.Context) (int, error) {
	graphs, err := c.src.Graphs(ctx)
	if err != nil {
		return 0, fmt.Errorf("warm label cache: %w", err)
	}

	var segs []querytree.Segment
	for _, g := range graphs {
		nodes, err := c.src.Nodes(ctx, g.Slug)
		if err != nil {
			return 0, fmt.Errorf("warm label cache: graph %q: %w", g.Slug, err)
		}
		for _, n := range nodes {
			segs = append(segs, n.Segment())
		}
	}
	return len(segs), c.Warm(ctx, segs)
}

// Len reports the number of cached labels.
func (c *CachedLabels) Len() int {
	return c.cache.Len()
}

// Purge empties the cache, e.g. after a catalog import.
func (c *CachedLabels) Purge() {
	c.cache.Purge()
}

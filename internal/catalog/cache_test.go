package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/advsearch/internal/querytree"
)

// countingSource counts LookupNodes calls and can be told to fail.
type countingSource struct {
	Source
	lookups int
	fail    bool
}

func (c *countingSource) LookupNodes(ctx context.Context, segs []querytree.Segment) (map[querytree.Segment]Node, error) {
	c.lookups++
	if c.fail {
		return nil, errors.New("boom")
	}
	return c.Source.LookupNodes(ctx, segs)
}

func TestCachedLabels_Label(t *testing.T) {
	src := &countingSource{Source: NewMemory(loadTestFixture(t))}
	labels, err := NewCachedLabels(src, 8, Languages{Preferred: "de", Default: "en"})
	require.NoError(t, err)

	assert.Equal(t, "Alter", labels.Label("person", "age"))
	assert.Equal(t, "Alter", labels.Label("person", "age"))
	assert.Equal(t, 1, src.lookups, "second call is served from cache")

	assert.Equal(t, "Pets", labels.Label("person", "pets"), "falls back to node name")
	assert.Equal(t, "", labels.Label("cat", "tail"))
	assert.Equal(t, "", labels.Label("cat", "tail"))
	assert.Equal(t, 3, src.lookups, "misses are cached")
	assert.Equal(t, 3, labels.Len())

	labels.Purge()
	assert.Equal(t, 0, labels.Len())
}

func TestCachedLabels_Eviction(t *testing.T) {
	labels, err := NewCachedLabels(NewMemory(loadTestFixture(t)), 2, Languages{})
	require.NoError(t, err)

	labels.Label("person", "age")
	labels.Label("person", "name")
	labels.Label("dog", "owner")
	assert.Equal(t, 2, labels.Len())
}

func TestCachedLabels_ErrorsAreNotCached(t *testing.T) {
	src := &countingSource{Source: NewMemory(loadTestFixture(t)), fail: true}
	labels, err := NewCachedLabels(src, 0, Languages{})
	require.NoError(t, err)

	assert.Equal(t, "", labels.Label("person", "age"))
	assert.Equal(t, 0, labels.Len())

	src.fail = false
	assert.Equal(t, "Alter", labels.Label("person", "age"))
}

func TestCachedLabels_Warm(t *testing.T) {
	src := &countingSource{Source: NewMemory(loadTestFixture(t))}
	labels, err := NewCachedLabels(src, 8, Languages{Preferred: "en"})
	require.NoError(t, err)

	segs := []querytree.Segment{querytree.Seg("person", "age"), querytree.Seg("dog", "owner"), querytree.Seg("x", "y")}
	require.NoError(t, labels.Warm(context.Background(), segs))
	require.NoError(t, labels.Warm(context.Background(), segs))
	assert.Equal(t, 1, src.lookups)

	assert.Equal(t, "Age", labels.Label("person", "age"))
	assert.Equal(t, "Owner", labels.Label("dog", "owner"))
	assert.Equal(t, 1, src.lookups)

	src.fail = true
	assert.Error(t, labels.Warm(context.Background(), []querytree.Segment{querytree.Seg("person", "name")}))
}

func TestCachedLabels_WarmAll(t *testing.T) {
	src := &countingSource{Source: NewMemory(loadTestFixture(t))}
	labels, err := NewCachedLabels(src, 16, Languages{Preferred: "de", Default: "en"})
	require.NoError(t, err)

	n, err := labels.WarmAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Equal(t, 6, labels.Len())
	assert.Equal(t, 1, src.lookups)

	assert.Equal(t, "Vollständiger Name", labels.Label("person", "name"))
	assert.Equal(t, "Breed", labels.Label("dog", "breed"))
	assert.Equal(t, 1, src.lookups)
}

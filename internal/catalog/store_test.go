package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/advsearch/internal/operators"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)

	graphs, err := s.Graphs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Graph{}, graphs)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "catalog.db"))
	assert.Error(t, err)
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}

func TestImportFixture_Stats(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer s.Close()

	stats, err := s.ImportFixture(context.Background(), loadTestFixture(t))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Graphs: 2, Nodes: 6, Facets: 4}, stats)
}

func TestImportFixture_ReplacesNodesAndUpsertsFacets(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	f, err := ParseFixture([]byte(`
graphs:
  - slug: person
    name: Human
    nodes:
      - alias: age
        name: Age in years
        datatype: number
facets:
  number:
    - id: 10
      operator: GREATER_THAN
      label: "above"
      sortorder: 2
`))
	require.NoError(t, err)
	_, err = s.ImportFixture(ctx, f)
	require.NoError(t, err)

	g, err := s.Graph(ctx, "person")
	require.NoError(t, err)
	assert.Equal(t, operators.PlainLabel("Human"), g.Name)

	nodes, err := s.Nodes(ctx, "person")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Age in years", nodes[0].Name)

	dogs, err := s.Nodes(ctx, "dog")
	require.NoError(t, err)
	assert.Len(t, dogs, 2, "graphs absent from the fixture are untouched")

	facets, err := s.Facets(ctx)
	require.NoError(t, err)
	require.Len(t, facets["number"], 2)
	assert.Equal(t, "EQUALS", facets["number"][0].Operator)
	assert.Equal(t, operators.PlainLabel("above"), facets["number"][1].Label)
}

func TestImportFixture_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer s.Close()

	f := &Fixture{
		Graphs: []FixtureGraph{
			{Graph: Graph{Slug: "person", Name: operators.PlainLabel("Person")}, Nodes: []Node{
				{Graph: "person", Alias: "age"},
				{Graph: "person", Alias: "age"},
			}},
		},
		Facets: operators.FacetsByDatatype{},
	}
	_, err = s.ImportFixture(ctx, f)
	require.Error(t, err)

	graphs, err := s.Graphs(ctx)
	require.NoError(t, err)
	assert.Empty(t, graphs)
}

func TestLookupNodes_Empty(t *testing.T) {
	s := createTestStore(t)
	found, err := s.LookupNodes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

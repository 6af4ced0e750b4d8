package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fixturePath = "testdata/catalog.yaml"
	olderThan18 = "testdata/older_than_18.json"
	legacy      = "testdata/legacy_friends.json"
	draft       = "testdata/draft.json"
)

var hexFingerprint = regexp.MustCompile(`^[0-9a-f]{64}$`)

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestNarrateCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "with catalog",
			args: []string{"--catalog", fixturePath, "narrate", olderThan18},
			want: "Find all Person instances where the value of the Age node is greater than 18.",
		},
		{
			name: "without catalog",
			args: []string{"narrate", olderThan18},
			want: "Find all person instances where the value of the age node is GREATER_THAN 18.",
		},
		{
			name: "historical payload",
			args: []string{"--catalog", fixturePath, "narrate", legacy},
			want: "Find all Person instances that have at least one Friends.",
		},
		{
			name: "german labels",
			args: []string{"--catalog", fixturePath, "--lang", "de", "narrate", olderThan18},
			want: "Find all Person instances where the value of the Alter node is greater than 18.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestNarrateCommand_Stdin(t *testing.T) {
	payload, err := os.ReadFile(olderThan18)
	require.NoError(t, err)

	out, _, err := execute(t, string(payload), "--catalog", fixturePath, "narrate", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "greater than 18")
}

func TestNarrateCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "--catalog", fixturePath, "narrate", legacy)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Find all Person instances that have at least one Friends.", data["narration"])
	assert.Regexp(t, hexFingerprint, data["fingerprint"])
	assert.NotEmpty(t, data["migrations"])
}

func TestNarrateCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"graph_slug": "person", "clauses": "nope"}`), 0o644))

	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{"missing payload", []string{"narrate", filepath.Join(dir, "missing.json")}, ErrCodeNotFound},
		{"missing catalog", []string{"--catalog", filepath.Join(dir, "missing.yaml"), "narrate", olderThan18}, ErrCodeNotFound},
		{"missing database", []string{"--db", filepath.Join(dir, "missing.db"), "narrate", olderThan18}, ErrCodeNotFound},
		{"undecodable payload", []string{"narrate", bad}, ErrCodeDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"--format", "json"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeResponse(t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestValidateCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		out, _, err := execute(t, "", "--catalog", fixturePath, "validate", olderThan18)
		require.NoError(t, err)
		assert.Contains(t, out, "✓ Payload valid")
	})

	t.Run("draft fails with schema code", func(t *testing.T) {
		out, _, err := execute(t, "", "--format", "json", "validate", draft)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		resp := decodeResponse(t, out)
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, ErrCodeSchema, resp.Error.Code)

		data, ok := resp.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, data["valid"])
		assert.NotEmpty(t, data["issues"])
	})

	t.Run("draft text output", func(t *testing.T) {
		out, _, err := execute(t, "", "validate", draft)
		require.Error(t, err)
		assert.Contains(t, out, "✗ Validation failed")
		assert.Contains(t, out, "Q006")
	})

	t.Run("unknown operator is a warning", func(t *testing.T) {
		payload, err := os.ReadFile(olderThan18)
		require.NoError(t, err)
		typo := strings.Replace(string(payload), "GREATER_THAN", "GREATER_THEN", 1)

		out, _, err := execute(t, typo, "--catalog", fixturePath, "validate", "-")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ Payload valid")
		assert.Contains(t, out, "GREATER_THAN")
	})
}

func TestMigrateCommand(t *testing.T) {
	out, stderr, err := execute(t, "", "--verbose", "migrate", legacy)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload), out)
	rel, ok := payload["relationship"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{[]any{"person", "friends"}}, rel["path"])
	assert.Equal(t, false, rel["is_inverse"])
	assert.Equal(t, []any{"ANY"}, rel["traversal_quantifiers"])
	assert.NotContains(t, rel, "inverse")

	assert.Contains(t, stderr, "colon-path")
	assert.Contains(t, stderr, "quantifier-alias")
}

func TestMigrateCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "migrate", olderThan18)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{}, data["migrations"])
	assert.Equal(t, "person", data["payload"].(map[string]any)["graph_slug"])
}

func TestFingerprintCommand(t *testing.T) {
	current, _, err := execute(t, "", "fingerprint", olderThan18)
	require.NoError(t, err)
	assert.Regexp(t, hexFingerprint, strings.TrimSpace(current))

	// Same query, different key order, number spelling and quantifier alias.
	reordered := `{"relationship": null, "aggregations": [], "groups": [], "logic": "and", "scope": "RESOURCE",
		"clauses": [{"operands": [{"value": 18.0, "type": "LITERAL"}], "operator": "GREATER_THAN",
		"subject": ["person:age"], "quantifier": "SOME", "type": "LITERAL"}], "graph_slug": "person"}`
	again, _, err := execute(t, reordered, "fingerprint", "-")
	require.NoError(t, err)
	assert.Equal(t, current, again)
}

func TestCatalogImportCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "catalog.db")

	out, _, err := execute(t, "", "--db", db, "catalog", "import", fixturePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 graph(s), 2 node(s), 2 facet(s)")

	// The imported database serves narration.
	out, _, err = execute(t, "", "--db", db, "narrate", olderThan18)
	require.NoError(t, err)
	assert.Equal(t, "Find all Person instances where the value of the Age node is greater than 18.\n", out)

	out, _, err = execute(t, "", "--db", db, "--format", "json", "catalog", "graphs")
	require.NoError(t, err)
	resp := decodeResponse(t, out)
	graphs, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, graphs, 1)
	assert.Equal(t, "person", graphs[0].(map[string]any)["slug"])
}

func TestCatalogImportCommand_RequiresDB(t *testing.T) {
	_, _, err := execute(t, "", "catalog", "import", fixturePath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--db is required")
}

func TestCatalogGraphs_RequiresCatalog(t *testing.T) {
	_, _, err := execute(t, "", "catalog", "graphs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no catalog configured")
}

func TestServe_RequiresCatalog(t *testing.T) {
	_, _, err := execute(t, "", "serve")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no catalog configured")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "advsearch.yaml")
	abs, err := filepath.Abs(fixturePath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, []byte("catalog:\n  fixture: "+abs+"\nnarration:\n  language: de\n"), 0o644))

	out, _, err := execute(t, "", "--config", cfgPath, "narrate", olderThan18)
	require.NoError(t, err)
	assert.Contains(t, out, "Alter")

	// Flags override the file.
	out, _, err = execute(t, "", "--config", cfgPath, "--lang", "en", "narrate", olderThan18)
	require.NoError(t, err)
	assert.Contains(t, out, "Age")
}

package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/advsearch/internal/ir"
)

// Snapshot is the part of a result stored in golden files. Fingerprints
// and payloads are left out so codec changes that keep meaning do not
// churn every golden file.
type Snapshot struct {
	ScenarioName string
	Narration    string
	Valid        bool
	Issues       []string
	Migrations   []string
}

// toValue converts a Snapshot into an ir.Object for canonical JSON.
func (s Snapshot) toValue() ir.Object {
	return ir.Object{
		"scenario_name": ir.String(s.ScenarioName),
		"narration":     ir.String(s.Narration),
		"valid":         ir.Bool(s.Valid),
		"issues":        stringArray(s.Issues),
		"migrations":    stringArray(s.Migrations),
	}
}

func stringArray(items []string) ir.Array {
	out := make(ir.Array, len(items))
	for i, item := range items {
		out[i] = ir.String(item)
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. Test failure (via goldie)
// occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Narration:    result.Narration,
		Valid:        result.Valid,
		Issues:       result.Issues,
		Migrations:   result.Migrations,
	}
	data, err := ir.MarshalCanonical(snapshot.toValue())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

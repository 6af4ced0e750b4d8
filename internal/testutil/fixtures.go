package testutil

import (
	"github.com/roach88/advsearch/internal/catalog"
	"github.com/roach88/advsearch/internal/operators"
)

// Catalog returns a small catalog of people, dogs and places shared by
// server, CLI and pipeline tests:
//
//	person: name (string), age (number), friends, pets (resource lists)
//	dog:    owner (resource), breed (concept)
//	place:  no nodes, no name
//
// Labels are localised in English and German.
func Catalog() *catalog.Fixture {
	en := func(en, de string) operators.Label {
		return operators.LocalizedLabel(
			operators.Translation{Language: "en", Text: en},
			operators.Translation{Language: "de", Text: de},
		)
	}
	return &catalog.Fixture{
		Graphs: []catalog.FixtureGraph{
			{
				Graph: catalog.Graph{Slug: "person", Name: en("Person", "Person")},
				Nodes: []catalog.Node{
					{Graph: "person", Alias: "name", Name: "Name", Datatype: "string", SortOrder: 1, WidgetLabel: en("Name", "Name")},
					{Graph: "person", Alias: "age", Name: "Age", Datatype: "number", SortOrder: 2, WidgetLabel: en("Age", "Alter")},
					{Graph: "person", Alias: "friends", Name: "Friends", Datatype: "resource-instance-list", SortOrder: 3, WidgetLabel: en("Friends", "Freunde")},
					{Graph: "person", Alias: "pets", Name: "Pets", Datatype: "resource-instance-list", SortOrder: 4, WidgetLabel: en("Pets", "Haustiere")},
				},
			},
			{
				Graph: catalog.Graph{Slug: "dog", Name: en("Dog", "Hund")},
				Nodes: []catalog.Node{
					{Graph: "dog", Alias: "owner", Name: "Owner", Datatype: "resource-instance", SortOrder: 1, WidgetLabel: en("Owner", "Besitzer")},
					{Graph: "dog", Alias: "breed", Name: "Breed", Datatype: "concept", SortOrder: 2},
				},
			},
			{
				Graph: catalog.Graph{Slug: "place"},
				Nodes: []catalog.Node{},
			},
		},
		Facets: operators.FacetsByDatatype{
			"number": {
				{ID: 1, DatatypeID: "number", Operator: "EQUALS", Label: operators.PlainLabel("="), Arity: 1, ParamFormats: []string{"number"}, SortOrder: 1},
				{ID: 2, DatatypeID: "number", Operator: "GREATER_THAN", Label: operators.PlainLabel(">"), Arity: 1, ParamFormats: []string{"number"}, SortOrder: 2},
				{ID: 3, DatatypeID: "number", Operator: "LESS_THAN", Label: operators.PlainLabel("<"), Arity: 1, ParamFormats: []string{"number"}, SortOrder: 3},
			},
			"string": {
				{ID: 4, DatatypeID: "string", Operator: "LIKE", Label: en("contains", "enthält"), Arity: 1, ParamFormats: []string{"string"}, SortOrder: 1},
				{ID: 5, DatatypeID: "string", Operator: "HAS_ANY_VALUE", Label: en("has any value", "hat einen Wert"), ParamFormats: []string{}, SortOrder: 2},
			},
		},
	}
}

// Memory returns Catalog as an in-memory Source.
func Memory() *catalog.Memory {
	return catalog.NewMemory(Catalog())
}

// PersonOlderThan18 is a steady-state payload: people whose age is
// greater than 18.
const PersonOlderThan18 = `{
	"graph_slug": "person",
	"scope": "RESOURCE",
	"logic": "AND",
	"clauses": [{
		"type": "LITERAL",
		"quantifier": "ANY",
		"subject": [["person", "age"]],
		"operator": "GREATER_THAN",
		"operands": [{"type": "LITERAL", "value": 18}]
	}],
	"groups": [],
	"aggregations": [],
	"relationship": null
}`

// PersonWithFriends is a historical payload: colon path, "inverse" flag,
// scalar AT_LEAST quantifier and missing group fields.
const PersonWithFriends = `{
	"graph_slug": "person",
	"relationship": {"path": ["person:friends"], "inverse": false, "traversal_quantifier": "AT_LEAST"},
	"groups": [{"graph_slug": "person"}]
}`

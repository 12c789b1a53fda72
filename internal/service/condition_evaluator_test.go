package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/print24/pricing_api/internal/models"
)

func leaf(field string, op models.ConditionOperator, value interface{}) models.ConditionNode {
	return models.ConditionNode{Field: field, Operator: op, Value: value}
}

func TestEvaluateLeafOperators(t *testing.T) {
	t.Parallel()

	e := NewConditionEvaluator(32)
	ctx := map[string]interface{}{
		"category": "business-cards",
		"quantity": 500,
		"price":    d("99.50"),
	}

	cases := []struct {
		name string
		node models.ConditionNode
		want bool
	}{
		{"equals string", leaf("category", models.OpEquals, "business-cards"), true},
		{"equals mismatch", leaf("category", models.OpEquals, "flyers"), false},
		{"not equals", leaf("category", models.OpNotEquals, "flyers"), true},
		{"gt", leaf("quantity", models.OpGT, 499), true},
		{"gt boundary", leaf("quantity", models.OpGT, 500), false},
		{"gte boundary", leaf("quantity", models.OpGTE, 500), true},
		{"lt", leaf("quantity", models.OpLT, 1000), true},
		{"lte", leaf("quantity", models.OpLTE, 500), true},
		{"in", leaf("category", models.OpIn, []interface{}{"flyers", "business-cards"}), true},
		{"in miss", leaf("category", models.OpIn, []interface{}{"flyers", "posters"}), false},
		{"decimal vs float equal", leaf("price", models.OpEquals, 99.5), true},
		{"numeric cross-type compare", leaf("quantity", models.OpGTE, 499.5), true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			node := tc.node
			require.Equal(t, tc.want, e.Evaluate(&node, ctx))
		})
	}
}

func TestEvaluateFailsClosed(t *testing.T) {
	t.Parallel()

	e := NewConditionEvaluator(32)
	ctx := map[string]interface{}{"quantity": 500}

	// Unknown field.
	n := leaf("missing", models.OpEquals, 1)
	require.False(t, e.Evaluate(&n, ctx))

	// Unknown operator.
	n = leaf("quantity", "LIKE", 500)
	require.False(t, e.Evaluate(&n, ctx))

	// Type mismatch: string value against a numeric comparison.
	n = leaf("quantity", models.OpGT, "lots")
	require.False(t, e.Evaluate(&n, ctx))

	// String in context, numeric comparison.
	n = leaf("quantity", models.OpGT, 1)
	require.False(t, e.Evaluate(&n, map[string]interface{}{"quantity": "500"}))

	// Nil tree.
	require.False(t, e.Evaluate(nil, ctx))

	// IN against a non-slice value.
	n = leaf("quantity", models.OpIn, 500)
	require.False(t, e.Evaluate(&n, ctx))
}

func TestEvaluateCombinators(t *testing.T) {
	t.Parallel()

	e := NewConditionEvaluator(32)
	ctx := map[string]interface{}{
		"category": "business-cards",
		"quantity": 750,
		"geo_zone": "South",
	}

	// category == business-cards AND quantity >= 500 AND zone in {South, West}
	tree := &models.ConditionNode{And: []models.ConditionNode{
		leaf("category", models.OpEquals, "business-cards"),
		leaf("quantity", models.OpGTE, 500),
		leaf("geo_zone", models.OpIn, []interface{}{"South", "West"}),
	}}
	require.True(t, e.Evaluate(tree, ctx))

	// One false conjunct fails the whole AND.
	tree.And[1] = leaf("quantity", models.OpGTE, 1000)
	require.False(t, e.Evaluate(tree, ctx))

	// OR matches when any child does.
	or := &models.ConditionNode{Or: []models.ConditionNode{
		leaf("category", models.OpEquals, "flyers"),
		leaf("geo_zone", models.OpEquals, "South"),
	}}
	require.True(t, e.Evaluate(or, ctx))

	// Nested: (flyers OR business-cards) AND quantity > 500.
	nested := &models.ConditionNode{And: []models.ConditionNode{
		{Or: []models.ConditionNode{
			leaf("category", models.OpEquals, "flyers"),
			leaf("category", models.OpEquals, "business-cards"),
		}},
		leaf("quantity", models.OpGT, 500),
	}}
	require.True(t, e.Evaluate(nested, ctx))
}

func TestEvaluateDepthBound(t *testing.T) {
	t.Parallel()

	e := NewConditionEvaluator(3)
	ctx := map[string]interface{}{"quantity": 1}

	// Build a chain deeper than the bound; it must evaluate false rather
	// than recurse forever.
	node := leaf("quantity", models.OpEquals, 1)
	for i := 0; i < 10; i++ {
		node = models.ConditionNode{And: []models.ConditionNode{node}}
	}
	require.False(t, e.Evaluate(&node, ctx))

	// Within bound, the same shape matches.
	shallow := models.ConditionNode{And: []models.ConditionNode{leaf("quantity", models.OpEquals, 1)}}
	require.True(t, e.Evaluate(&shallow, ctx))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	e := NewConditionEvaluator(32)

	require.NotEmpty(t, e.Validate(nil))

	valid := &models.ConditionNode{And: []models.ConditionNode{
		leaf("category", models.OpEquals, "flyers"),
		leaf("quantity", models.OpGTE, 100),
	}}
	require.Empty(t, e.Validate(valid))

	// Missing field.
	bad := &models.ConditionNode{And: []models.ConditionNode{
		leaf("", models.OpEquals, "flyers"),
	}}
	errs := e.Validate(bad)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "root.AND[0]")
	require.Contains(t, errs[0], "missing field")

	// Unknown operator and IN with scalar are both reported.
	bad = &models.ConditionNode{Or: []models.ConditionNode{
		leaf("category", "MATCHES", "flyers"),
		leaf("category", models.OpIn, "flyers"),
	}}
	errs = e.Validate(bad)
	require.Len(t, errs, 2)

	// Combinator carrying leaf fields.
	mixed := &models.ConditionNode{
		Field: "category",
		And:   []models.ConditionNode{leaf("quantity", models.OpGT, 1)},
	}
	errs = e.Validate(mixed)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "combinator")
}

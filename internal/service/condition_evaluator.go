package service

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"

	"github.com/print24/pricing_api/internal/models"
)

// ConditionEvaluator evaluates nested AND/OR condition trees against a flat
// context record. Evaluation is pure and fails closed: an unknown field,
// unknown operator, type mismatch or over-deep tree evaluates to false so a
// malformed condition can never grant an adjustment.
type ConditionEvaluator struct {
	maxDepth int
}

// NewConditionEvaluator creates an evaluator with the given recursion bound.
func NewConditionEvaluator(maxDepth int) *ConditionEvaluator {
	if maxDepth <= 0 {
		maxDepth = 32
	}
	return &ConditionEvaluator{maxDepth: maxDepth}
}

// Evaluate returns whether the tree matches the context. AND stops at the
// first false child, OR at the first true child.
func (e *ConditionEvaluator) Evaluate(tree *models.ConditionNode, ctx map[string]interface{}) bool {
	return e.eval(tree, ctx, 0)
}

func (e *ConditionEvaluator) eval(node *models.ConditionNode, ctx map[string]interface{}, depth int) bool {
	if node == nil || depth > e.maxDepth {
		return false
	}

	if len(node.And) > 0 {
		for i := range node.And {
			if !e.eval(&node.And[i], ctx, depth+1) {
				return false
			}
		}
		return true
	}

	if len(node.Or) > 0 {
		for i := range node.Or {
			if e.eval(&node.Or[i], ctx, depth+1) {
				return true
			}
		}
		return false
	}

	return e.evalLeaf(node, ctx)
}

func (e *ConditionEvaluator) evalLeaf(leaf *models.ConditionNode, ctx map[string]interface{}) bool {
	actual, ok := ctx[leaf.Field]
	if !ok {
		return false
	}

	switch leaf.Operator {
	case models.OpEquals:
		return equalValues(actual, leaf.Value)
	case models.OpNotEquals:
		return !equalValues(actual, leaf.Value)
	case models.OpIn:
		return containsValue(leaf.Value, actual)
	case models.OpGT, models.OpGTE, models.OpLT, models.OpLTE:
		a, aok := toDecimal(actual)
		b, bok := toDecimal(leaf.Value)
		if !aok || !bok {
			return false
		}
		switch leaf.Operator {
		case models.OpGT:
			return a.GreaterThan(b)
		case models.OpGTE:
			return a.GreaterThanOrEqual(b)
		case models.OpLT:
			return a.LessThan(b)
		default:
			return a.LessThanOrEqual(b)
		}
	default:
		return false
	}
}

// Validate recursively checks the tree's structure without evaluating it:
// every leaf needs a field, a known operator and a value; every combinator
// needs a non-empty child list and no sibling leaf fields. Returns a list
// of human-readable problems, empty when the tree is valid.
func (e *ConditionEvaluator) Validate(tree *models.ConditionNode) []string {
	if tree == nil {
		return []string{"condition tree is empty"}
	}
	var errs []string
	e.validate(tree, "root", 0, &errs)
	return errs
}

func (e *ConditionEvaluator) validate(node *models.ConditionNode, path string, depth int, errs *[]string) {
	if depth > e.maxDepth {
		*errs = append(*errs, fmt.Sprintf("%s: tree exceeds maximum depth %d", path, e.maxDepth))
		return
	}

	isAnd := len(node.And) > 0
	isOr := len(node.Or) > 0

	if isAnd || isOr {
		if node.Field != "" || node.Operator != "" || node.Value != nil {
			*errs = append(*errs, fmt.Sprintf("%s: combinator node cannot carry leaf fields", path))
		}
		children := node.And
		label := "AND"
		if isOr {
			children = node.Or
			label = "OR"
		}
		for i := range children {
			e.validate(&children[i], fmt.Sprintf("%s.%s[%d]", path, label, i), depth+1, errs)
		}
		return
	}

	if node.Field == "" {
		*errs = append(*errs, fmt.Sprintf("%s: leaf is missing field", path))
	}
	if !models.KnownOperator(node.Operator) {
		*errs = append(*errs, fmt.Sprintf("%s: unknown operator %q", path, node.Operator))
	}
	if node.Value == nil {
		*errs = append(*errs, fmt.Sprintf("%s: leaf is missing value", path))
	}
	if node.Operator == models.OpIn && node.Value != nil {
		if reflect.ValueOf(node.Value).Kind() != reflect.Slice {
			*errs = append(*errs, fmt.Sprintf("%s: IN requires an array value", path))
		}
	}
}

// equalValues compares two values structurally, treating numerics of
// different Go types as equal when their decimal values match.
func equalValues(a, b interface{}) bool {
	if ad, aok := toDecimal(a); aok {
		if bd, bok := toDecimal(b); bok {
			return ad.Equal(bd)
		}
		return false
	}
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		return bok && as == bs
	}
	return reflect.DeepEqual(a, b)
}

// containsValue tests set membership for IN. A non-slice set is a type
// mismatch and fails closed.
func containsValue(set, needle interface{}) bool {
	if set == nil {
		return false
	}
	rv := reflect.ValueOf(set)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if equalValues(needle, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

// toDecimal coerces supported numeric types. Strings are deliberately not
// coerced; a string where a number is expected is a type mismatch.
func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

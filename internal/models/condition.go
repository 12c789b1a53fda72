package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ConditionOperator enumerates the comparison operators allowed in a
// condition leaf. Anything outside this set is rejected at validation time.
type ConditionOperator string

const (
	OpEquals    ConditionOperator = "EQUALS"
	OpNotEquals ConditionOperator = "NOT_EQUALS"
	OpIn        ConditionOperator = "IN"
	OpGT        ConditionOperator = "GT"
	OpGTE       ConditionOperator = "GTE"
	OpLT        ConditionOperator = "LT"
	OpLTE       ConditionOperator = "LTE"
)

// KnownOperator reports whether op is part of the closed operator set.
func KnownOperator(op ConditionOperator) bool {
	switch op {
	case OpEquals, OpNotEquals, OpIn, OpGT, OpGTE, OpLT, OpLTE:
		return true
	}
	return false
}

// ConditionNode is one node of a condition tree: either a leaf comparison
// (Field/Operator/Value set) or a combinator (exactly one of And/Or set).
// The JSON wire shape is {"field":..,"operator":..,"value":..} for a leaf
// and {"AND":[..]} / {"OR":[..]} for combinators.
type ConditionNode struct {
	Field    string            `json:"field,omitempty"`
	Operator ConditionOperator `json:"operator,omitempty"`
	Value    interface{}       `json:"value,omitempty"`

	And []ConditionNode `json:"-"`
	Or  []ConditionNode `json:"-"`
}

// IsLeaf reports whether the node is a leaf comparison.
func (n *ConditionNode) IsLeaf() bool {
	return len(n.And) == 0 && len(n.Or) == 0
}

type conditionLeafJSON struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    interface{}       `json:"value"`
}

// MarshalJSON emits the combinator shape for AND/OR nodes and the flat
// leaf shape otherwise.
func (n ConditionNode) MarshalJSON() ([]byte, error) {
	if len(n.And) > 0 {
		return json.Marshal(map[string][]ConditionNode{"AND": n.And})
	}
	if len(n.Or) > 0 {
		return json.Marshal(map[string][]ConditionNode{"OR": n.Or})
	}
	return json.Marshal(conditionLeafJSON{Field: n.Field, Operator: n.Operator, Value: n.Value})
}

// UnmarshalJSON accepts either combinator shape. A node with an AND or OR
// key is a combinator; everything else is parsed as a leaf. Structural
// errors (non-object, AND plus OR in one node) fail the unmarshal so that
// malformed trees are rejected before they are ever stored.
func (n *ConditionNode) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("condition node must be an object: %w", err)
	}

	andRaw, hasAnd := raw["AND"]
	orRaw, hasOr := raw["OR"]
	if hasAnd && hasOr {
		return errors.New("condition node cannot combine AND and OR")
	}

	if hasAnd {
		if len(raw) != 1 {
			return errors.New("AND node must have exactly one key")
		}
		return json.Unmarshal(andRaw, &n.And)
	}
	if hasOr {
		if len(raw) != 1 {
			return errors.New("OR node must have exactly one key")
		}
		return json.Unmarshal(orRaw, &n.Or)
	}

	var leaf conditionLeafJSON
	if err := json.Unmarshal(data, &leaf); err != nil {
		return err
	}
	n.Field = leaf.Field
	n.Operator = leaf.Operator
	n.Value = leaf.Value
	return nil
}

// ConditionTree wraps an optional root node so it can live in a nullable
// jsonb column and serialize naturally over the API.
type ConditionTree struct {
	Root *ConditionNode
}

// IsZero reports whether the tree is empty.
func (t ConditionTree) IsZero() bool { return t.Root == nil }

// MarshalJSON renders the root node, or null for an empty tree.
func (t ConditionTree) MarshalJSON() ([]byte, error) {
	if t.Root == nil {
		return []byte("null"), nil
	}
	return json.Marshal(t.Root)
}

// UnmarshalJSON parses the root node; JSON null yields an empty tree.
func (t *ConditionTree) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Root = nil
		return nil
	}
	var node ConditionNode
	if err := json.Unmarshal(data, &node); err != nil {
		return err
	}
	t.Root = &node
	return nil
}

// Value implements driver.Valuer for jsonb storage.
func (t ConditionTree) Value() (driver.Value, error) {
	if t.Root == nil {
		return nil, nil
	}
	return json.Marshal(t.Root)
}

// Scan implements sql.Scanner for jsonb columns.
func (t *ConditionTree) Scan(src interface{}) error {
	if src == nil {
		t.Root = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ConditionTree", src)
	}
	return t.UnmarshalJSON(data)
}

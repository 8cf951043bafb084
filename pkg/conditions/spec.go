// Package conditions implements the boolean condition DSL gating rule
// execution: a tagged tree of comparisons combined with and/or, evaluated
// against a trigger payload. Evaluation is pure and never performs I/O.
package conditions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Operator tags a node of the condition tree.
type Operator string

const (
	OpEquals     Operator = "equals"
	OpNotEquals  Operator = "not_equals"
	OpIn         Operator = "in"
	OpNotIn      Operator = "not_in"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
	OpGT         Operator = "gt"
	OpGTE        Operator = "gte"
	OpLT         Operator = "lt"
	OpLTE        Operator = "lte"
	OpIsEmpty    Operator = "is_empty"
	OpIsNotEmpty Operator = "is_not_empty"
	OpAnd        Operator = "and"
	OpOr         Operator = "or"
)

var validOperators = map[Operator]bool{
	OpEquals: true, OpNotEquals: true, OpIn: true, OpNotIn: true,
	OpContains: true, OpStartsWith: true, OpEndsWith: true,
	OpGT: true, OpGTE: true, OpLT: true, OpLTE: true,
	OpIsEmpty: true, OpIsNotEmpty: true, OpAnd: true, OpOr: true,
}

// Spec is one node of a condition tree. Leaf nodes carry a field dot-path and
// a comparison value; and/or nodes carry children. A nil Spec always matches.
type Spec struct {
	Op       Operator `json:"op"`
	Field    string   `json:"field,omitempty"`
	Value    any      `json:"value,omitempty"`
	Values   []any    `json:"values,omitempty"`
	Children []*Spec  `json:"children,omitempty"`
}

// IsBranch reports whether the node combines children instead of comparing.
func (s *Spec) IsBranch() bool {
	return s.Op == OpAnd || s.Op == OpOr
}

// Parse decodes a stored condition spec. Three shapes are accepted:
//
//   - the tagged tree form: {"op":"and","children":[...]}
//   - an array of leaves, shorthand for an "and" over them
//   - the legacy flat form: {"field": literal | {"equals"|"in"|"not"|"contains": ...}}
//
// Legacy flat maps are translated into an implicit "and" tree so that only
// one evaluation path exists. An empty or null document parses to nil,
// meaning "always match".
func Parse(raw json.RawMessage) (*Spec, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var children []*Spec

		err := json.Unmarshal(trimmed, &children)
		if err != nil {
			return nil, fmt.Errorf("malformed condition list: %w", err)
		}

		for _, child := range children {
			err := validate(child)
			if err != nil {
				return nil, err
			}
		}

		return &Spec{Op: OpAnd, Children: children}, nil
	}

	var probe map[string]json.RawMessage

	err := json.Unmarshal(trimmed, &probe)
	if err != nil {
		return nil, fmt.Errorf("malformed condition spec: %w", err)
	}

	if len(probe) == 0 {
		return nil, nil
	}

	if _, tagged := probe["op"]; tagged {
		var spec Spec

		err := json.Unmarshal(trimmed, &spec)
		if err != nil {
			return nil, fmt.Errorf("malformed condition spec: %w", err)
		}

		err = validate(&spec)
		if err != nil {
			return nil, err
		}

		return &spec, nil
	}

	return parseLegacy(probe)
}

// Marshal validates a decoded condition document and re-encodes it for
// storage. A nil or empty document round-trips to nil, "always match".
func Marshal(doc map[string]any) (json.RawMessage, error) {
	if len(doc) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode condition spec: %w", err)
	}

	_, err = Parse(raw)
	if err != nil {
		return nil, err
	}

	return raw, nil
}

func validate(s *Spec) error {
	if s == nil {
		return nil
	}

	if !validOperators[s.Op] {
		return fmt.Errorf("unknown condition operator %q", s.Op)
	}

	if s.IsBranch() {
		for _, child := range s.Children {
			err := validate(child)
			if err != nil {
				return err
			}
		}

		return nil
	}

	if s.Field == "" {
		return fmt.Errorf("condition operator %q requires a field", s.Op)
	}

	return nil
}

// parseLegacy translates the old flat map format into an implicit "and" of
// per-field checks. Fields are processed in sorted order so that translation
// is deterministic.
func parseLegacy(fields map[string]json.RawMessage) (*Spec, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	sort.Strings(names)

	children := make([]*Spec, 0, len(names))

	for _, name := range names {
		leaves, err := parseLegacyField(name, fields[name])
		if err != nil {
			return nil, err
		}

		children = append(children, leaves...)
	}

	return &Spec{Op: OpAnd, Children: children}, nil
}

func parseLegacyField(field string, raw json.RawMessage) ([]*Spec, error) {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var ops map[string]any

		err := json.Unmarshal(trimmed, &ops)
		if err != nil {
			return nil, fmt.Errorf("malformed legacy condition for field %q: %w", field, err)
		}

		names := make([]string, 0, len(ops))
		for name := range ops {
			names = append(names, name)
		}

		sort.Strings(names)

		leaves := make([]*Spec, 0, len(names))

		for _, name := range names {
			leaf, err := legacyLeaf(field, name, ops[name])
			if err != nil {
				return nil, err
			}

			leaves = append(leaves, leaf)
		}

		return leaves, nil
	}

	var literal any

	err := json.Unmarshal(trimmed, &literal)
	if err != nil {
		return nil, fmt.Errorf("malformed legacy condition for field %q: %w", field, err)
	}

	return []*Spec{{Op: OpEquals, Field: field, Value: literal}}, nil
}

func legacyLeaf(field, op string, value any) (*Spec, error) {
	switch op {
	case "equals":
		return &Spec{Op: OpEquals, Field: field, Value: value}, nil
	case "not":
		return &Spec{Op: OpNotEquals, Field: field, Value: value}, nil
	case "contains":
		return &Spec{Op: OpContains, Field: field, Value: value}, nil
	case "in":
		values, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("legacy \"in\" condition for field %q requires a list", field)
		}

		return &Spec{Op: OpIn, Field: field, Values: values}, nil
	default:
		return nil, fmt.Errorf("unknown legacy condition operator %q for field %q", op, field)
	}
}

package conditions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Evaluate resolves a condition tree against a trigger payload. A nil spec
// always matches. "and" short-circuits on the first false child and an empty
// "and" is true; "or" short-circuits on the first true child and an empty
// "or" is false.
//
// Field references are dot-paths walked through nested maps. A missing hop
// resolves to undefined, and every comparison against undefined except
// is_empty/is_not_empty is false. Comparisons never return errors: a type
// mismatch simply fails the condition.
func Evaluate(spec *Spec, payload map[string]any) bool {
	if spec == nil {
		return true
	}

	switch spec.Op {
	case OpAnd:
		for _, child := range spec.Children {
			if !Evaluate(child, payload) {
				return false
			}
		}

		return true
	case OpOr:
		for _, child := range spec.Children {
			if Evaluate(child, payload) {
				return true
			}
		}

		return false
	default:
		return evaluateLeaf(spec, payload)
	}
}

func evaluateLeaf(spec *Spec, payload map[string]any) bool {
	value, found := Resolve(payload, spec.Field)

	switch spec.Op {
	case OpIsEmpty:
		return !found || isEmpty(value)
	case OpIsNotEmpty:
		return found && !isEmpty(value)
	}

	if !found {
		return false
	}

	switch spec.Op {
	case OpEquals:
		return looseEqual(value, spec.Value)
	case OpNotEquals:
		return !looseEqual(value, spec.Value)
	case OpIn:
		return memberOf(value, spec.Values)
	case OpNotIn:
		return !memberOf(value, spec.Values)
	case OpContains:
		return containsValue(value, spec.Value)
	case OpStartsWith:
		str, ok := value.(string)

		return ok && strings.HasPrefix(str, stringify(spec.Value))
	case OpEndsWith:
		str, ok := value.(string)

		return ok && strings.HasSuffix(str, stringify(spec.Value))
	case OpGT, OpGTE, OpLT, OpLTE:
		return numericCompare(spec.Op, value, spec.Value)
	default:
		return false
	}
}

// Resolve walks a dot-path through nested maps. The second return value is
// false as soon as any hop is missing or a non-map is traversed into.
func Resolve(payload map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = payload

	for _, hop := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[hop]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// looseEqual compares values the way rule authors expect: numbers by value
// regardless of Go type, booleans strictly, everything else by string form.
func looseEqual(left, right any) bool {
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)

	if lok && rok {
		return lf == rf
	}

	if lok != rok {
		return false
	}

	if lb, ok := left.(bool); ok {
		rb, ok := right.(bool)

		return ok && lb == rb
	}

	return stringify(left) == stringify(right)
}

func memberOf(value any, values []any) bool {
	for _, candidate := range values {
		if looseEqual(value, candidate) {
			return true
		}
	}

	return false
}

// containsValue handles both string containment and list membership, since
// payload fields like labels arrive as []any.
func containsValue(value, needle any) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(v, stringify(needle))
	case []any:
		return memberOf(needle, v)
	case []string:
		for _, item := range v {
			if looseEqual(item, needle) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func numericCompare(op Operator, left, right any) bool {
	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)

	if !lok || !rok {
		return false
	}

	switch op {
	case OpGT:
		return lf > rf
	case OpGTE:
		return lf >= rf
	case OpLT:
		return lf < rf
	case OpLTE:
		return lf <= rf
	default:
		return false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotAMap is returned when a map was expected in a definition document
	ErrNotAMap = errors.New("expected a map")
	// ErrNotAList is returned when a list was expected in a definition document
	ErrNotAList = errors.New("expected a list")
	// ErrUnsupportedValue is returned for values that are neither map, list nor scalar
	ErrUnsupportedValue = errors.New("unsupported document value")
)

// Kind identifies which variant a Node holds
type Kind int

const (
	// KindNull is an absent or explicit null value
	KindNull Kind = iota
	// KindScalar is a string, bool or number
	KindScalar
	// KindList is an ordered sequence of nodes
	KindList
	// KindMap is a string-keyed mapping of nodes
	KindMap
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Node is a normalized definition document value.
// Map keys are always strings; scalars are string, bool, int64 or float64.
type Node struct {
	kind   Kind
	scalar interface{}
	list   []Node
	fields map[string]Node
}

// NewNode normalizes a decoded document (YAML, JSON or hand-built maps) into a Node.
// Non-string map keys are converted with their decimal/text form. Values that are
// not maps, lists or scalars are rejected with ErrUnsupportedValue.
func NewNode(v interface{}) (Node, error) {
	switch val := v.(type) {
	case nil:
		return Node{kind: KindNull}, nil
	case Node:
		return val, nil
	case string:
		return scalarNode(val), nil
	case bool:
		return scalarNode(val), nil
	case int:
		return scalarNode(int64(val)), nil
	case int64:
		return scalarNode(val), nil
	case float64:
		return scalarNode(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return scalarNode(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return Node{}, fmt.Errorf("%w: number %q", ErrUnsupportedValue, val.String())
		}
		return scalarNode(f), nil
	case time.Time:
		return scalarNode(val.Format(time.RFC3339)), nil
	case map[string]interface{}:
		fields := make(map[string]Node, len(val))
		for k, item := range val {
			child, err := NewNode(item)
			if err != nil {
				return Node{}, fmt.Errorf("%s: %w", k, err)
			}
			fields[k] = child
		}
		return Node{kind: KindMap, fields: fields}, nil
	case []interface{}:
		list := make([]Node, 0, len(val))
		for i, item := range val {
			child, err := NewNode(item)
			if err != nil {
				return Node{}, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, child)
		}
		return Node{kind: KindList, list: list}, nil
	}

	return reflectNode(reflect.ValueOf(v))
}

// reflectNode handles the remaining numeric kinds and generically typed maps/slices
// (map[interface{}]interface{} from YAML, []string, map[string]string, ...).
func reflectNode(rv reflect.Value) (Node, error) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalarNode(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalarNode(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return scalarNode(rv.Float()), nil
	case reflect.String:
		return scalarNode(rv.String()), nil
	case reflect.Bool:
		return scalarNode(rv.Bool()), nil
	case reflect.Map:
		fields := make(map[string]Node, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			child, err := NewNode(iter.Value().Interface())
			if err != nil {
				return Node{}, fmt.Errorf("%s: %w", key, err)
			}
			fields[key] = child
		}
		return Node{kind: KindMap, fields: fields}, nil
	case reflect.Slice, reflect.Array:
		list := make([]Node, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			child, err := NewNode(rv.Index(i).Interface())
			if err != nil {
				return Node{}, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, child)
		}
		return Node{kind: KindList, list: list}, nil
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return Node{kind: KindNull}, nil
		}
		return NewNode(rv.Elem().Interface())
	case reflect.Invalid:
		return Node{kind: KindNull}, nil
	}
	return Node{}, fmt.Errorf("%w: %s", ErrUnsupportedValue, rv.Type())
}

func scalarNode(v interface{}) Node {
	return Node{kind: KindScalar, scalar: v}
}

// Kind returns the variant held by the node
func (n Node) Kind() Kind {
	return n.kind
}

// IsNull reports whether the node is absent or null
func (n Node) IsNull() bool {
	return n.kind == KindNull
}

// Has reports whether a map node carries the key (even with a null value)
func (n Node) Has(key string) bool {
	if n.kind != KindMap {
		return false
	}
	_, ok := n.fields[key]
	return ok
}

// Field returns the child at key, or a null node when absent or when n is not a map
func (n Node) Field(key string) Node {
	if n.kind != KindMap {
		return Node{}
	}
	return n.fields[key]
}

// FirstField returns the first non-null child among the given keys (alias lookup)
func (n Node) FirstField(keys ...string) Node {
	for _, key := range keys {
		if child := n.Field(key); !child.IsNull() {
			return child
		}
	}
	return Node{}
}

// Keys returns the sorted keys of a map node
func (n Node) Keys() []string {
	keys := make([]string, 0, len(n.fields))
	for k := range n.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set returns a copy of the map node with key assigned. Non-map nodes are returned unchanged.
func (n Node) Set(key string, value Node) Node {
	if n.kind != KindMap {
		return n
	}
	fields := make(map[string]Node, len(n.fields)+1)
	for k, v := range n.fields {
		fields[k] = v
	}
	fields[key] = value
	return Node{kind: KindMap, fields: fields}
}

// Str returns the scalar rendered as a string; "" for null, lists and maps
func (n Node) Str() string {
	if n.kind != KindScalar {
		return ""
	}
	return scalarString(n.scalar)
}

// Bool returns the boolean value and whether the node held a boolean
func (n Node) Bool() (bool, bool) {
	if n.kind != KindScalar {
		return false, false
	}
	b, ok := n.scalar.(bool)
	return b, ok
}

// BoolOr returns the boolean value or def when the node is not a boolean
func (n Node) BoolOr(def bool) bool {
	if b, ok := n.Bool(); ok {
		return b
	}
	return def
}

// Number returns the numeric value, or nil when the node is not numeric.
// Numeric strings ("5", "2.5") are accepted.
func (n Node) Number() *float64 {
	if n.kind != KindScalar {
		return nil
	}
	var f float64
	switch v := n.scalar.(type) {
	case int64:
		f = float64(v)
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// Strings coerces the node to a list of strings: a scalar becomes a one-element
// list, a list keeps its scalar items, null and maps yield nil.
func (n Node) Strings() []string {
	switch n.kind {
	case KindScalar:
		return []string{n.Str()}
	case KindList:
		var out []string
		for _, item := range n.list {
			if item.kind == KindScalar {
				out = append(out, item.Str())
			}
		}
		return out
	default:
		return nil
	}
}

// Items returns the children of a list node. Null yields nil; any other kind is ErrNotAList.
func (n Node) Items() ([]Node, error) {
	switch n.kind {
	case KindNull:
		return nil, nil
	case KindList:
		return n.list, nil
	default:
		return nil, fmt.Errorf("%w, got %s", ErrNotAList, n.kind)
	}
}

// Map converts a map node to a plain map. Null yields nil; any other kind is ErrNotAMap.
func (n Node) Map() (map[string]interface{}, error) {
	switch n.kind {
	case KindNull:
		return nil, nil
	case KindMap:
		m, _ := n.Interface().(map[string]interface{})
		return m, nil
	default:
		return nil, fmt.Errorf("%w, got %s", ErrNotAMap, n.kind)
	}
}

// Interface converts the node back to plain Go values:
// map[string]interface{}, []interface{}, string, bool, int64, float64 or nil.
func (n Node) Interface() interface{} {
	switch n.kind {
	case KindScalar:
		return n.scalar
	case KindList:
		out := make([]interface{}, 0, len(n.list))
		for _, item := range n.list {
			out = append(out, item.Interface())
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(n.fields))
		for k, v := range n.fields {
			out[k] = v.Interface()
		}
		return out
	default:
		return nil
	}
}

// NormalizeMap deep-copies m into the canonical document form (string keys,
// normalized scalars). A nil or empty map yields nil.
func NormalizeMap(m map[string]interface{}) (map[string]interface{}, error) {
	if len(m) == 0 {
		return nil, nil
	}
	node, err := NewNode(m)
	if err != nil {
		return nil, err
	}
	return node.Map()
}

func scalarString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

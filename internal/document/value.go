// Package document models ingested documents as a schema-agnostic tagged
// value tree and extracts candidate text from it.
package document

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// Value is a JSON-compatible node. Object members keep their document order.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	items  []Value
	fields *orderedmap.OrderedMap[string, Value]
}

func NullValue() Value            { return Value{kind: Null} }
func BoolValue(b bool) Value      { return Value{kind: Bool, b: b} }
func NumberValue(n float64) Value { return Value{kind: Number, n: n} }
func StringValue(s string) Value  { return Value{kind: String, s: s} }

// ArrayValue wraps items in order.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, items: items}
}

// ObjectValue returns an empty object; populate it with Set.
func ObjectValue() Value {
	return Value{kind: Object, fields: orderedmap.New[string, Value]()}
}

func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload and whether v is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == String }

// Items returns array elements, or nil for non-arrays.
func (v Value) Items() []Value { return v.items }

// Len is the element count for arrays, the member count for objects, else 0.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return v.fields.Len()
	}
	return 0
}

// Set adds or replaces an object member. A replaced key keeps its original position.
// Set panics if v is not an object.
func (v Value) Set(key string, val Value) {
	if v.kind != Object {
		panic("document: Set on " + v.kind.String())
	}
	v.fields.Set(key, val)
}

// Get looks up an object member.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	return v.fields.Get(key)
}

// Each visits object members in document order until fn returns false.
func (v Value) Each(fn func(key string, val Value) bool) {
	if v.kind != Object {
		return
	}
	for pair := v.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Keys returns object member names in document order.
func (v Value) Keys() []string {
	keys := make([]string, 0, v.Len())
	v.Each(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

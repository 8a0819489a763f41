package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object whose keys preserve insertion order.
//
// Values are one of: nil, bool, float64, string, json.Number, []any or
// *Object. Nested objects inside parsed arrays are themselves *Object so
// order survives at every depth.
//
// Object is not safe for concurrent use; callers that share a tree across
// goroutines must provide their own synchronisation.
type Object struct {
	keys   []string
	values map[string]any
}

// New returns an empty Object.
func New() *Object {
	return &Object{
		values: make(map[string]any),
	}
}

// Parse decodes data into an Object, preserving key order.
//
// The payload must be a single JSON object; anything else (array, scalar,
// trailing garbage, malformed input) returns an error.
func Parse(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("jsontree: parse: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("jsontree: parse: expected object, got %v", tok)
	}

	obj, err := parseObject(dec)
	if err != nil {
		return nil, err
	}

	// Reject trailing content after the closing brace.
	if _, err := dec.Token(); err == nil {
		return nil, fmt.Errorf("jsontree: parse: unexpected trailing content")
	}

	return obj, nil
}

// parseObject consumes decoder tokens up to and including the matching '}'.
func parseObject(dec *json.Decoder) (*Object, error) {
	obj := New()

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("jsontree: parse: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("jsontree: parse: non-string key %v", keyTok)
		}

		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("jsontree: parse: %w", err)
	}

	return obj, nil
}

// parseValue consumes the next complete JSON value from the decoder.
func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("jsontree: parse: %w", err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("jsontree: parse: unexpected delimiter %v", t)
		}
	default:
		// bool, string, json.Number or nil
		return tok, nil
	}
}

// parseArray consumes tokens up to and including the matching ']'.
func parseArray(dec *json.Decoder) ([]any, error) {
	arr := []any{}
	for dec.More() {
		value, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("jsontree: parse: %w", err)
	}
	return arr, nil
}

// Set stores value under key. Existing keys keep their original position;
// new keys append to the order.
func (o *Object) Set(key string, value any) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// GetObject returns the nested Object under key, or nil if the key is
// absent or holds a non-object value.
func (o *Object) GetObject(key string) *Object {
	if v, ok := o.values[key]; ok {
		if child, ok := v.(*Object); ok {
			return child
		}
	}
	return nil
}

// Delete removes key and its value. Removing an absent key is a no-op.
func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the object's keys in insertion order.
// The returned slice is a copy and safe to retain.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// IsEmpty reports whether the object has no keys.
func (o *Object) IsEmpty() bool {
	return o == nil || len(o.keys) == 0
}

// Clear removes all keys and values.
func (o *Object) Clear() {
	o.keys = o.keys[:0]
	for k := range o.values {
		delete(o.values, k)
	}
}

// Clone returns a deep copy of the object. Nested objects and arrays are
// copied recursively; the clone shares no mutable state with the original.
func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	clone := New()
	for _, k := range o.keys {
		clone.Set(k, cloneValue(o.values[k]))
	}
	return clone
}

// cloneValue deep-copies a single tree value.
func cloneValue(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Clone()
	case []any:
		arr := make([]any, len(t))
		for i, e := range t {
			arr[i] = cloneValue(e)
		}
		return arr
	default:
		// Scalars are immutable.
		return v
	}
}

// MarshalJSON serialises the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valueJSON, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the object's contents with the parsed data.
func (o *Object) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	o.keys = parsed.keys
	o.values = parsed.values
	return nil
}

// String returns the compact JSON encoding, for logging and debugging.
func (o *Object) String() string {
	data, err := o.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("jsontree.Object(error: %v)", err)
	}
	return string(data)
}

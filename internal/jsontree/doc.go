// Package jsontree provides an ordered-key JSON object tree and the
// recursive merge used to compose firmware-declared schemas.
//
// Standard library maps do not preserve key order, but adoption documents
// and JSON-Schema fragments are serialised for humans and external
// registries, so insertion order matters. Object keeps keys in the order
// they were first set and marshals them in that order.
//
// # Merge semantics
//
// Merge deep-merges a source tree into a destination tree in place:
//
//   - object nodes recurse per key, creating missing destination keys
//   - every other node type (scalar, array, null) overwrites wholesale
//
// Arrays are never merged element-wise. The operation is idempotent:
// merging the same source twice produces the same result as once.
//
// # Usage
//
//	dst := jsontree.New()
//	src, _ := jsontree.Parse([]byte(`{"temperature":{"type":"number"}}`))
//	jsontree.Merge(dst, src)
package jsontree

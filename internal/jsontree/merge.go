package jsontree

// Merge deep-merges src into dst in place.
//
// For each key in src: if both sides hold objects, the merge recurses; the
// destination key is created when absent (get-or-create semantics). For any
// other source value — scalar, array or null — the destination value is
// overwritten wholesale. Arrays are replaced as a unit, never merged
// element-wise.
//
// Merged values are deep copies, so dst never aliases src and src can be
// discarded or mutated freely afterwards. Merging a nil or empty src is a
// no-op. Merge cannot fail: trees are acyclic by construction.
func Merge(dst, src *Object) {
	if dst == nil || src.IsEmpty() {
		return
	}

	for _, key := range src.keys {
		srcValue := src.values[key]

		srcChild, srcIsObject := srcValue.(*Object)
		if !srcIsObject {
			dst.Set(key, cloneValue(srcValue))
			continue
		}

		dstChild := dst.GetObject(key)
		if dstChild == nil {
			// Absent key, or a leaf being replaced by an object.
			dstChild = New()
			dst.Set(key, dstChild)
		}
		Merge(dstChild, srcChild)
	}
}

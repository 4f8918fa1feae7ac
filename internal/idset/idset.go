// Package idset provides order-preserving edits of identifier arrays.
package idset

// Append returns a new array with add appended to ids in order.
// Duplicates are not rejected; append semantics mirror a raw array push.
func Append(ids []string, add ...string) []string {
	out := make([]string, len(ids), len(ids)+len(add))
	copy(out, ids)
	return append(out, add...)
}

// Remove returns a new array with every occurrence of drop removed,
// preserving the relative order of the remaining identifiers.
func Remove(ids []string, drop string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

// Contains reports whether ids holds id.
func Contains(ids []string, id string) bool {
	for _, e := range ids {
		if e == id {
			return true
		}
	}
	return false
}

// Uniq returns a new array keeping only the first occurrence of each
// identifier, in first-appearance order.
func Uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package keys

// All returns a new key range matching all keys
func All() Range {
	return Range{}
}

// Range represents all keys such that
//   k >= Min and k < Max
// If Min = nil that indicates the start of all keys
// If Max = nil that indicates the end of all keys
// If multiple modifiers are called on a range the end
// result is effectively the same as ANDing all the
// restrictions.
type Range struct {
	Min []byte
	Max []byte
}

// Eq confines the range to just key k
func (r Range) Eq(k []byte) Range {
	return r.Gte(k).Lte(k)
}

// Gt confines the range to keys that are
// greater than k
func (r Range) Gt(k []byte) Range {
	return r.refineMin(After(k))
}

// Gte confines the range to keys that are
// greater than or equal to k
func (r Range) Gte(k []byte) Range {
	if k == nil {
		return r
	}

	return r.refineMin(k)
}

// Lt confines the range to keys that are
// less than k
func (r Range) Lt(k []byte) Range {
	return r.refineMax(k)
}

// Lte confines the range to keys that are
// less than or equal to k
func (r Range) Lte(k []byte) Range {
	return r.refineMax(After(k))
}

// Prefix confines the range to keys that
// have the prefix k, including k itself. If
// k has no finite successor the range stays
// open at the top.
func (r Range) Prefix(k []byte) Range {
	r = r.Gte(k)

	if next, ok := Inc(k); ok {
		r = r.Lt(next)
	}

	return r
}

// Namespace maps the range into the part of
// the key space whose keys begin with ns. A
// nil Min becomes ns itself and a nil Max becomes
// the successor of ns, or stays nil if ns has none.
// The result never contains a key that lacks the
// prefix ns.
func (r Range) Namespace(ns []byte) Range {
	namespaced := Range{Min: Concat(ns, r.Min)}

	if r.Max != nil {
		namespaced.Max = Concat(ns, r.Max)
	} else if next, ok := Inc(ns); ok {
		namespaced.Max = next
	}

	return namespaced
}

// Contains returns true if k is inside the range
func (r Range) Contains(k []byte) bool {
	if r.Min != nil && Compare(k, r.Min) < 0 {
		return false
	}

	if r.Max != nil && Compare(k, r.Max) >= 0 {
		return false
	}

	return true
}

// Empty returns true if no key can be inside the range
func (r Range) Empty() bool {
	return r.Max != nil && compare(r.Min, r.Max) >= 0
}

func (r Range) refineMin(min []byte) Range {
	if compare(min, r.Min) <= 0 {
		return r
	}

	r.Min = min

	return r
}

func (r Range) refineMax(max []byte) Range {
	if max == nil {
		return r
	}

	if r.Max != nil && compare(max, r.Max) >= 0 {
		return r
	}

	r.Max = max

	return r
}

// compare orders a nil key before every other key
func compare(a []byte, b []byte) int {
	if a == nil {
		if b == nil {
			return 0
		}

		return -1
	}

	if b == nil {
		return 1
	}

	return Compare(a, b)
}

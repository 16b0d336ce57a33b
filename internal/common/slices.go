package common

// First returns the first element of s and true, or the zero value and false
// if s is empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E

		return zero, false
	}

	return s[0], true
}

// Dedup returns s with later duplicates removed, preserving first-seen order.
func Dedup[S ~[]E, E comparable](s S) S {
	if len(s) < 2 {
		return s
	}

	seen := make(map[E]struct{}, len(s))
	out := make(S, 0, len(s))

	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

// IndexOf returns the position of v in s, or -1.
func IndexOf[S ~[]E, E comparable](s S, v E) int {
	for i := range s {
		if s[i] == v {
			return i
		}
	}

	return -1
}

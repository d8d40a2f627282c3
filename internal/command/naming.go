package command

import "strconv"

// freshName picks the key an Add command writes to. Without an explicit
// name the fixed base is used, and an existing base turns the command into
// a no-op. An explicit name that is taken gets the smallest free numeric
// suffix starting at 2.
func freshName(explicit, base string, exists func(string) bool) (string, bool) {
	if explicit == "" {
		if exists(base) {
			return "", false
		}
		return base, true
	}
	if !exists(explicit) {
		return explicit, true
	}
	for i := 2; ; i++ {
		cand := explicit + strconv.Itoa(i)
		if !exists(cand) {
			return cand, true
		}
	}
}

func has[V any](m map[string]V) func(string) bool {
	return func(k string) bool {
		_, ok := m[k]
		return ok
	}
}

// moveKey renames from to to inside m, returning a new map. It reports false
// when from is missing, to is empty or to is already taken.
func moveKey[V any](m map[string]V, from, to string) (map[string]V, bool) {
	v, ok := m[from]
	if !ok || to == "" || from == to {
		return m, false
	}
	if _, taken := m[to]; taken {
		return m, false
	}
	out := make(map[string]V, len(m))
	for k, val := range m {
		if k != from {
			out[k] = val
		}
	}
	out[to] = v
	return out, true
}

// withoutKey returns a copy of m minus key, reporting whether key existed.
func withoutKey[V any](m map[string]V, key string) (map[string]V, bool) {
	if _, ok := m[key]; !ok {
		return m, false
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out, true
}

// withKey returns a copy of m with key set to v.
func withKey[V any](m map[string]V, key string, v V) map[string]V {
	out := make(map[string]V, len(m)+1)
	for k, val := range m {
		out[k] = val
	}
	out[key] = v
	return out
}

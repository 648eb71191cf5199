package fn

import "maps"

// UpdateKey returns a function that produces a copy of its input map with the
// value at key replaced by up(old). Every other entry is shared with the
// input by reference. The input map is never mutated.
//
// If the key is absent, up receives the zero value of V and the result gains
// the key.
func UpdateKey[V any](key string, up func(V) V) func(map[string]V) map[string]V {
	return func(m map[string]V) map[string]V {
		next := maps.Clone(m)
		if next == nil {
			next = make(map[string]V, 1)
		}
		next[key] = up(m[key])
		return next
	}
}

// SetKey returns a function that produces a copy of its input map with the
// value at key replaced by v. Shorthand for UpdateKey with a constant updater.
func SetKey[V any](key string, v V) func(map[string]V) map[string]V {
	return UpdateKey[V](key, func(V) V { return v })
}

// Pipe composes functions left to right: Pipe(f, g)(x) == g(f(x)).
// With no arguments it returns the identity function.
func Pipe[T any](fns ...func(T) T) func(T) T {
	return func(v T) T {
		for _, f := range fns {
			v = f(v)
		}
		return v
	}
}

// Compose composes functions right to left: Compose(f, g)(x) == f(g(x)).
func Compose[T any](fns ...func(T) T) func(T) T {
	return func(v T) T {
		for i := len(fns) - 1; i >= 0; i-- {
			v = fns[i](v)
		}
		return v
	}
}

// When applies f only when pred holds; otherwise it returns the input as is.
func When[T any](pred func(T) bool, f func(T) T) func(T) T {
	return func(v T) T {
		if pred(v) {
			return f(v)
		}
		return v
	}
}

// Unless applies f only when pred does not hold.
func Unless[T any](pred func(T) bool, f func(T) T) func(T) T {
	return When(Not(pred), f)
}

// Fold reduces xs left to right starting from init.
func Fold[T, A any](xs []T, init A, f func(A, T) A) A {
	acc := init
	for _, x := range xs {
		acc = f(acc, x)
	}
	return acc
}

// Append returns a new slice holding xs followed by vs. The result never
// shares a backing array with xs, so appending to it later cannot clobber
// values observed through the input slice.
func Append[T any](xs []T, vs ...T) []T {
	out := make([]T, len(xs), len(xs)+len(vs))
	copy(out, xs)
	return append(out, vs...)
}

// And returns a predicate that holds when every given predicate holds.
// With no arguments it always holds.
func And[T any](ps ...func(T) bool) func(T) bool {
	return func(v T) bool {
		for _, p := range ps {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// Or returns a predicate that holds when any given predicate holds.
func Or[T any](ps ...func(T) bool) func(T) bool {
	return func(v T) bool {
		for _, p := range ps {
			if p(v) {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not[T any](p func(T) bool) func(T) bool {
	return func(v T) bool {
		return !p(v)
	}
}

// HasKey returns a predicate that holds when the map contains the key.
func HasKey[V any](key string) func(map[string]V) bool {
	return func(m map[string]V) bool {
		_, ok := m[key]
		return ok
	}
}

package ast

// Tracked decorates a parsed value with the byte range it was parsed from.
//
// The parser always records spans at diagnosable boundaries (entries,
// postings, posting amounts, balance assertions and value expressions).
// Callers that do not need source locations use Plain.
type Tracked[T any] struct {
	Value T
	Span  Span
}

// Decorate wraps v with the span [start, end).
func Decorate[T any](start, end int, v T) Tracked[T] {
	return Tracked[T]{Value: v, Span: Span{Start: start, End: end}}
}

// Plain returns the undecorated value.
func (t Tracked[T]) Plain() T {
	return t.Value
}

// Plains strips decoration from a slice of tracked values.
func Plains[T any](ts []Tracked[T]) []T {
	out := make([]T, len(ts))
	for i, t := range ts {
		out[i] = t.Value
	}
	return out
}

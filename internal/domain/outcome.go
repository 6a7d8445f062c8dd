package domain

// Outcome distinguishes a clean result from a degraded one where a fallback
// value was substituted after a recoverable failure. Auxiliary pipeline
// stages (context load, persistence) degrade instead of failing, and the
// Reason keeps the degradation observable in logs and tests.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Ok wraps a clean value.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degraded wraps a fallback value with the reason the real one was
// unavailable.
func Degraded[T any](fallback T, reason string) Outcome[T] {
	return Outcome[T]{Value: fallback, Degraded: true, Reason: reason}
}

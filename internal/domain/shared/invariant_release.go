//go:build release

package shared

// InvariantsEnabled reports whether Invariant checks are compiled in.
const InvariantsEnabled = false

// Invariant is a no-op in release builds.
func Invariant(cond bool, format string, args ...interface{}) {}

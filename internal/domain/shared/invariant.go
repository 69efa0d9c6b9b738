//go:build !release

package shared

import "fmt"

// InvariantsEnabled reports whether Invariant checks are compiled in.
// Builds tagged "release" compile them out.
const InvariantsEnabled = true

// Invariant panics with the formatted message when cond is false.
//
// It guards programming errors only (negative capacity, double confirmation,
// over-drawn producers). Expected outcomes such as "no path" or "no match"
// are never reported through it.
func Invariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("invariant violated: "+format, args...))
	}
}

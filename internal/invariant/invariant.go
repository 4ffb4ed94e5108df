// Package invariant checks internal consistency conditions. Checks only fire
// in binaries built with the cyandebug tag; release builds trust the data.
package invariant

import "fmt"

// Check panics with the formatted message when cond is false and checks are
// enabled.
func Check(cond bool, format string, args ...any) {
	if !Enabled || cond {
		return
	}
	panic(fmt.Sprintf("invariant violated: "+format, args...))
}

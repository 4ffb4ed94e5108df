//go:build !cyandebug

package invariant

// Enabled is false outside cyandebug builds.
const Enabled = false

//go:build cyandebug

package invariant

// Enabled is true in cyandebug builds.
const Enabled = true

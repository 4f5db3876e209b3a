// Package version carries the build identity stamped in at link
// time via -ldflags.
package version

import "fmt"

var (
	// Version is the semantic release version.
	Version = "dev"
	// Commit is the git revision the binary was built from.
	Commit = "unknown"
)

// String renders the full build identity.
func String() string {
	return fmt.Sprintf("%s (%s)", Version, Commit)
}

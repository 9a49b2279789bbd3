// Package version exposes build metadata injected at link time.
package version

var (
	// Version is the semantic version or "dev" for local builds.
	Version = "dev"
	// Commit is the short VCS revision, when known.
	Commit = ""
)

// GetInfo returns a printable version string.
func GetInfo() string {
	if Commit != "" {
		return Version + " (" + Commit + ")"
	}
	return Version
}

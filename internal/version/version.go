// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/agenda/internal/version.Version=v1.2.0
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata for the startup log.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}

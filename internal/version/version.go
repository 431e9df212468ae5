// Package version exposes the build identity stamped in at link time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3"
package version

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// Commit is the short git hash of the build.
	Commit = "unknown"
	// Date is the build timestamp.
	Date = "unknown"
)

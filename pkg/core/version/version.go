// File: version.go
// Title: Version Information
// Description: Central version information for the analyzer service and its
//              command line interface, wired for build-time overrides.
// Author: AnderBEz
// Version: v0.1.0
// Created: 2026-08-14
// Modified: 2026-08-14
//
// Change History:
// - 2026-08-14 v0.1.0: Initial implementation

package version

import "fmt"

// Build-time values, overridable via -ldflags "-X ...".
var (
	// Version is the semantic version of the analyzer
	Version = "1.0.0"

	// Commit is the git commit hash the binary was built from
	Commit = "unknown"

	// BuildDate is the UTC build timestamp
	BuildDate = "unknown"
)

// Short returns just the semantic version
func Short() string {
	return Version
}

// Full returns the version with commit and build date
func Full() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildDate)
}

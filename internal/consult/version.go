// ============================================================================
// teleconsult - Patient-side telemedicine consultation client
// ============================================================================
//
// Package:     consult
// Description: Version information
// License:     MIT
// ============================================================================

package consult

var (
	// Version is the semantic version of the client
	Version = "0.1.0"

	// BuildTime is set at build time via ldflags
	BuildTime = ""

	// GitCommit is set at build time via ldflags
	GitCommit = ""
)

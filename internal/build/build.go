// Package build carries link-time version metadata for the launcher.
package build

// Version and BuildNumber are injected via -ldflags at release time and
// default to SNAPSHOT for local builds.
var (
	Version     = "SNAPSHOT"
	BuildNumber = "SNAPSHOT"
)

// AppName is the user-facing application name used in the version banner.
const AppName = "Cryptomator"

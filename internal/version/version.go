// Package version holds build metadata for the installer.
package version

import "fmt"

// Set at build time with -ldflags "-X .../internal/version.Version=...".
var (
	Version = "development"
	Commit  = "unknown"
	Date    = ""
)

// String returns the version, suffixed with the commit when known.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}

// Banner is the one-line form printed by the version command and the help header.
func Banner(program string) string {
	if Date == "" {
		return fmt.Sprintf("%s v%s", program, String())
	}
	return fmt.Sprintf("%s v%s (built %s)", program, String(), Date)
}

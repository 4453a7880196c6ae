// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded at link time: application name,
// build timestamp, Git commit and semantic version. Release builds inject the
// values with -ldflags, for example:
//
//	go build -ldflags "-X tranquil/pkg/build.buildName=tranquil \
//	  -X tranquil/pkg/build.buildVersion=0.3.0 ..."
//
// Development builds run without them; missing values fall back to defaults
// so `go run .` works out of the box.
package build

import "fmt"

// DefaultName is reported when the binary was built without -ldflags.
const DefaultName = "tranquil"

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String renders the flags as a one-line version banner.
func (f *ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

// Package-level variables populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = defaultFlags()
)

func defaultFlags() *ldFlags {
	return &ldFlags{
		Name:        DefaultName,
		Description: "Real-time audio analysis to OSC bridge",
		Time:        "unknown",
		Commit:      "unknown",
		Version:     "dev",
	}
}

// Initialize copies the ldflags variables into the build information. Missing
// values keep their development defaults. A version without a commit is
// rejected since it means the release pipeline only half-applied its flags.
func Initialize() error {
	if buildVersion != "" && buildCommit == "" {
		return fmt.Errorf("BuildCommit is required when BuildVersion is set")
	}

	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}

	return nil
}

// IsRelease reports whether version information was injected at build time.
func IsRelease() bool {
	return buildVersion != ""
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}

// Package version reports which promoscrape build produced a report.
//
// Release builds stamp the variables below; a plain `go build` reports
// "dev". Example:
//
//	go build -ldflags "-X github.com/jmylchreest/promoscrape/internal/version.Version=0.3.0 \
//	  -X github.com/jmylchreest/promoscrape/internal/version.Commit=$(git rev-parse --short HEAD)" \
//	  ./cmd/promoscrape
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Stamped by the release build. Dirty is the string "true" when the tree
// had local changes, since -X can only set strings.
var (
	Version   = "dev"
	Commit    = "unknown"
	Dirty     = "false"
	BuildDate = "unknown"
)

// Info is the structured form printed by `promoscrape version --json`.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get collects the stamped values with the Go toolchain and platform.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Dirty:     Dirty == "true",
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String is the version logged when collect starts, e.g. "0.3.0-dirty".
func String() string {
	if Dirty == "true" {
		return Version + "-dirty"
	}
	return Version
}

// Full returns a multi-line description for `promoscrape version`.
func Full() string {
	info := Get()
	var sb strings.Builder
	fmt.Fprintf(&sb, "promoscrape %s\n", String())
	fmt.Fprintf(&sb, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(&sb, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(&sb, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(&sb, "  OS/Arch:    %s", info.Platform)
	return sb.String()
}

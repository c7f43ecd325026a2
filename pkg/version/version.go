// Package version reports build information for indexify.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via ldflags:
//
//	-X github.com/Aman-CERP/indexify/pkg/version.Version=$(VERSION)
//	-X github.com/Aman-CERP/indexify/pkg/version.Commit=$(COMMIT)
//	-X github.com/Aman-CERP/indexify/pkg/version.Date=$(DATE)
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Short returns the version. Binaries installed with `go install` carry no
// ldflags, so the module version recorded by the toolchain is used instead.
func Short() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// String returns a one-line version string with all build info.
func String() string {
	return fmt.Sprintf("indexify %s (commit: %s, built: %s, go: %s)",
		Short(), Commit, Date, runtime.Version())
}

// GetInfo returns structured version information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Short(),
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

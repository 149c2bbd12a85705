// Package version reports the build of the swifthub binary
package version

import (
	"runtime/debug"
)

// BuildInfo describes one build
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

// Set via -ldflags "-X 'swifthub/internal/core/version.version=v0.1.0'
// -X 'swifthub/internal/core/version.commit=abcd' -X 'swifthub/internal/core/version.date=2026-10-01'"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information. Module build metadata fills in the
// commit when ldflags did not
func Info() BuildInfo {
	bi := BuildInfo{Version: version, Commit: commit, Date: date}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		bi.Go = info.GoVersion
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "none" && s.Value != "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.Date == "unknown" && s.Value != "" {
					bi.Date = s.Value
				}
			}
		}
	}
	return bi
}

// String renders the build as "version (commit, date)"
func (b BuildInfo) String() string {
	return b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

// UserAgent is the User-Agent value for outbound requests
func UserAgent() string { return "swifthub/" + version }

package version

import (
	"runtime/debug"
)

// Version will be set during build time via ldflags
var Version = "dev"

// BuildTime will be set during build time via ldflags
var BuildTime = "unknown"

// GitCommit will be set during build time via ldflags
var GitCommit = "unknown"

// Info contains build version details.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Get returns the build metadata, falling back to the VCS stamp embedded by
// the Go toolchain when ldflags were not set.
func Get() Info {
	info := Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "unknown" && len(s.Value) >= 7 {
				info.GitCommit = s.Value[:7]
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}

// GetFullVersionInfo returns detailed version information
func GetFullVersionInfo() string {
	info := Get()
	if info.BuildTime != "unknown" && info.GitCommit != "unknown" {
		return info.Version + " (built " + info.BuildTime + ", commit " + info.GitCommit + ")"
	}
	if info.GitCommit != "unknown" {
		return info.Version + " (commit " + info.GitCommit + ")"
	}
	return info.Version
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Name is the command and service name.
const Name = "invoice-import"

// Overridden at link time with -ldflags "-X invoice-architect/internal/version.Version=...".
var (
	Version   = "0.0.0-development"
	GitCommit = ""
	BuildDate = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var (
	infoOnce sync.Once
	info     BuildInfo
)

// Get returns the build information. Values not set at link time are taken
// from the VCS stamp the go tool embeds, then default to "unknown".
func Get() BuildInfo {
	infoOnce.Do(func() {
		info = BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				switch s.Key {
				case "vcs.revision":
					if info.Commit == "" {
						info.Commit = s.Value
					}
				case "vcs.time":
					if info.BuildDate == "" {
						info.BuildDate = s.Value
					}
				case "vcs.modified":
					info.Modified = s.Value == "true"
				}
			}
		}
		if info.Commit == "" {
			info.Commit = "unknown"
		}
		if info.BuildDate == "" {
			info.BuildDate = "unknown"
		}
	})
	return info
}

// Info returns a one-line version string for --version.
func Info() string {
	bi := Get()
	commit := bi.Commit
	if len(commit) > 12 {
		commit = commit[:12]
	}
	if bi.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, platform: %s)",
		Name, bi.Version, commit, bi.BuildDate, bi.GoVersion, bi.Platform)
}

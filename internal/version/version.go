// Package version provides version and build information for the application.
package version

import (
	_ "embed"
	"fmt"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionFile string

// Linker-injected variables. Set via:
//
//	go build -ldflags "-X github.com/quillmem/quill/internal/version.gitCommit=VALUE"
var (
	gitCommit string
	buildDate string
)

// Info represents version and build information.
type Info struct {
	// Version is the semantic version (e.g., "0.1.0").
	Version string

	// GitCommit is the short git commit hash with optional "-dirty" suffix.
	GitCommit string

	// BuildDate is the ISO 8601 build timestamp.
	BuildDate string
}

// String formats Info for human-readable display.
func (i Info) String() string {
	return fmt.Sprintf("Version:    %s\nGit Commit: %s\nBuild Date: %s",
		i.Version, i.GitCommit, i.BuildDate)
}

// Get returns the populated Info struct.
func Get() Info {
	return Info{
		Version:   strings.TrimSpace(versionFile),
		GitCommit: resolveGitCommit(),
		BuildDate: resolveBuildDate(),
	}
}

// resolveGitCommit returns the git commit hash.
// Priority: linker flag > debug.ReadBuildInfo > "unknown".
func resolveGitCommit() string {
	if gitCommit != "" {
		return gitCommit
	}
	if revision, dirty := readBuildInfo(); revision != "" {
		if dirty {
			return revision + "-dirty"
		}
		return revision
	}
	return "unknown"
}

func resolveBuildDate() string {
	if buildDate != "" {
		return buildDate
	}
	return "unknown"
}

// readBuildInfo extracts VCS info from debug.ReadBuildInfo, shortening the
// revision for display.
func readBuildInfo() (revision string, dirty bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}

	return revision, dirty
}

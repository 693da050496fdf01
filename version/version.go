// Package version provides utilities for extracting build and dependency
// information
package version

import (
	"runtime/debug"
	"sort"
)

// Version is the release version of the provenance service. Overridden at
// build time via -ldflags.
var Version = "dev"

// DependencyInfo represents a module dependency and its version
type DependencyInfo struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// BuildInfo contains build-time information
type BuildInfo struct {
	Version      string           `json:"version"`
	GoVersion    string           `json:"goVersion"`
	MainModule   string           `json:"mainModule"`
	Dependencies []DependencyInfo `json:"dependencies"`
}

// GetBuildInfo extracts build information from the current binary using the
// module information embedded at build time.
func GetBuildInfo() *BuildInfo {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return &BuildInfo{
			Version:      Version,
			GoVersion:    "unknown",
			MainModule:   "unknown",
			Dependencies: []DependencyInfo{},
		}
	}

	buildInfo := &BuildInfo{
		Version:      Version,
		GoVersion:    info.GoVersion,
		MainModule:   info.Path,
		Dependencies: make([]DependencyInfo, 0, len(info.Deps)),
	}

	for _, dep := range info.Deps {
		buildInfo.Dependencies = append(buildInfo.Dependencies, DependencyInfo{
			Path:    dep.Path,
			Version: dep.Version,
		})
	}

	sort.Slice(buildInfo.Dependencies, func(i, j int) bool {
		return buildInfo.Dependencies[i].Path < buildInfo.Dependencies[j].Path
	})

	return buildInfo
}

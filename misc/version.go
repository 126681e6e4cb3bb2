// Package misc keeps program identity, values are set at link time.
package misc

import (
	"runtime/debug"
)

var (
	appName = "scribe"
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name used for logs, temporary files and
// document metadata.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns VCS revision program was built from, if known.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

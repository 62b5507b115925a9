// Package buildconfig exposes values injected at link time:
//
//	go build -ldflags "-X github.com/Harshitk-cp/recipebot/internal/buildconfig.version=v1.2.0"
package buildconfig

import "runtime"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func Version() string {
	return version
}

func Commit() string {
	return commit
}

// VersionInfo is served at /version.
func VersionInfo() map[string]string {
	return map[string]string{
		"version":    version,
		"commit":     commit,
		"build_date": date,
		"go_version": runtime.Version(),
	}
}

// String renders the one-line form printed by the CLI.
func String() string {
	return "recipebot " + version + " (" + commit + ", built " + date + ", " + runtime.Version() + ")"
}

package buildinfo

import "runtime/debug"

// Set with -ldflags "-X routebuilder/internal/buildinfo.Version=..." at build time.
var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

// Info reports the linked build metadata. Commit and BuiltAt fall back to
// the VCS stamp embedded by the Go toolchain when not set explicitly.
func Info() map[string]string {
	commit, builtAt := Commit, BuiltAt
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "":
				commit = s.Value
			case s.Key == "vcs.time" && builtAt == "":
				builtAt = s.Value
			}
		}
	}
	return map[string]string{
		"version": Version,
		"commit":  commit,
		"builtAt": builtAt,
	}
}

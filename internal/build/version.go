package build

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// Summary is the line printed by --version.
// Format: "plresolve Version+Commit (built BuildTime)"
func Summary() string {
	return "plresolve " + FullVersion() + " (built " + BuildTime + ")"
}

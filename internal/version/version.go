package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/sharedpkg/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/sharedpkg/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/sharedpkg/internal/version.Date={{.Date}}
)

// String is the one line version summary.
func String() string {
	return Version + " (commit " + Commit + ", built " + Date + ")"
}

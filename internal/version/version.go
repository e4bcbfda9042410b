package version

import "fmt"

// Version contains the pwabuilder version. Set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/pwabuilder/internal/version.Version=v1.4.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("pwabuilder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

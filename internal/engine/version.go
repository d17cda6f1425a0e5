package engine

import "fmt"

// Name identifies the engine in logs and build output.
const Name = "installkit"

// Build details, set by the release build with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// BuildInfo renders Name and the build details, one per line.
func BuildInfo() string {
	return fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", Name, Version, Commit, Date)
}

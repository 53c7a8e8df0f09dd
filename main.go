package main

import (
	"runtime/debug"

	"github.com/xmazu/envtable/cmd"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version string

func main() {
	cmd.SetVersion(version())
	cmd.Execute()
}

// version falls back to the module version for go install builds.
func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

package version

import (
	"runtime/debug"
)

// Version is overridden at link time with -ldflags "-X .../version.Version=..."
var Version = ""

func init() {
	if Version != "" {
		return
	}
	Version = "unable to get version"
	// installed by go install, get version information from debug
	inf, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	Version = inf.Main.Version
}

package main

import (
	"runtime"

	"github.com/bnema/webpage/internal/cli/cmd"
	"github.com/bnema/webpage/internal/domain/build"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	// GTK must be driven from the thread that started the process.
	runtime.LockOSThread()
}

func main() {
	enableCrashForensics()

	cmd.SetBuildInfo(build.Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
	})
	cmd.SetCoreDumpLogger(logCoreDumpLimits)

	cmd.Execute()
}

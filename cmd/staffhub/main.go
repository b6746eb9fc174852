package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/staffhub/staffhub/cmd/staffhub/cli"
)

// Set via -ldflags at build time. Plain `go build` and `go install` fall back
// to the VCS stamp Go records in the binary.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	stampFromBuildInfo()
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, "staffhub:", err)
		os.Exit(1)
	}
}

func stampFromBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "none" && len(s.Value) >= 12 {
				commit = s.Value[:12]
			}
		case "vcs.time":
			if date == "unknown" {
				date = s.Value
			}
		}
	}
}

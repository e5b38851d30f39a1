// Command hnreader is a terminal Hacker News reader with local favorites.
package main

import (
	"fmt"
	"os"
	"runtime/debug"
)

var version = "dev"

func main() {
	cmd := newRootCommand(buildVersion())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildVersion prefers the module version stamped by `go install`.
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

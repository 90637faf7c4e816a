package cli

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/mgeovany/envshim/internal/cli.Version=...".
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// versionString falls back to the module version and VCS stamp recorded by
// the Go toolchain when the linker flags were not set.
func versionString() string {
	ver, commit, date := strings.TrimSpace(Version), strings.TrimSpace(Commit), strings.TrimSpace(Date)

	if info, ok := debug.ReadBuildInfo(); ok {
		if (ver == "" || ver == "dev") && info.Main.Version != "" && info.Main.Version != "(devel)" {
			ver = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "":
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			case s.Key == "vcs.time" && date == "":
				date = s.Value
			}
		}
	}
	if ver == "" {
		ver = "dev"
	}

	var b strings.Builder
	b.WriteString("envshim " + ver)
	if commit != "" {
		fmt.Fprintf(&b, " (%s)", commit)
	}
	if date != "" {
		b.WriteString(" " + date)
	}
	return b.String()
}

func printVersion() {
	_, _ = fmt.Fprintln(stdout, versionString())
}

package cli

import (
	"fmt"
	"os"
	"strings"
)

// style is an SGR parameter applied to a whole line of output.
type style string

const (
	styleDim    style = "2"
	styleRed    style = "31"
	styleGreen  style = "32"
	styleYellow style = "33"
)

func (s style) apply(text string) string {
	if !colorOutput() {
		return text
	}
	return "\x1b[" + string(s) + "m" + text + "\x1b[0m"
}

// colorOutput is off for NO_COLOR, ENVSHIM_NO_COLOR, dumb terminals and
// anything that is not a terminal.
func colorOutput() bool {
	if os.Getenv("NO_COLOR") != "" || envFlag("ENVSHIM_NO_COLOR") {
		return false
	}
	if t := strings.TrimSpace(os.Getenv("TERM")); t == "" || t == "dumb" {
		return false
	}
	f, ok := stdout.(*os.File)
	return ok && isTerminal(int(f.Fd()))
}

func envFlag(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// verbose is ENVSHIM_VERBOSE, or ENVSHIM_LOG at debug level or lower.
func verbose() bool {
	if envFlag("ENVSHIM_VERBOSE") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENVSHIM_LOG"))) {
	case "debug", "trace", "verbose":
		return true
	}
	return envFlag("ENVSHIM_LOG")
}

func printLine(s style, format string, args ...any) {
	_, _ = fmt.Fprintln(stdout, s.apply(fmt.Sprintf(format, args...)))
}

func infof(format string, args ...any)    { printLine(styleDim, format, args...) }
func successf(format string, args ...any) { printLine(styleGreen, format, args...) }

func verbosef(format string, args ...any) {
	if verbose() {
		printLine(styleDim, format, args...)
	}
}

package cli

import (
	"errors"
	"io"
	"os"
)

// Swapped in tests.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

func Execute(args []string) error {
	if len(args) == 0 {
		return usageError()
	}

	switch args[0] {
	case "render":
		return runRender(args[1:])
	case "check":
		return runCheck(args[1:])
	case "publish":
		return runPublish(args[1:])
	case "secret":
		return runSecret(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "version", "--version", "-v":
		if len(args) > 1 {
			return errors.New("envshim version does not accept flags/args")
		}
		printVersion()
		return nil
	default:
		return usageError()
	}
}

func usageError() error {
	return errors.New("usage: envshim render [--env-file <f>] [--in <env-config.js>] [--out <path>] [--format js|json] | envshim check <file> | envshim publish [--env-file <f>] [--in <env-config.js>] [--key <name>] [--format js|json] [--verify] | envshim secret set|rm <ref> | envshim doctor [--env-file <f>] [--online] | envshim version")
}

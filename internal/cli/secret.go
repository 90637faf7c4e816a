package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mgeovany/envshim/internal/storage"
)

// Swapped in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

func runSecret(args []string) error {
	if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
		return errors.New("usage: envshim secret set|rm <ref>")
	}
	ref := strings.TrimSpace(args[1])

	switch args[0] {
	case "set":
		secret, err := readSecret("S3 secret access key")
		if err != nil {
			return err
		}
		if err := storage.SaveSecret(ref, secret, ""); err != nil {
			return err
		}
		successf("✔ stored secret %s (use ENVSHIM_S3_SECRET_REF=%s)", ref, ref)
		return nil
	case "rm":
		if err := storage.DeleteSecret(ref); err != nil {
			return err
		}
		successf("✔ removed secret %s", ref)
		return nil
	default:
		return errors.New("usage: envshim secret set|rm <ref>")
	}
}

// readSecret reads one value from stdin. At a terminal input is not echoed;
// piped input is read up to the first newline so the secret never lands in
// shell history.
func readSecret(label string) (string, error) {
	if f, ok := stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(stdout, label+": ")
		b, err := readPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(stdout)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		v := strings.TrimSpace(string(b))
		if v == "" {
			return "", errors.New("value required")
		}
		return v, nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("expected the S3 secret access key on stdin")
	}
	v := strings.TrimSpace(line)
	if v == "" {
		return "", errors.New("expected the S3 secret access key on stdin")
	}
	return v, nil
}

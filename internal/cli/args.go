package cli

import (
	"fmt"
	"strings"

	"github.com/mgeovany/envshim/internal/config"
)

// parseArgs splits args into positional values and flags. valueFlags take
// an argument (--out x or --out=x); boolFlags do not.
func parseArgs(args []string, valueFlags, boolFlags []string) (pos []string, vals map[string]string, bools map[string]bool, err error) {
	vals = map[string]string{}
	bools = map[string]bool{}

	isValue := map[string]bool{}
	for _, f := range valueFlags {
		isValue[f] = true
	}
	isBool := map[string]bool{}
	for _, f := range boolFlags {
		isBool[f] = true
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "--") {
			pos = append(pos, a)
			continue
		}
		name, val, hasVal := strings.Cut(a, "=")
		switch {
		case isBool[name]:
			if hasVal {
				return nil, nil, nil, fmt.Errorf("%s does not take a value", name)
			}
			bools[name] = true
		case isValue[name]:
			if !hasVal {
				if i+1 >= len(args) {
					return nil, nil, nil, fmt.Errorf("%s requires a value", name)
				}
				i++
				val = args[i]
			}
			if strings.TrimSpace(val) == "" {
				return nil, nil, nil, fmt.Errorf("%s requires a value", name)
			}
			vals[name] = val
		default:
			return nil, nil, nil, fmt.Errorf("unknown flag %s", name)
		}
	}
	return pos, vals, bools, nil
}

// deploymentSource layers the process environment over an optional .env
// file, so CI variables win over checked-in defaults.
func deploymentSource(envFile string) (config.Source, error) {
	return config.DeploymentSource(envFile, false)
}

func parseFormat(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "js":
		return "js", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unknown format %q (want js or json)", v)
	}
}

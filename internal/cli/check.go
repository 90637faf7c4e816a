package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgeovany/envshim/internal/config"
	"github.com/mgeovany/envshim/internal/envjs"
)

func runCheck(args []string) error {
	pos, _, _, err := parseArgs(args, nil, nil)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: envshim check <env-config.js|env-config.json>")
	}

	cfg, err := readArtifact(pos[0])
	if err != nil {
		return err
	}

	printValue(config.KeyAPIBaseURL, cfg.APIBaseURL(), "same origin", false)
	printValue(config.KeySupabaseURL, cfg.SupabaseURL(), "integration disabled", false)
	printValue(config.KeySupabaseAnonKey, cfg.SupabaseAnonKey(), "integration disabled", true)
	return nil
}

func readArtifact(path string) (config.DeploymentConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return config.DeploymentConfig{}, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		cfg, err := envjs.ParseJSON(b)
		if err != nil {
			return config.DeploymentConfig{}, fmt.Errorf("%s: %w", path, err)
		}
		return cfg, nil
	}
	cfg, err := envjs.Parse(bytes.NewReader(b))
	if err != nil {
		return config.DeploymentConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func printValue(key, value, emptyMeaning string, secret bool) {
	switch {
	case value == "":
		infof("%s: (empty, %s)", key, emptyMeaning)
	case secret:
		successf("%s: set (%d chars)", key, len(value))
	default:
		successf("%s: %s", key, value)
	}
}

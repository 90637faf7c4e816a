package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgeovany/envshim/internal/config"
	"github.com/mgeovany/envshim/internal/envjs"
)

func runRender(args []string) error {
	pos, vals, _, err := parseArgs(args, []string{"--env-file", "--in", "--out", "--format"}, nil)
	if err != nil {
		return err
	}
	if len(pos) > 0 {
		return errors.New("usage: envshim render [--env-file <f>] [--in <env-config.js>] [--out <path>] [--format js|json]")
	}
	format, err := parseFormat(vals["--format"])
	if err != nil {
		return err
	}

	src, err := deploymentSource(vals["--env-file"])
	if err != nil {
		return err
	}
	cfg := config.Load(src)
	verbosef("Loaded %s", cfg)

	out, _, err := renderArtifact(cfg, format, vals["--in"])
	if err != nil {
		return err
	}

	path := vals["--out"]
	if path == "" || path == "-" {
		_, err := stdout.Write(out)
		return err
	}
	if err := writeFileAtomic(path, out); err != nil {
		return err
	}
	verbosef("Wrote %s (%d bytes)", path, len(out))
	return nil
}

// renderArtifact produces the file body for format. With a template path the
// existing file is rewritten in place instead of generated from scratch.
func renderArtifact(cfg config.DeploymentConfig, format string, templatePath string) ([]byte, string, error) {
	if templatePath != "" {
		if format != "js" {
			return nil, "", errors.New("--in only applies to --format js")
		}
		src, err := os.ReadFile(templatePath)
		if err != nil {
			return nil, "", err
		}
		out, err := envjs.Substitute(src, cfg)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", templatePath, err)
		}
		return out, "application/javascript; charset=utf-8", nil
	}

	var b bytes.Buffer
	if format == "json" {
		if err := envjs.RenderJSON(&b, cfg); err != nil {
			return nil, "", err
		}
		return b.Bytes(), "application/json; charset=utf-8", nil
	}
	if err := envjs.Render(&b, cfg); err != nil {
		return nil, "", err
	}
	return b.Bytes(), "application/javascript; charset=utf-8", nil
}

// writeFileAtomic replaces path so a concurrent reader (a static file server
// in the same container) never sees a half-written file.
func writeFileAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".envshim-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

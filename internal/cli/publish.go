package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mgeovany/envshim/internal/config"
	"github.com/mgeovany/envshim/internal/storage"
)

func runPublish(args []string) error {
	pos, vals, bools, err := parseArgs(args, []string{"--env-file", "--in", "--key", "--format"}, []string{"--verify"})
	if err != nil {
		return err
	}
	if len(pos) > 0 {
		return errors.New("usage: envshim publish [--env-file <f>] [--in <env-config.js>] [--key <name>] [--format js|json] [--verify]")
	}
	format, err := parseFormat(vals["--format"])
	if err != nil {
		return err
	}
	key := vals["--key"]
	if key == "" {
		key = "env-config." + format
	}

	src, err := deploymentSource(vals["--env-file"])
	if err != nil {
		return err
	}
	cfg := config.Load(src)
	verbosef("Loaded %s", cfg)

	body, contentType, err := renderArtifact(cfg, format, vals["--in"])
	if err != nil {
		return err
	}

	s3cfg, client, err := storage.ResolveS3()
	if err != nil {
		return err
	}
	verbosef("Bucket: %s (endpoint %s)", s3cfg.Bucket, s3cfg.Endpoint)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	objKey, err := storage.Publish(ctx, client, s3cfg, key, body, contentType)
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	if bools["--verify"] {
		got, err := storage.Fetch(ctx, client, s3cfg, key)
		if err != nil {
			return fmt.Errorf("verify %s: %w", objKey, err)
		}
		if !bytes.Equal(got, body) {
			return fmt.Errorf("verify %s: uploaded content differs", objKey)
		}
		verbosef("Verified %s", objKey)
	}

	successf("✔ published s3://%s/%s", s3cfg.Bucket, objKey)
	return nil
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrNotConfigured = errors.New("storage not configured (set ENVSHIM_S3_ENDPOINT and ENVSHIM_S3_BUCKET)")

type S3Config struct {
	Endpoint string
	Region   string
	Bucket   string
	Prefix   string
	UseSSL   bool

	Creds *credentials.Credentials
}

func NewS3Client(cfg S3Config) (*minio.Client, error) {
	if cfg.Creds == nil {
		cfg.Creds = credentials.NewEnvAWS()
	}
	opts := &minio.Options{
		Creds:  cfg.Creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	return minio.New(cfg.Endpoint, opts)
}

// Getenv is swapped in tests.
var Getenv = os.Getenv

// S3ConfigFromEnv reads the bucket that hosts the static front-end.
//
// Credentials: ENVSHIM_S3_ACCESS_KEY_ID plus either
// ENVSHIM_S3_SECRET_ACCESS_KEY or ENVSHIM_S3_SECRET_REF (keyring). Without
// an access key id the standard AWS_* variables are used.
func S3ConfigFromEnv() (S3Config, error) {
	endpoint := strings.TrimSpace(Getenv("ENVSHIM_S3_ENDPOINT"))
	bucket := strings.TrimSpace(Getenv("ENVSHIM_S3_BUCKET"))
	if endpoint == "" || bucket == "" {
		return S3Config{}, ErrNotConfigured
	}
	region := strings.TrimSpace(Getenv("ENVSHIM_S3_REGION"))
	if region == "" {
		region = "us-east-1"
	}
	// AWS: avoid the global endpoint when bucket is regional.
	if endpoint == "s3.amazonaws.com" && region != "us-east-1" {
		endpoint = "s3." + region + ".amazonaws.com"
	}

	cfg := S3Config{
		Endpoint: endpoint,
		Region:   region,
		Bucket:   bucket,
		Prefix:   strings.Trim(strings.TrimSpace(Getenv("ENVSHIM_S3_PREFIX")), "/"),
		UseSSL:   strings.TrimSpace(Getenv("ENVSHIM_S3_USE_SSL")) != "false",
	}

	accessKey := strings.TrimSpace(Getenv("ENVSHIM_S3_ACCESS_KEY_ID"))
	if accessKey == "" {
		cfg.Creds = credentials.NewEnvAWS()
		return cfg, nil
	}

	secretKey := strings.TrimSpace(Getenv("ENVSHIM_S3_SECRET_ACCESS_KEY"))
	sessionToken := strings.TrimSpace(Getenv("ENVSHIM_S3_SESSION_TOKEN"))
	if ref := strings.TrimSpace(Getenv("ENVSHIM_S3_SECRET_REF")); ref != "" {
		sk, st, ok, err := LoadSecret(ref)
		if err != nil {
			return S3Config{}, err
		}
		if !ok {
			return S3Config{}, fmt.Errorf("missing credentials in keychain for %s", ref)
		}
		secretKey, sessionToken = sk, st
	}
	if secretKey == "" {
		return S3Config{}, fmt.Errorf("ENVSHIM_S3_ACCESS_KEY_ID set without a secret (ENVSHIM_S3_SECRET_ACCESS_KEY or ENVSHIM_S3_SECRET_REF)")
	}
	cfg.Creds = credentials.NewStaticV4(accessKey, secretKey, sessionToken)
	return cfg, nil
}

// ResolveS3 returns the configured bucket and a client for it.
func ResolveS3() (S3Config, *minio.Client, error) {
	cfg, err := S3ConfigFromEnv()
	if err != nil {
		return S3Config{}, nil, err
	}
	client, err := NewS3Client(cfg)
	if err != nil {
		return S3Config{}, nil, err
	}
	return cfg, client, nil
}

// ObjectKey joins the configured prefix and name.
func (c S3Config) ObjectKey(name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if c.Prefix == "" {
		return name
	}
	return c.Prefix + "/" + name
}

// Publish uploads a rendered env-config file. The object is marked
// no-cache so browsers revalidate after every deploy.
func Publish(ctx context.Context, client *minio.Client, cfg S3Config, name string, content []byte, contentType string) (string, error) {
	key := cfg.ObjectKey(name)
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := client.PutObject(ctx, cfg.Bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "no-cache",
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Fetch downloads a published file so it can be checked after upload.
func Fetch(ctx context.Context, client *minio.Client, cfg S3Config, name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	obj, err := client.GetObject(ctx, cfg.Bucket, cfg.ObjectKey(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = obj.Close() }()

	return io.ReadAll(obj)
}

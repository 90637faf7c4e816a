package config

import (
	"os"
	"strings"
)

// Config holds the settings of the process that serves the front-end.
type Config struct {
	Host string
	Port string

	StaticDir   string
	ServiceName string

	FrontendURL string
	CORSDev     bool

	// EnvFile, when set, is re-read on every reload and wins over the
	// process environment for the deployment values.
	EnvFile string
}

func FromEnv() Config {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	staticDir := strings.TrimSpace(os.Getenv("STATIC_DIR"))
	if staticDir == "" {
		staticDir = "docs"
	}

	service := strings.TrimSpace(os.Getenv("SERVICE_NAME"))
	if service == "" {
		service = "medical-card-backend"
	}

	frontend := strings.TrimSpace(os.Getenv("FRONTEND_URL"))
	if frontend == "" {
		frontend = "https://lucidxdreams.github.io"
	}

	corsDev := true
	if v := strings.TrimSpace(os.Getenv("ENVSHIM_CORS_DEV")); v == "0" || strings.EqualFold(v, "false") {
		corsDev = false
	}

	return Config{
		Host: strings.TrimSpace(os.Getenv("HOST")),
		Port: port,

		StaticDir:   staticDir,
		ServiceName: service,

		FrontendURL: frontend,
		CORSDev:     corsDev,

		EnvFile: strings.TrimSpace(os.Getenv("ENVSHIM_ENV_FILE")),
	}
}

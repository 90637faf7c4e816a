package httpapi

import (
	"net/http"

	"github.com/mgeovany/envshim/internal/config"
	"github.com/mgeovany/envshim/internal/health"
)

type Deps struct {
	// Config is read on every request, so a reload becomes visible to the
	// next page load.
	Config *config.Holder

	StaticDir      string
	AllowedOrigins []string
	Health         health.Info
}

func New(deps Deps) http.Handler {
	if deps.Config == nil {
		deps.Config = &config.Holder{}
	}

	mux := http.NewServeMux()

	health.Register(mux, deps.Health)

	mux.Handle("/env-config.js", envConfigJSHandler(deps.Config))
	mux.Handle("/env-config.json", envConfigJSONHandler(deps.Config))
	mux.Handle("/", staticHandler(deps.StaticDir))

	return withRequestID(withAccessLog(withCORS(deps.AllowedOrigins, mux)))
}

// AllowedOrigins is the CORS allow-list for cfg: the configured front-end
// origin plus, unless disabled, the local dev origins.
func AllowedOrigins(cfg config.Config) []string {
	var out []string
	if cfg.FrontendURL != "" {
		out = append(out, cfg.FrontendURL)
	}
	if cfg.CORSDev {
		out = append(out, DefaultDevOrigins...)
	}
	return out
}

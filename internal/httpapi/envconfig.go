package httpapi

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/mgeovany/envshim/internal/config"
	"github.com/mgeovany/envshim/internal/envjs"
)

func envConfigJSHandler(h *config.Holder) http.Handler {
	return renderHandler("application/javascript; charset=utf-8", func(b *bytes.Buffer) error {
		return envjs.Render(b, h.Current())
	})
}

func envConfigJSONHandler(h *config.Holder) http.Handler {
	return renderHandler("application/json; charset=utf-8", func(b *bytes.Buffer) error {
		return envjs.RenderJSON(b, h.Current())
	})
}

func renderHandler(contentType string, render func(*bytes.Buffer) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodHead}, ", "))
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var b bytes.Buffer
		if err := render(&b); err != nil {
			log.Printf("env config render failed path=%s err=%v", r.URL.Path, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType)
		// Values change per deploy and on reload; never let a CDN pin them.
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(b.Bytes())
		}
	})
}

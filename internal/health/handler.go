package health

import (
	"encoding/json"
	"net/http"
)

type Info struct {
	Service string
	Version string
}

type response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Register mounts the liveness and readiness probes. They never touch
// configuration, so they answer even when nothing is configured.
func Register(mux *http.ServeMux, info Info) {
	body, _ := json.Marshal(response{Status: "healthy", Service: info.Service, Version: info.Version})

	ok := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = w.Write(body)
		}
	}

	mux.HandleFunc("/health", ok)
	mux.HandleFunc("/healthz", ok)
	mux.HandleFunc("/livez", ok)
	mux.HandleFunc("/readyz", ok)
}

func Handler(info Info) http.Handler {
	mux := http.NewServeMux()
	Register(mux, info)
	return mux
}

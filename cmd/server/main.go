package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgeovany/envshim/internal/config"
	"github.com/mgeovany/envshim/internal/health"
	"github.com/mgeovany/envshim/internal/httpapi"
)

var version = "1.0.0"

func main() {
	config.LoadDotEnv()
	cfg := config.FromEnv()

	// Loaded before the listener starts so no page can see a partial config.
	holder := &config.Holder{}
	dc, err := holder.LoadFile(cfg.EnvFile)
	if err != nil {
		log.Printf("env file unreadable, using process env err=%v", err)
		dc = holder.Load(config.EnvSource{})
	}
	log.Printf("deployment config loaded %s", dc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				dc, err := holder.LoadFile(cfg.EnvFile)
				if err != nil {
					log.Printf("reload failed, keeping current config err=%v", err)
					continue
				}
				log.Printf("deployment config reloaded %s", dc)
			}
		}
	}()

	h := httpapi.New(httpapi.Deps{
		Config:         holder,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: httpapi.AllowedOrigins(cfg),
		Health:         health.Info{Service: cfg.ServiceName, Version: version},
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s static_dir=%s", srv.Addr, cfg.StaticDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

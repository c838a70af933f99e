// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"wanderlust/pkg/container"
)

// startServices runs the startup checks and exposes the health endpoint
func startServices(c *container.Container) error {
	log.Info().Msg("WanderLust worker starting")

	checks := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"Database", c.DB.HealthCheck},
		{"Redis", c.Cache.Ping},
		{"Object storage", c.Storage.HealthCheck},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("Startup check OK")
	}

	go startHealthCheckServer(c)
	return nil
}

// startHealthCheckServer serves /health and /ready for probes
func startHealthCheckServer(c *container.Container) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, `{"status":"UP","service":"wanderlust-worker"}`)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := c.Cache.Ping(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"NOT_READY"}`)
			return
		}
		writeStatus(w, http.StatusOK, `{"status":"READY"}`)
	})

	addr := ":" + c.Config.Queue.HealthPort
	log.Info().Str("addr", addr).Msg("[Health] Starting health check server")
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

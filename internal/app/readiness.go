package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpserver "github.com/fairyhunter13/ai-interview-agent/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-agent/internal/config"
)

// Pinger is the minimal interface for a backend capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// BuildReadinessChecks returns probes for the configured backends. A nil
// Pinger leaves its check out; Tika is probed whenever TikaURL is set.
func BuildReadinessChecks(cfg config.Config, db, redis, kafka Pinger) httpserver.Checks {
	checks := httpserver.Checks{
		DB:    pingCheck(db),
		Redis: pingCheck(redis),
		Kafka: pingCheck(kafka),
	}
	if cfg.TikaURL != "" {
		base := strings.TrimRight(cfg.TikaURL, "/")
		client := &http.Client{Timeout: 2 * time.Second}
		checks.Tika = func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/version", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			return fmt.Errorf("tika status %d", resp.StatusCode)
		}
	}
	return checks
}

func pingCheck(p Pinger) func(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.Ping
}

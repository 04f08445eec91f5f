// Copyright 2025 The gate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gate/modules/appconfig"
	"gate/modules/clock"
	"gate/modules/db/redis"
	rediscounter "gate/modules/db/redis/counter"
	"gate/modules/hmac"
	"gate/modules/middleware"
	rlmw "gate/modules/middleware/ratelimit"
	"gate/modules/ratelimit"
	"gate/modules/server"
	"gate/modules/telemetry"
)

func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	// manual dependency injection, no need for a DI framework at this size
	slog.SetLogLoggerLevel(slog.LevelDebug)

	clk := clock.RealClockProvider()

	cfg, err := appconfig.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("error", err))
		exitCode = 1
		return
	}

	otelShutdown, err := telemetry.Init(ctx, cfg.Otel)
	if err != nil {
		slog.ErrorContext(ctx, "telemetry setup error", slog.Any("error", err))
		exitCode = 1
		return
	}
	defer func() {
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		if err := otelShutdown(shCtx); err != nil {
			slog.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}()

	metrics, err := telemetry.NewLimiterMetrics(cfg.Otel.ServiceName)
	if err != nil {
		slog.ErrorContext(ctx, "limiter metrics setup error", slog.Any("error", err))
		exitCode = 1
		return
	}

	newStore, err := buildStoreFactory(ctx, cfg, clk)
	if err != nil {
		slog.ErrorContext(ctx, "counter store setup error", slog.Any("error", err))
		exitCode = 1
		return
	}

	registry, err := ratelimit.NewRegistry(clk, newStore, cfg.RateLimit)
	if err != nil {
		slog.ErrorContext(ctx, "rate limit registry error", slog.Any("error", err))
		exitCode = 1
		return
	}

	keyFn := rlmw.DefaultKeyFunc
	if cfg.KeyHash.Secret != "" {
		hasher, err := hmac.NewKeyHasher([]byte(cfg.KeyHash.Secret))
		if err != nil {
			slog.ErrorContext(ctx, "key hasher setup error", slog.Any("error", err))
			exitCode = 1
			return
		}
		keyFn = rlmw.HashedKeyFunc(hasher, keyFn)
	}

	limitBy := func(name ratelimit.PresetName) (server.Middleware, error) {
		lim, ok := registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("no limiter registered for preset %q", name)
		}
		return rlmw.New(rlmw.Options{
			Limiter: lim,
			KeyFn:   keyFn,
			Policy:  string(name),
			Metrics: metrics,
		}), nil
	}

	srv, err := server.New(cfg.Server.Host, cfg.Server.Port,
		server.WithReadTimeout(10*time.Second),
		server.WithWriteTimeout(10*time.Second),
		server.WithGlobalMiddlewares(middleware.Recovery(nil)),
	)
	if err != nil {
		slog.ErrorContext(ctx, "server setup error", slog.Any("error", err))
		exitCode = 1
		return
	}

	routes := []struct {
		pattern string
		preset  ratelimit.PresetName
	}{
		{"POST /login", ratelimit.PresetAuth},
		{"/api/", ratelimit.PresetAPI},
		{"/admin/", ratelimit.PresetStrict},
	}
	for _, rt := range routes {
		mw, err := limitBy(rt.preset)
		if err != nil {
			slog.ErrorContext(ctx, "route setup error", slog.String("pattern", rt.pattern), slog.Any("error", err))
			exitCode = 1
			return
		}
		srv.Handle(rt.pattern, okHandler(), mw)
	}

	if err := srv.Run(ctx); err != nil {
		slog.ErrorContext(ctx, "server stopped with error", slog.Any("error", err))
		exitCode = 1
	}
}

// buildStoreFactory picks the counter backend: independent in-process
// counters by default, per-preset Redis namespaces when enabled.
func buildStoreFactory(ctx context.Context, cfg *appconfig.Config, clk clock.Clock) (ratelimit.StoreFactory, error) {
	if !cfg.Redis.Enabled {
		return func(ratelimit.PresetName) ratelimit.CounterStore {
			mc := ratelimit.NewMemoryCounter()
			mc.StartJanitor(ctx, clk)
			return mc
		}, nil
	}

	client, err := redis.NewRueidisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		client.Close()
	}()

	return func(name ratelimit.PresetName) ratelimit.CounterStore {
		return rediscounter.NewRedisCounterStore(client, "gate:"+string(name))
	}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Request successful"})
	})
}

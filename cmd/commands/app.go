package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ncobase/couchview/cache"
	"github.com/ncobase/couchview/config"
	"github.com/ncobase/couchview/log"
	"github.com/ncobase/couchview/net/client"
	"github.com/ncobase/couchview/observes"
	"github.com/ncobase/couchview/tracing"
	"github.com/ncobase/couchview/version"
	"github.com/ncobase/couchview/view"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app holds what a command needs to reach the database
type app struct {
	cfg     *config.Config
	db      *view.Database
	cleanup []func()
}

func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: cfg}

	closeLog, err := log.Init(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	a.cleanup = append(a.cleanup, closeLog)
	log.SetVersion(version.GetVersionInfo().Version)

	shutdown, err := observes.NewTracer(ctx, cfg.Observes.Tracer)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to init tracer: %w", err)
	}
	a.cleanup = append(a.cleanup, func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warnf(sctx, "tracer shutdown: %v", err)
		}
	})

	if err := observes.NewSentry(cfg.Observes.Sentry, cfg.AppName); err != nil {
		log.Warnf(ctx, "sentry disabled: %v", err)
	}

	var d client.Dispatcher = client.NewHTTPDispatcher(cfg.CouchDB.Timeout, client.WithSlowRequest(cfg.CouchDB.SlowRequest))
	if b := cfg.CouchDB.Breaker; b != nil && b.Enabled {
		d = client.NewBreakerDispatcher(d, client.BreakerSettings{
			Name:         cfg.AppName,
			MaxRequests:  b.MaxRequests,
			Interval:     b.Interval,
			Timeout:      b.Timeout,
			MinRequests:  b.MinRequests,
			FailureRatio: b.FailureRatio,
		})
	}
	if cfg.Cache.Enabled() {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		a.cleanup = append(a.cleanup, func() { _ = rc.Close() })
		d = client.NewCachedDispatcher(d, cache.NewCache[client.Entry](rc, cfg.Cache.Prefix), cfg.Cache.TTL)
		log.Debugf(ctx, "response cache on %s, ttl %s", cfg.Cache.Addr, cfg.Cache.TTL)
	}

	name := opts.database
	if name == "" {
		name = cfg.CouchDB.Database
	}
	if a.db, err = view.NewDatabase(d, cfg.CouchDB.URL, name); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
}

// run executes fn with a ready app and reports its error to sentry
func run(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, a *app) error) error {
	ctx, _ := tracing.EnsureTraceID(cmd.Context())
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()

	if err := fn(ctx, a); err != nil {
		log.Errorf(ctx, "%s: %v", cmd.Name(), err)
		observes.CaptureError(ctx, err)
		observes.Flush(2 * time.Second)
		return err
	}
	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"campusdash/config"
	"campusdash/events"
	"campusdash/feed"
	"campusdash/models"
	"campusdash/store"
	web "campusdash/web/handlers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg config.Config
	log *zap.Logger

	store   *store.SeriesStore
	pollers []*feed.Poller
	server  *web.Server

	stopOnce sync.Once
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppStartup, err)
	}

	// 1) Store, one chart per panel
	hub := events.NewHub()
	charts := make([]*models.Chart, 0, len(cfg.Panels))
	for _, p := range cfg.Panels {
		charts = append(charts, models.NewChart(p.Key, p.Title, p.Colour, p.LayoutPriority))
	}
	st := store.NewSeriesStore(hub, charts...)

	// 2) Pollers writing into the store
	httpClient := &http.Client{}
	pollers := make([]*feed.Poller, 0, len(cfg.Panels))
	for _, p := range cfg.Panels {
		url, err := cfg.PanelURL(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAppStartup, err)
		}
		pollers = append(pollers, feed.NewPoller(
			feed.NewClient(url, httpClient, p.Timeout),
			st,
			feed.WithPanelKey(p.Key),
			feed.WithInterval(p.Interval),
			feed.WithValueSource(p.ValueSource),
			feed.WithLocation(loc),
			feed.WithLogger(log.Named("feed")),
		))
		log.Info("panel configured",
			zap.String("panel", p.Key),
			zap.String("url", url),
			zap.Duration("interval", p.Interval),
			zap.String("value_source", string(p.ValueSource)),
		)
	}

	// 3) HTTP server
	dashboard, err := web.NewDashboard(log.Named("dashboard"), st, config.DefaultDimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppStartup, err)
	}
	srv := web.NewServer(log.Named("http"), cfg.ListenAddr, dashboard, hub)

	return &App{
		cfg:     cfg,
		log:     log,
		store:   st,
		pollers: pollers,
		server:  srv,
	}, nil
}

// Run serves until ctx is done or the server fails. Pollers are always stopped before it returns.
func (a *App) Run(ctx context.Context) error {
	for _, p := range a.pollers {
		if err := p.Start(ctx); err != nil {
			a.stopPollers()
			return fmt.Errorf("%w: %v", ErrAppStartup, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%w: %v", ErrAppStartup, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownWait)
		defer cancel()
		a.stopPollers()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%w: %v", ErrAppShutdownWithError, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ErrAppShutdownNormal
}

func (a *App) stopPollers() {
	a.stopOnce.Do(func() {
		for _, p := range a.pollers {
			p.Stop()
		}
	})
}

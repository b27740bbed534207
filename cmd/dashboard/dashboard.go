package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusdash/app"
	"campusdash/config"
	"campusdash/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	AppName    = "campusdash"
	AppRelease = "dev"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the campus activity dashboard",
		Long: `dashboard polls the daily active students endpoint and serves a live bar chart of the last days.

Configuration is read from defaults, then the YAML file, then .env and the environment, then flags.`,
		Version:       AppRelease,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}
	flags := config.BindFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), flags)
	}
	return cmd
}

func serve(ctx context.Context, flags *config.Flags) error {
	cfg, err := config.NewLoader(flags).Load()
	if err != nil {
		return fmt.Errorf("can't load app config: %w", err)
	}

	zl := logger.NewJSON(cfg.LogLevel)
	defer func() {
		if r := recover(); r != nil {
			zl.Error("panic error", zap.Error(fmt.Errorf("%v", r)))
		}
		_ = zl.Sync()
	}()
	zap.ReplaceGlobals(zl)
	zl.Info(fmt.Sprintf("Application `%s` %s started.", AppName, AppRelease))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(*cfg, zl)
	if err != nil {
		zl.Error("can't build app", zap.Error(err))
		return err
	}

	err = application.Run(ctx)
	switch {
	case errors.Is(err, app.ErrAppStartup):
		zl.Error("can't run application", zap.Error(err))
	case errors.Is(err, app.ErrAppShutdownWithError):
		zl.Error("application is shutdown with error", zap.Error(err))
	default:
		zl.Warn("application is shutdown")
		err = nil
	}

	// a little time for the last log lines
	time.Sleep(100 * time.Millisecond)
	return err
}

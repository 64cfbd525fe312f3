// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"local.dev/oshi-engine/internal/engine"
	"local.dev/oshi-engine/internal/httpx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string
	root := &cobra.Command{
		Use:          "oshi",
		Short:        "Companion interaction and notification engine",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to read before the environment")
	root.AddCommand(newServeCmd(&envFiles), newTickCmd(&envFiles))
	return root
}

func newServeCmd(envFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and run the periodic ticks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, *envFiles)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.boot(ctx); err != nil {
				return err
			}
			return serve(ctx, rt)
		},
	}
}

func newTickCmd(envFiles *[]string) *cobra.Command {
	kinds := lo.Map(engine.TickKinds, func(k engine.TickKind, _ int) string { return string(k) })
	return &cobra.Command{
		Use:       "tick <kind>",
		Short:     "Run one tick against persisted state, for cron hosts",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := setup(ctx, *envFiles)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.boot(ctx); err != nil {
				return err
			}
			err = rt.engine.OnTick(ctx, engine.TickKind(args[0]))
			if err != nil && !errors.Is(err, engine.ErrSyncFailed) {
				return err
			}
			// A failed store write still changed local state; keep it.
			return errors.Join(err, rt.engine.SaveSnapshot(ctx))
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	app := &httpx.AppCtx{
		Engine: rt.engine,
		Paths:  rt.paths,
		NoAuth: rt.cfg.NoAuth,
		UserID: rt.cfg.UserID,
		Logger: rt.logger.With("component", "http"),
	}
	if rt.auth != nil {
		app.AuthClient = rt.auth
	}
	srv := &http.Server{
		Addr:              ":" + rt.cfg.Port,
		Handler:           httpx.Handler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rt.logger.Info("server listening", "addr", srv.Addr, "data_dir", rt.paths.DataDir, "no_auth", rt.cfg.NoAuth)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	for kind, every := range map[engine.TickKind]time.Duration{
		engine.TickAutonomousPost: rt.cfg.AutoPostInterval,
		engine.TickProactive:      rt.cfg.ProactiveInterval,
		engine.TickSnapshot:       rt.cfg.SnapshotInterval,
	} {
		g.Go(func() error {
			runTicker(gctx, rt.engine, kind, every, rt.logger)
			return nil
		})
	}
	err := g.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if serr := rt.engine.SaveSnapshot(saveCtx); serr != nil {
		rt.logger.Warn("final snapshot failed", "error", serr)
	}
	return err
}

func runTicker(ctx context.Context, e *engine.Engine, kind engine.TickKind, every time.Duration, logger *slog.Logger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := e.OnTick(ctx, kind); err != nil && !errors.Is(err, engine.ErrTickSkipped) {
				logger.Warn("tick failed", "kind", kind, "error", err)
			}
		}
	}
}

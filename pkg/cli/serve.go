package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/cli/config"
	controller "github.com/plan-lab/lignite/pkg/controller/http"
	"github.com/plan-lab/lignite/pkg/usecase"
	"github.com/plan-lab/lignite/pkg/utils/apperr"
	"github.com/plan-lab/lignite/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg     config.Server
		storeCfg      config.Store
		milestonesCfg config.Milestones
		githubCfg     config.GitHub
		gitlabCfg     config.GitLab
		syncCfg       config.Sync
	)

	flags := joinFlags(
		serverCfg.Flags(),
		storeCfg.Flags(),
		milestonesCfg.Flags(),
		githubCfg.Flags(),
		gitlabCfg.Flags(),
		syncCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting lignite server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("store", storeCfg),
				slog.Any("github", githubCfg),
				slog.Any("gitlab", gitlabCfg),
			)

			repo, err := storeCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			milestones, err := milestonesCfg.Configure()
			if err != nil {
				return err
			}

			reportUC := usecase.NewReport(repo, milestones)
			server := controller.NewServer(ctx, serverCfg.Addr, reportUC)

			stopResync, err := startResync(ctx, &serverCfg, &storeCfg, &githubCfg, &gitlabCfg, &syncCfg)
			if err != nil {
				return err
			}
			defer stopResync()

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}

// startResync launches the periodic snapshot refresh when an interval is
// configured. The returned stop function ends the refresh loop.
func startResync(ctx context.Context, serverCfg *config.Server, storeCfg *config.Store, githubCfg *config.GitHub, gitlabCfg *config.GitLab, syncCfg *config.Sync) (func(), error) {
	if serverCfg.ResyncInterval <= 0 {
		return func() {}, nil
	}

	trackers, err := buildTrackers(githubCfg, gitlabCfg)
	if err != nil {
		return nil, goerr.Wrap(err, "resync requires a tracker configuration")
	}

	opts, err := syncCfg.Options()
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	async.Dispatch(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(serverCfg.ResyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				repo, err := storeCfg.Configure(ctx)
				if err != nil {
					apperr.Handle(ctx, err)
					continue
				}

				if err := usecase.NewSync(repo, trackers, opts...).Run(ctx); err != nil {
					apperr.Handle(ctx, err)
				}
				if err := repo.Close(); err != nil {
					apperr.Handle(ctx, err)
				}
			}
		}
	})

	return func() { close(done) }, nil
}

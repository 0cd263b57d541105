package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/plan-lab/lignite/pkg/cli/config"
	"github.com/plan-lab/lignite/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdSync() *cli.Command {
	var (
		storeCfg  config.Store
		githubCfg config.GitHub
		gitlabCfg config.GitLab
		syncCfg   config.Sync
	)

	flags := joinFlags(
		storeCfg.Flags(),
		githubCfg.Flags(),
		gitlabCfg.Flags(),
		syncCfg.Flags(),
	)

	return &cli.Command{
		Name:  "sync",
		Usage: "Fetch updated issues from the configured trackers into the snapshot",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)
			logger.Info("Starting sync",
				slog.Any("store", storeCfg),
				slog.Any("github", githubCfg),
				slog.Any("gitlab", gitlabCfg),
			)

			repo, err := storeCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			trackers, err := buildTrackers(&githubCfg, &gitlabCfg)
			if err != nil {
				return err
			}

			opts, err := syncCfg.Options()
			if err != nil {
				return err
			}

			return usecase.NewSync(repo, trackers, opts...).Run(ctx)
		},
	}
}

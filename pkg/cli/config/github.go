package config

import (
	"log/slog"

	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/types"
	"github.com/plan-lab/lignite/pkg/service/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub tracker configuration
type GitHub struct {
	Token string
	Orgs  []string
	Repo  string
}

// Flags returns CLI flags for GitHub configuration
func (g *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub API token",
			Category:    "GitHub",
			Sources:     cli.EnvVars("LIGNITE_GITHUB_TOKEN"),
			Destination: &g.Token,
		},
		&cli.StringSliceFlag{
			Name:        "github-org",
			Usage:       "GitHub organization to sync (repeatable)",
			Category:    "GitHub",
			Sources:     cli.EnvVars("LIGNITE_GITHUB_ORG"),
			Destination: &g.Orgs,
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "Restrict sync to a single repository",
			Category:    "GitHub",
			Sources:     cli.EnvVars("LIGNITE_GITHUB_REPO"),
			Destination: &g.Repo,
		},
	}
}

// Configure creates one tracker client per configured organization
func (g *GitHub) Configure() []interfaces.TrackerClient {
	trackers := make([]interfaces.TrackerClient, 0, len(g.Orgs))
	for _, org := range g.Orgs {
		trackers = append(trackers, github.New(g.Token, types.OrgName(org), types.RepoName(g.Repo)))
	}
	return trackers
}

// LogValue returns structured log value
func (g GitHub) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_token", g.Token != ""),
		slog.Any("orgs", g.Orgs),
		slog.String("repo", g.Repo),
	)
}

package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/types"
	"github.com/plan-lab/lignite/pkg/service/gitlab"
	"github.com/urfave/cli/v3"
)

// GitLab holds GitLab tracker configuration
type GitLab struct {
	Token     string
	BaseURL   string
	Groups    []string
	Whitelist []string
}

// Flags returns CLI flags for GitLab configuration
func (g *GitLab) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gitlab-token",
			Usage:       "GitLab API token",
			Category:    "GitLab",
			Sources:     cli.EnvVars("LIGNITE_GITLAB_TOKEN"),
			Destination: &g.Token,
		},
		&cli.StringFlag{
			Name:        "gitlab-url",
			Usage:       "GitLab instance base URL (defaults to gitlab.com)",
			Category:    "GitLab",
			Sources:     cli.EnvVars("LIGNITE_GITLAB_URL"),
			Destination: &g.BaseURL,
		},
		&cli.StringSliceFlag{
			Name:        "gitlab-group",
			Usage:       "GitLab group to sync, including subgroups (repeatable)",
			Category:    "GitLab",
			Sources:     cli.EnvVars("LIGNITE_GITLAB_GROUP"),
			Destination: &g.Groups,
		},
		&cli.StringSliceFlag{
			Name:        "gitlab-project",
			Usage:       "Glob pattern of project paths to include (repeatable)",
			Category:    "GitLab",
			Sources:     cli.EnvVars("LIGNITE_GITLAB_PROJECT"),
			Destination: &g.Whitelist,
		},
	}
}

// Configure creates one tracker client per configured group
func (g *GitLab) Configure() ([]interfaces.TrackerClient, error) {
	trackers := make([]interfaces.TrackerClient, 0, len(g.Groups))
	for _, group := range g.Groups {
		client, err := gitlab.New(g.Token, g.BaseURL, types.OrgName(group), g.Whitelist)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init gitlab client",
				goerr.V("group", group),
			)
		}
		trackers = append(trackers, client)
	}
	return trackers, nil
}

// LogValue returns structured log value
func (g GitLab) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("has_token", g.Token != ""),
		slog.String("url", g.BaseURL),
		slog.Any("groups", g.Groups),
		slog.Any("whitelist", g.Whitelist),
	)
}

package cli

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/cli/config"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/urfave/cli/v3"
)

// joinFlags combines multiple flag slices into one
func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, f := range flags {
		result = append(result, f...)
	}
	return result
}

// buildTrackers assembles tracker clients from both tracker configurations
func buildTrackers(githubCfg *config.GitHub, gitlabCfg *config.GitLab) ([]interfaces.TrackerClient, error) {
	trackers := githubCfg.Configure()

	gitlabTrackers, err := gitlabCfg.Configure()
	if err != nil {
		return nil, err
	}
	trackers = append(trackers, gitlabTrackers...)

	if len(trackers) == 0 {
		return nil, goerr.New("no tracker configured, set at least one --github-org or --gitlab-group")
	}

	return trackers, nil
}

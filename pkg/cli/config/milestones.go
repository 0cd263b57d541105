package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Milestones holds the logical milestone declaration file path
type Milestones struct {
	Path string
}

// Flags returns CLI flags for Milestones configuration
func (m *Milestones) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "milestones",
			Usage:       "Path to the logical milestones YAML file",
			Category:    "Milestones",
			Value:       "milestones.yml",
			Sources:     cli.EnvVars("LIGNITE_MILESTONES"),
			Destination: &m.Path,
		},
	}
}

// Configure loads and validates the milestone declarations
func (m *Milestones) Configure() (*model.MilestonesConfig, error) {
	return LoadMilestonesFromFile(m.Path)
}

// LoadMilestonesFromFile loads logical milestone declarations from YAML file
func LoadMilestonesFromFile(path string) (*model.MilestonesConfig, error) {
	if path == "" {
		return nil, goerr.New("milestones file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "milestones file not found",
				goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read milestones file",
			goerr.V("path", path))
	}

	var config model.MilestonesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse milestones YAML",
			goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid milestones file",
			goerr.V("path", path))
	}

	return &config, nil
}

package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

// MilestoneSource identifies one tracker-local milestone contributing to a
// logical milestone.
type MilestoneSource struct {
	Org       types.OrgName       `yaml:"org"`
	Repo      types.RepoName      `yaml:"repo"`
	Milestone types.MilestoneName `yaml:"milestone"`
}

// Validate validates a milestone source declaration
func (s *MilestoneSource) Validate() error {
	if s.Org == "" {
		return goerr.New("milestone source org is required")
	}
	if s.Repo == "" {
		return goerr.New("milestone source repo is required")
	}
	if s.Milestone == "" {
		return goerr.New("milestone source milestone name is required")
	}
	return nil
}

// LogicalMilestone is a user-declared milestone aggregating one or more
// tracker-local milestones across repositories.
type LogicalMilestone struct {
	Name    string            `yaml:"name"`
	Sources []MilestoneSource `yaml:"sources"`
}

// Validate validates a logical milestone declaration
func (m *LogicalMilestone) Validate() error {
	if m.Name == "" {
		return goerr.New("logical milestone name is required")
	}
	if len(m.Sources) == 0 {
		return goerr.New("logical milestone needs at least one source",
			goerr.V("name", m.Name))
	}
	for i, src := range m.Sources {
		if err := src.Validate(); err != nil {
			return goerr.Wrap(err, "invalid milestone source",
				goerr.V("name", m.Name),
				goerr.V("index", i))
		}
	}
	return nil
}

// MilestonesConfig is the full set of logical milestone declarations.
// Declaration order is preserved: reports and merges follow it so output is
// reproducible.
type MilestonesConfig struct {
	Milestones []LogicalMilestone `yaml:"milestones"`
}

// Validate validates the configuration
func (c *MilestonesConfig) Validate() error {
	if len(c.Milestones) == 0 {
		return goerr.New("at least one logical milestone is required")
	}

	seen := make(map[string]bool)
	for i, m := range c.Milestones {
		if err := m.Validate(); err != nil {
			return goerr.Wrap(err, "invalid logical milestone",
				goerr.V("index", i))
		}
		if seen[m.Name] {
			return goerr.New("duplicate logical milestone name",
				goerr.V("name", m.Name))
		}
		seen[m.Name] = true
	}

	return nil
}

// Find returns the logical milestone with the given name, or nil
func (c *MilestonesConfig) Find(name string) *LogicalMilestone {
	for _, m := range c.Milestones {
		if m.Name == name {
			result := m
			return &result
		}
	}
	return nil
}

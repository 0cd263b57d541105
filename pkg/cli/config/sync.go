package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Sync holds sync behavior configuration
type Sync struct {
	Since         string
	RateLimitWait time.Duration
}

// Flags returns CLI flags for Sync configuration
func (s *Sync) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "since",
			Usage:       "Fetch issues updated at or after this time (RFC 3339), overriding the stored watermark",
			Category:    "Sync",
			Sources:     cli.EnvVars("LIGNITE_SINCE"),
			Destination: &s.Since,
		},
		&cli.DurationFlag{
			Name:        "rate-limit-wait",
			Usage:       "Back-off before retrying a rate-limited tracker request",
			Category:    "Sync",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("LIGNITE_RATE_LIMIT_WAIT"),
			Destination: &s.RateLimitWait,
		},
	}
}

// Options converts the configuration into sync use case options
func (s *Sync) Options() ([]usecase.SyncOption, error) {
	opts := []usecase.SyncOption{
		usecase.WithRateLimitWait(s.RateLimitWait),
	}

	if s.Since != "" {
		since, err := time.Parse(model.TimeFormat, s.Since)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid since time",
				goerr.V("since", s.Since))
		}
		opts = append(opts, usecase.WithSince(since))
	}

	return opts, nil
}

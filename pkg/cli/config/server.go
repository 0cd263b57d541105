package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds HTTP server configuration
type Server struct {
	Addr           string
	ResyncInterval time.Duration
}

// Flags returns CLI flags for Server configuration
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Sources:     cli.EnvVars("LIGNITE_ADDR"),
			Destination: &s.Addr,
		},
		&cli.DurationFlag{
			Name:        "resync-interval",
			Usage:       "How often the server refreshes the snapshot from the trackers (0 disables)",
			Value:       0,
			Sources:     cli.EnvVars("LIGNITE_RESYNC_INTERVAL"),
			Destination: &s.ResyncInterval,
		},
	}
}

package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Store holds snapshot store configuration. The snapshot lives either in a
// local JSON file or in Firestore; Firestore wins when both are set.
type Store struct {
	SnapshotPath      string
	FirestoreProject  string
	FirestoreDatabase string
}

// Flags returns CLI flags for Store configuration
func (s *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "snapshot",
			Usage:       "Path to the issue snapshot JSON file",
			Category:    "Store",
			Value:       "issues.json",
			Sources:     cli.EnvVars("LIGNITE_SNAPSHOT"),
			Destination: &s.SnapshotPath,
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "GCP project ID for Firestore snapshot storage",
			Category:    "Store",
			Sources:     cli.EnvVars("LIGNITE_FIRESTORE_PROJECT"),
			Destination: &s.FirestoreProject,
		},
		&cli.StringFlag{
			Name:        "firestore-database",
			Usage:       "Firestore database ID",
			Category:    "Store",
			Value:       "(default)",
			Sources:     cli.EnvVars("LIGNITE_FIRESTORE_DATABASE"),
			Destination: &s.FirestoreDatabase,
		},
	}
}

// Configure creates the snapshot repository
func (s *Store) Configure(ctx context.Context) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	if s.FirestoreProject != "" {
		repo, err := repository.NewFirestore(ctx, s.FirestoreProject, s.FirestoreDatabase)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to init firestore",
				goerr.V("project", s.FirestoreProject),
				goerr.V("database", s.FirestoreDatabase),
			)
		}
		return repo, nil
	}

	if s.SnapshotPath != "" {
		return repository.NewFile(s.SnapshotPath)
	}

	logger.Warn("Using memory store, the snapshot will be lost on shutdown")
	return repository.NewMemory(), nil
}

// LogValue returns structured log value
func (s Store) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("snapshot", s.SnapshotPath),
		slog.String("firestore_project", s.FirestoreProject),
		slog.String("firestore_database", s.FirestoreDatabase),
	)
}

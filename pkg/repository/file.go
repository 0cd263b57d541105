package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
)

// File implements Repository with a single JSON snapshot file, compatible
// with the issues.json layout produced by earlier importers: a mapping of
// org → repo → issue number → issue.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file repository at the given path. The file does not
// need to exist yet; a missing file loads as an empty snapshot.
func NewFile(path string) (interfaces.Repository, error) {
	if path == "" {
		return nil, goerr.New("snapshot file path is required")
	}
	return &File{path: path}, nil
}

// Load reads and parses the snapshot file
func (f *File) Load(ctx context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewSnapshot(), nil
		}
		return nil, goerr.Wrap(err, "failed to read snapshot file",
			goerr.V("path", f.path))
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, goerr.Wrap(err, "failed to parse snapshot file",
			goerr.V("path", f.path))
	}

	deriveWeights(snap)

	return snap, nil
}

// Save writes the snapshot atomically via a temp file rename
func (f *File) Save(ctx context.Context, snap model.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode snapshot")
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp snapshot file",
			goerr.V("dir", dir))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to write snapshot file",
			goerr.V("path", tmpName))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to close snapshot file",
			goerr.V("path", tmpName))
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to replace snapshot file",
			goerr.V("path", f.path))
	}

	return nil
}

// Close is a no-op for the file repository
func (f *File) Close() error {
	return nil
}

// deriveWeights fills in weights for issues stored before weights were
// tracked. Issues with a recorded weight (GitLab reports one) keep it.
func deriveWeights(snap model.Snapshot) {
	for _, repos := range snap {
		for _, issues := range repos {
			for _, issue := range issues {
				if issue.Weight == 0 {
					issue.Weight = model.DeriveWeight(issue.Title, issue.Labels)
				}
			}
		}
	}
}

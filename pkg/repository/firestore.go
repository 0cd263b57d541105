package repository

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/interfaces"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	orgsCollection  = "orgs"
	reposCollection = "repos"
)

// repoDocument is one repository's issue set, stored as an opaque JSON blob
// so the snapshot wire format stays identical to the file store.
type repoDocument struct {
	Issues []byte `firestore:"issues"`
}

// Firestore implements Repository with one document per (org, repo) pair
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (interfaces.Repository, error) {
	logger := ctxlog.From(ctx)

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	// Fail fast on credential or project problems; an empty collection is
	// not an error.
	_, err = client.Collection(orgsCollection).Limit(1).Documents(ctx).Next()
	if err != nil && err != iterator.Done {
		if status.Code(err) == codes.PermissionDenied || status.Code(err) == codes.Unauthenticated {
			_ = client.Close()
			return nil, goerr.Wrap(err, "failed to connect to firestore project",
				goerr.V("firestore error code", status.Code(err).String()),
			)
		}
		logger.Debug("Firestore connection test returned error (may be empty collection)",
			"error", err,
			"errorCode", status.Code(err).String(),
		)
	}

	logger.Info("Firestore repository initialized",
		"projectID", projectID,
		"databaseID", databaseID,
	)

	return &Firestore{client: client}, nil
}

// Load reads the full snapshot from Firestore
func (f *Firestore) Load(ctx context.Context) (model.Snapshot, error) {
	snap := model.NewSnapshot()

	orgIter := f.client.Collection(orgsCollection).Documents(ctx)
	defer orgIter.Stop()

	for {
		orgDoc, err := orgIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate orgs")
		}

		org := types.OrgName(orgDoc.Ref.ID)
		repoIter := orgDoc.Ref.Collection(reposCollection).Documents(ctx)
		for {
			repoDoc, err := repoIter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				repoIter.Stop()
				return nil, goerr.Wrap(err, "failed to iterate repos",
					goerr.V("org", org))
			}

			var doc repoDocument
			if err := repoDoc.DataTo(&doc); err != nil {
				repoIter.Stop()
				return nil, goerr.Wrap(err, "failed to decode repo document",
					goerr.V("org", org),
					goerr.V("repo", repoDoc.Ref.ID))
			}

			var issues model.IssueSet
			if err := json.Unmarshal(doc.Issues, &issues); err != nil {
				repoIter.Stop()
				return nil, goerr.Wrap(err, "failed to parse repo issues",
					goerr.V("org", org),
					goerr.V("repo", repoDoc.Ref.ID))
			}

			repos, ok := snap[org]
			if !ok {
				repos = model.RepoIssues{}
				snap[org] = repos
			}
			repos[types.RepoName(repoDoc.Ref.ID)] = issues
		}
		repoIter.Stop()
	}

	deriveWeights(snap)

	return snap, nil
}

// Save writes every (org, repo) pair as its own document
func (f *Firestore) Save(ctx context.Context, snap model.Snapshot) error {
	for org, repos := range snap {
		orgRef := f.client.Collection(orgsCollection).Doc(org.String())

		// Keep the org document present so collection listing finds it.
		if _, err := orgRef.Set(ctx, map[string]interface{}{"name": org.String()}); err != nil {
			return goerr.Wrap(err, "failed to save org document",
				goerr.V("org", org))
		}

		for repo, issues := range repos {
			data, err := json.Marshal(issues)
			if err != nil {
				return goerr.Wrap(err, "failed to encode repo issues",
					goerr.V("org", org),
					goerr.V("repo", repo))
			}

			_, err = orgRef.Collection(reposCollection).Doc(repo.String()).
				Set(ctx, repoDocument{Issues: data})
			if err != nil {
				return goerr.Wrap(err, "failed to save repo document",
					goerr.V("org", org),
					goerr.V("repo", repo))
			}
		}
	}

	return nil
}

// Close closes the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}

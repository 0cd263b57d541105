package interfaces

import (
	"context"
	"time"

	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
)

// TrackerClient fetches issues from one issue tracker organization or group.
// Implementations return model.ErrRateLimited (wrapped) when the tracker
// throttles the client; sync decides how long to back off.
type TrackerClient interface {
	// Org returns the organization/group this client is bound to
	Org() types.OrgName

	// Repos lists the repositories visible under the organization
	Repos(ctx context.Context) ([]types.RepoName, error)

	// Issues returns the repository's issues updated at or after since,
	// keyed by tracker-local number, with lifecycle events attached.
	Issues(ctx context.Context, repo types.RepoName, since time.Time) (model.IssueSet, error)
}

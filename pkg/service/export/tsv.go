package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/domain/model"
)

var issueHeader = []string{
	"path", "orgname", "reponame", "id", "title", "state",
	"created_at", "updated_at", "closed_at",
}

// WriteTSV writes every non-PR issue of the snapshot as one tab-separated
// row. Rows come out in sorted org/repo/number order so repeated exports
// diff cleanly.
func WriteTSV(w io.Writer, snap model.Snapshot) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	if err := writer.Write(issueHeader); err != nil {
		return goerr.Wrap(err, "failed to write TSV header")
	}

	for _, row := range issueRows(snap) {
		closedAt := ""
		if row.issue.ClosedAt != nil {
			closedAt = row.issue.ClosedAt.UTC().Format(model.TimeFormat)
		}

		record := []string{
			fmt.Sprintf("%s/%s/issues/%s", row.org, row.repo, row.number),
			row.org.String(),
			row.repo.String(),
			row.number.String(),
			strings.TrimSpace(row.issue.Title),
			row.issue.State,
			row.issue.CreatedAt.UTC().Format(model.TimeFormat),
			row.issue.UpdatedAt.UTC().Format(model.TimeFormat),
			closedAt,
		}
		if err := writer.Write(record); err != nil {
			return goerr.Wrap(err, "failed to write TSV row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush TSV output")
	}

	return nil
}

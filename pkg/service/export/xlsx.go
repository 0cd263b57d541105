package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/plan-lab/lignite/pkg/burndown"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/tealeg/xlsx"
)

// sheetNameLimit is the hard cap spreadsheet applications put on sheet
// names.
const sheetNameLimit = 31

// WriteXLSX writes a workbook with an "All issues" sheet listing the whole
// snapshot plus one sheet per logical milestone holding its day series and
// the issues counted into it.
func WriteXLSX(w io.Writer, snap model.Snapshot, reports []*burndown.MilestoneReport) error {
	file := xlsx.NewFile()

	if err := addAllIssuesSheet(file, snap); err != nil {
		return err
	}

	used := map[string]bool{"All issues": true}
	for _, report := range reports {
		if err := addMilestoneSheet(file, report, used); err != nil {
			return err
		}
	}

	if err := file.Write(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}

	return nil
}

func addAllIssuesSheet(file *xlsx.File, snap model.Snapshot) error {
	sheet, err := file.AddSheet("All issues")
	if err != nil {
		return goerr.Wrap(err, "failed to add issue sheet")
	}

	header := sheet.AddRow()
	for _, title := range issueHeader {
		header.AddCell().SetString(title)
	}

	for _, row := range issueRows(snap) {
		r := sheet.AddRow()
		r.AddCell().SetString(row.org.String() + "/" + row.repo.String() + "/issues/" + row.number.String())
		r.AddCell().SetString(row.org.String())
		r.AddCell().SetString(row.repo.String())
		r.AddCell().SetString(row.number.String())
		r.AddCell().SetString(strings.TrimSpace(row.issue.Title))
		r.AddCell().SetString(row.issue.State)
		r.AddCell().SetDateTime(row.issue.CreatedAt.UTC())
		r.AddCell().SetDateTime(row.issue.UpdatedAt.UTC())
		if row.issue.ClosedAt != nil {
			r.AddCell().SetDateTime(row.issue.ClosedAt.UTC())
		} else {
			r.AddCell().SetString("")
		}
	}

	return nil
}

func addMilestoneSheet(file *xlsx.File, report *burndown.MilestoneReport, used map[string]bool) error {
	sheet, err := file.AddSheet(sheetName(report.Name, used))
	if err != nil {
		return goerr.Wrap(err, "failed to add milestone sheet",
			goerr.V("milestone", report.Name))
	}

	seriesHeader := sheet.AddRow()
	seriesHeader.AddCell().SetString("date")
	seriesHeader.AddCell().SetString("open")
	for _, dc := range report.Days.Days() {
		r := sheet.AddRow()
		r.AddCell().SetDate(dc.Date)
		r.AddCell().SetInt(dc.Count)
	}

	sheet.AddRow()

	issuesHeader := sheet.AddRow()
	for _, title := range []string{"orgname", "reponame", "milestone", "number", "title", "weight", "state", "url"} {
		issuesHeader.AddCell().SetString(title)
	}
	for _, issue := range report.Issues {
		r := sheet.AddRow()
		r.AddCell().SetString(issue.Org.String())
		r.AddCell().SetString(issue.Repo.String())
		r.AddCell().SetString(issue.Milestone)
		r.AddCell().SetString(issue.Number.String())
		r.AddCell().SetString(issue.Title)
		r.AddCell().SetInt(issue.Weight)
		r.AddCell().SetString(issue.State)
		r.AddCell().SetString(issue.URL())
	}

	return nil
}

// sheetName fits a milestone name into the sheet naming rules and keeps it
// unique within the workbook.
func sheetName(name string, used map[string]bool) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		default:
			return r
		}
	}, name)

	if len(sanitized) > sheetNameLimit {
		sanitized = sanitized[:sheetNameLimit]
	}

	candidate := sanitized
	for i := 2; used[candidate]; i++ {
		suffix := "~" + strconv.Itoa(i)
		if len(sanitized)+len(suffix) > sheetNameLimit {
			candidate = sanitized[:sheetNameLimit-len(suffix)] + suffix
		} else {
			candidate = sanitized + suffix
		}
	}
	used[candidate] = true

	return candidate
}

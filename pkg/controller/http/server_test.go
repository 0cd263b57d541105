package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	httpCtrl "github.com/plan-lab/lignite/pkg/controller/http"
	"github.com/plan-lab/lignite/pkg/domain/model"
	"github.com/plan-lab/lignite/pkg/domain/types"
	"github.com/plan-lab/lignite/pkg/repository"
	"github.com/plan-lab/lignite/pkg/usecase"
)

func testServer(t *testing.T) *httpCtrl.Server {
	t.Helper()

	created, err := model.ParseTimestamp("2024-01-01T09:00:00Z")
	gt.NoError(t, err)
	milestoned, err := model.ParseTimestamp("2024-01-02T09:00:00Z")
	gt.NoError(t, err)

	ms := types.MilestoneName("v1")
	snap := model.NewSnapshot()
	snap.EnsureRepo("acme", "core")["1"] = &model.Issue{
		Title:     "open issue",
		State:     model.IssueStateOpen,
		CreatedAt: created,
		UpdatedAt: milestoned,
		Milestone: &ms,
		Weight:    1,
		Events: []model.Event{
			{CreatedAt: milestoned, Kind: model.EventMilestoned, Milestone: &ms},
		},
	}

	repo := repository.NewMemory()
	gt.NoError(t, repo.Save(context.Background(), snap))

	cfg := &model.MilestonesConfig{
		Milestones: []model.LogicalMilestone{
			{
				Name: "Release 1.0",
				Sources: []model.MilestoneSource{
					{Org: "acme", Repo: "core", Milestone: "v1"},
				},
			},
		},
	}

	reportUC := usecase.NewReport(repo, cfg)
	return httpCtrl.NewServer(context.Background(), "localhost:0", reportUC)
}

func doRequest(t *testing.T, s *httpCtrl.Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health")
	gt.Equal(t, rec.Code, http.StatusOK)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, body["status"], "healthy")
}

func TestMilestonesEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/milestones")
	gt.Equal(t, rec.Code, http.StatusOK)

	var body []struct {
		Name   string `json:"name"`
		Issues int    `json:"issues"`
		Open   int    `json:"open"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, len(body), 1)
	gt.Equal(t, body[0].Name, "Release 1.0")
	gt.Equal(t, body[0].Issues, 1)
	gt.Equal(t, body[0].Open, 1)
}

func TestBurndownEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/burndown/Release%201.0")
	gt.Equal(t, rec.Code, http.StatusOK)

	var body struct {
		Name string         `json:"name"`
		Days map[string]int `json:"days"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.Equal(t, body.Name, "Release 1.0")
	gt.Equal(t, body.Days["2024-01-02"], 1)
}

func TestBurndownEndpointUnknownMilestone(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/burndown/nothing")
	gt.Equal(t, rec.Code, http.StatusNotFound)

	var body map[string]string
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	gt.NotEqual(t, body["error"], "")
}

func TestChartEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/charts/Release%201.0")
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Header().Get("Content-Type")).Contains("text/html")
	gt.S(t, rec.Body.String()).Contains("Release 1.0")
}

func TestChartPageEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/charts")
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("Release 1.0")
}

func TestExportTSVEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/export/issues.tsv")
	gt.Equal(t, rec.Code, http.StatusOK)

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	gt.Equal(t, len(lines), 2)
	gt.S(t, lines[1]).Contains("acme/core/issues/1")
}

func TestExportXLSXEndpoint(t *testing.T) {
	s := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/export/burndown.xlsx")
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.True(t, rec.Body.Len() > 0)
}

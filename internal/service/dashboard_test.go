package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"nrw-report-service/internal/model"
)

func TestBuildDashboardViewCounts(t *testing.T) {
	collection := []model.Report{
		{ID: uuid.New(), IssueType: ptr("leaking_pipe"), Name: ptr("Amina")},
		{ID: uuid.New(), IssueType: ptr("broken_meter"), Resolved: true},
		{ID: uuid.New()},
	}
	view, err := BuildDashboardView(collection, DashboardState{Criteria: model.FilterCriteria{Query: "amina"}}, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if view.Total != 3 || view.Filtered != 1 || view.Unresolved != 2 {
		t.Fatalf("unexpected counters %+v", view)
	}
	if view.ByIssueType["leaking_pipe"] != 2 || view.ByIssueType["broken_meter"] != 1 {
		t.Fatalf("unexpected breakdown %v", view.ByIssueType)
	}
}

func TestBuildDashboardViewSelectionOutsideFilter(t *testing.T) {
	resolved := model.Report{ID: uuid.New(), Resolved: true}
	collection := []model.Report{{ID: uuid.New()}, resolved}
	state := DashboardState{Criteria: model.FilterCriteria{UnresolvedOnly: true}, SelectedID: &resolved.ID}

	view, err := BuildDashboardView(collection, state, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if view.Selected == nil || view.Selected.ID != resolved.ID {
		t.Fatal("selection should stay open when filtered out")
	}
}

func TestBuildDashboardViewDropsMissingSelection(t *testing.T) {
	missing := uuid.New()
	view, err := BuildDashboardView([]model.Report{{ID: uuid.New()}}, DashboardState{SelectedID: &missing}, time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if view.Selected != nil {
		t.Fatal("expected no selection")
	}
}

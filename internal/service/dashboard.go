package service

import (
	"time"

	"github.com/google/uuid"

	"nrw-report-service/internal/model"
)

// DashboardState is what the administrator controls: the filter and the open
// detail. The collection itself comes from the AdminStore.
type DashboardState struct {
	Criteria   model.FilterCriteria
	SelectedID *uuid.UUID
}

type DashboardView struct {
	Reports     []model.Report `json:"reports"`
	Total       int            `json:"total"`
	Filtered    int            `json:"filtered"`
	Unresolved  int            `json:"unresolved"`
	ByIssueType map[string]int `json:"by_issue_type"`
	Selected    *model.Report  `json:"selected"`
}

// BuildDashboardView derives the list, the counters and the selected detail
// from a collection. The selection is looked up in the full collection so a
// filter change does not close an open detail; it is nil once the row is gone.
func BuildDashboardView(collection []model.Report, state DashboardState, loc *time.Location) (DashboardView, error) {
	filtered, err := FilterReports(collection, state.Criteria, loc)
	if err != nil {
		return DashboardView{}, err
	}

	view := DashboardView{
		Reports:     filtered,
		Total:       len(collection),
		Filtered:    len(filtered),
		ByIssueType: make(map[string]int),
	}
	for _, r := range collection {
		if !r.Resolved {
			view.Unresolved++
		}
		view.ByIssueType[string(issueTypeOf(r))]++
	}

	if state.SelectedID != nil {
		for i := range collection {
			if collection[i].ID == *state.SelectedID {
				selected := collection[i]
				view.Selected = &selected
				break
			}
		}
	}
	return view, nil
}

func issueTypeOf(r model.Report) model.IssueType {
	if r.IssueType == nil {
		return model.DefaultIssueType
	}
	t := model.IssueType(*r.IssueType)
	if !t.Valid() {
		return model.DefaultIssueType
	}
	return t
}

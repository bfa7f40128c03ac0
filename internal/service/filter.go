package service

import (
	"fmt"
	"strings"
	"time"

	"nrw-report-service/internal/model"
)

const dateLayout = "2006-01-02"

// ReportFilter is FilterCriteria with the date bounds resolved in the
// dashboard's time zone.
type ReportFilter struct {
	query          string
	unresolvedOnly bool
	from           *time.Time
	to             *time.Time
}

// NewReportFilter resolves fromDate to local midnight and toDate to 23:59:59
// local, both inclusive.
func NewReportFilter(criteria model.FilterCriteria, loc *time.Location) (ReportFilter, error) {
	if loc == nil {
		loc = time.Local
	}
	f := ReportFilter{
		query:          strings.ToLower(criteria.Query),
		unresolvedOnly: criteria.UnresolvedOnly,
	}
	if d := strings.TrimSpace(criteria.FromDate); d != "" {
		day, err := time.ParseInLocation(dateLayout, d, loc)
		if err != nil {
			return ReportFilter{}, fmt.Errorf("%w: from date must be YYYY-MM-DD", ErrInvalidInput)
		}
		f.from = &day
	}
	if d := strings.TrimSpace(criteria.ToDate); d != "" {
		day, err := time.ParseInLocation(dateLayout, d, loc)
		if err != nil {
			return ReportFilter{}, fmt.Errorf("%w: to date must be YYYY-MM-DD", ErrInvalidInput)
		}
		end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, loc)
		f.to = &end
	}
	return f, nil
}

func (f ReportFilter) Match(r model.Report) bool {
	if f.unresolvedOnly && r.Resolved {
		return false
	}
	if f.query != "" &&
		!containsFold(r.Name, f.query) &&
		!containsFold(r.Phone, f.query) &&
		!containsFold(r.Description, f.query) {
		return false
	}
	if f.from != nil && r.CreatedAt.Before(*f.from) {
		return false
	}
	if f.to != nil && r.CreatedAt.After(*f.to) {
		return false
	}
	return true
}

// Apply keeps matching reports in their original order.
func (f ReportFilter) Apply(reports []model.Report) []model.Report {
	out := make([]model.Report, 0, len(reports))
	for _, r := range reports {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterReports is the one-shot form of NewReportFilter + Apply.
func FilterReports(reports []model.Report, criteria model.FilterCriteria, loc *time.Location) ([]model.Report, error) {
	f, err := NewReportFilter(criteria, loc)
	if err != nil {
		return nil, err
	}
	return f.Apply(reports), nil
}

func containsFold(field *string, lowerQuery string) bool {
	if field == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*field), lowerQuery)
}

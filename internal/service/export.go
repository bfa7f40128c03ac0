package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"nrw-report-service/internal/model"
)

const ExportContentType = "text/csv; charset=utf-8"

// ExportFilename stamps the export with its UTC creation time.
func ExportFilename(now time.Time) string {
	return "nrw_reports_" + now.UTC().Format("2006-01-02T15:04:05.000Z") + ".csv"
}

// ExportCSV writes the given reports as-is; callers pass the filtered view.
// Field values are written verbatim, so a CRLF in a description stays CRLF.
// Records end in \n.
func ExportCSV(w io.Writer, reports []model.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ReportColumns); err != nil {
		return err
	}
	for _, r := range reports {
		if err := cw.Write(exportRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportRow(r model.Report) []string {
	return []string{
		r.ID.String(),
		text(r.Name),
		text(r.Phone),
		text(r.Email),
		text(r.Description),
		text(r.IssueType),
		text(r.ImageURL),
		text(r.ImagePath),
		number(r.Latitude),
		number(r.Longitude),
		strconv.FormatBool(r.Resolved),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func text(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func number(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

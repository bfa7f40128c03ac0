package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"nrw-report-service/internal/model"
)

func TestExportCSVRoundTrip(t *testing.T) {
	id := uuid.MustParse("6f1c2a4e-8b1d-4c55-9a3e-2f7d1b0c9e11")
	reports := []model.Report{
		{
			ID:          id,
			Name:        ptr("Otieno, \"Jr\""),
			Phone:       ptr("0711 222333"),
			Description: ptr("Leak\nnear gate"),
			IssueType:   ptr("leaking_pipe"),
			Latitude:    ptr(-1.2921),
			Longitude:   ptr(36.8219),
			CreatedAt:   time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{ID: uuid.New(), Resolved: true, CreatedAt: time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, reports); err != nil {
		t.Fatalf("export: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(model.ReportColumns, ",") {
		t.Fatalf("unexpected header %v", records[0])
	}

	row := records[1]
	if row[0] != id.String() || row[1] != "Otieno, \"Jr\"" || row[4] != "Leak\nnear gate" {
		t.Fatalf("unexpected row %q", row)
	}
	if row[8] != "-1.2921" || row[9] != "36.8219" {
		t.Fatalf("unexpected coordinates %q %q", row[8], row[9])
	}
	if row[10] != "false" || row[11] != "2024-03-01T09:30:00Z" {
		t.Fatalf("unexpected resolved/created %q %q", row[10], row[11])
	}

	empty := records[2]
	if empty[1] != "" || empty[8] != "" || empty[10] != "true" {
		t.Fatalf("expected empty optional fields, got %q", empty)
	}
}

func TestExportCSVKeepsCRLFInsideFields(t *testing.T) {
	reports := []model.Report{{ID: uuid.New(), Description: ptr("Leak at the gate\r\nsecond line"), CreatedAt: time.Now()}}

	var buf bytes.Buffer
	if err := ExportCSV(&buf, reports); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\"Leak at the gate\r\nsecond line\"") {
		t.Fatalf("expected CRLF written verbatim, got %q", buf.String())
	}

	// encoding/csv reads a quoted \r\n back as \n.
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if got := records[1][4]; got != "Leak at the gate\nsecond line" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestExportCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(model.ReportColumns, ",") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 4, 5, 678000000, time.FixedZone("EAT", 3*3600))
	if got := ExportFilename(at); got != "nrw_reports_2024-03-01T09:04:05.678Z.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}

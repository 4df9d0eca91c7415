package reporter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/actionsum/workwatch/internal/models"
)

type fakeStore struct {
	summaries []models.AppSummary
	err       error
	since     time.Time
}

func (f *fakeStore) GetAppSummarySince(since time.Time) ([]models.AppSummary, error) {
	f.since = since
	return append([]models.AppSummary(nil), f.summaries...), f.err
}

func TestGetPeriod(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.Local)

	tests := []struct {
		period    string
		wantType  string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"day", "day", time.Date(2024, 5, 15, 0, 0, 0, 0, time.Local), time.Date(2024, 5, 16, 0, 0, 0, 0, time.Local)},
		{"today", "day", time.Date(2024, 5, 15, 0, 0, 0, 0, time.Local), time.Date(2024, 5, 16, 0, 0, 0, 0, time.Local)},
		{"week", "week", time.Date(2024, 5, 13, 0, 0, 0, 0, time.Local), time.Date(2024, 5, 20, 0, 0, 0, 0, time.Local)},
		{"month", "month", time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local), time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			p, err := GetPeriod(tt.period, now)
			if err != nil {
				t.Fatalf("GetPeriod() error: %v", err)
			}
			if p.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", p.Type, tt.wantType)
			}
			if !p.Start.Equal(tt.wantStart) || !p.End.Equal(tt.wantEnd) {
				t.Errorf("range = %v..%v, want %v..%v", p.Start, p.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestGetPeriodSundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2024, 5, 19, 23, 0, 0, 0, time.Local)
	p, err := GetPeriod("week", sunday)
	if err != nil {
		t.Fatalf("GetPeriod() error: %v", err)
	}
	if want := time.Date(2024, 5, 13, 0, 0, 0, 0, time.Local); !p.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", p.Start, want)
	}
}

func TestGetPeriodInvalid(t *testing.T) {
	if _, err := GetPeriod("year", time.Now()); err == nil {
		t.Error("expected error for invalid period")
	}
}

func TestGenerateReport(t *testing.T) {
	store := &fakeStore{summaries: []models.AppSummary{
		{ProcessName: "code", TotalSeconds: 5400, SessionCount: 3},
		{ProcessName: "chrome", TotalSeconds: 1800, SessionCount: 7},
	}}
	r := New(store)
	r.now = func() time.Time { return time.Date(2024, 5, 15, 12, 0, 0, 0, time.Local) }

	report, err := r.GenerateReport("day")
	if err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}

	if !store.since.Equal(time.Date(2024, 5, 15, 0, 0, 0, 0, time.Local)) {
		t.Errorf("queried since %v", store.since)
	}
	if report.TotalSeconds != 7200 || report.TotalHours != 2 {
		t.Errorf("totals = %ds / %.2fh", report.TotalSeconds, report.TotalHours)
	}
	if report.Apps[0].Percentage != 75 || report.Apps[1].Percentage != 25 {
		t.Errorf("percentages = %.1f, %.1f", report.Apps[0].Percentage, report.Apps[1].Percentage)
	}
	if report.Apps[0].TotalMinutes != 90 {
		t.Errorf("TotalMinutes = %.1f, want 90", report.Apps[0].TotalMinutes)
	}

	text := FormatReportText(report)
	for _, want := range []string{"Activity Report - day", "Total Time: 02:00:00", "code", "01:30:00", "75.0%"} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q:\n%s", want, text)
		}
	}

	js, err := FormatReportJSON(report)
	if err != nil {
		t.Fatalf("FormatReportJSON() error: %v", err)
	}
	if !strings.Contains(js, `"process_name": "code"`) {
		t.Errorf("JSON report missing process: %s", js)
	}
}

func TestGenerateReportEmpty(t *testing.T) {
	report, err := New(&fakeStore{}).GenerateReport("week")
	if err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}
	if !strings.Contains(FormatReportText(report), "No activity recorded") {
		t.Error("empty report text missing notice")
	}
}

func TestGenerateReportStoreError(t *testing.T) {
	if _, err := New(&fakeStore{err: errors.New("locked")}).GenerateReport("day"); err == nil {
		t.Error("expected store error to propagate")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 30); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Errorf("truncate() = %q, want abc...", got)
	}
}

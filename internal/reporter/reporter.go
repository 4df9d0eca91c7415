package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/actionsum/workwatch/internal/models"
	"github.com/actionsum/workwatch/pkg/utils"
)

// SummaryStore is the part of database.Repository the reporter reads.
type SummaryStore interface {
	GetAppSummarySince(since time.Time) ([]models.AppSummary, error)
}

// Reporter handles report generation
type Reporter struct {
	store SummaryStore
	now   func() time.Time
}

// New creates a new reporter
func New(store SummaryStore) *Reporter {
	return &Reporter{
		store: store,
		now:   time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	now := r.now()
	period, err := GetPeriod(periodType, now)
	if err != nil {
		return nil, err
	}

	// SQL does the SUM, derived fields are computed here
	summaries, err := r.store.GetAppSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get app summary: %w", err)
	}

	var totalSeconds int64
	for i := range summaries {
		summaries[i].TotalMinutes = float64(summaries[i].TotalSeconds) / 60.0
		summaries[i].TotalHours = float64(summaries[i].TotalSeconds) / 3600.0
		totalSeconds += summaries[i].TotalSeconds
	}

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].TotalSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	return &models.Report{
		Period:       *period,
		Apps:         summaries,
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60.0,
		TotalHours:   float64(totalSeconds) / 3600.0,
		GeneratedAt:  now,
	}, nil
}

// GetPeriod calculates the calendar range containing now. Weeks start on Monday.
func GetPeriod(periodType string, now time.Time) (*models.ReportPeriod, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var start, end time.Time

	switch periodType {
	case "day", "today":
		periodType = "day"
		start = midnight
		end = start.AddDate(0, 0, 1)

	case "week":
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = midnight.AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func FormatReportText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Activity Report - %s\n", report.Period.Type)
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total Time: %s (%s)\n\n",
		utils.FormatClock(time.Duration(report.TotalSeconds)*time.Second),
		utils.FormatRoundedUnit(report.TotalSeconds))

	if len(report.Apps) == 0 {
		b.WriteString("No activity recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-30s %10s %9s %9s\n", "Process", "Time", "Sessions", "Percent")
	b.WriteString(strings.Repeat("-", 61) + "\n")

	for _, app := range report.Apps {
		fmt.Fprintf(&b, "%-30s %10s %9d %8.1f%%\n",
			truncate(app.ProcessName, 30),
			utils.FormatClock(time.Duration(app.TotalSeconds)*time.Second),
			app.SessionCount,
			app.Percentage)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

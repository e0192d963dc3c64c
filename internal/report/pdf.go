// Package report renders study history as a PDF document.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"studyhub/internal/model"
)

type StudyReport struct {
	Owner       string
	GeneratedAt time.Time
	Stats       model.StudyStats
	Sessions    []model.StudySession
}

func Render(w io.Writer, r StudyReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Study report", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(fmt.Sprintf("Study report: %s", r.Owner)))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Generated %s", r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	summary := []string{
		fmt.Sprintf("Focus sessions: %d (%s)", r.Stats.TotalSessions, formatDuration(r.Stats.TotalFocusSeconds)),
		fmt.Sprintf("Today: %d (%s)", r.Stats.SessionsToday, formatDuration(r.Stats.FocusSecondsToday)),
		fmt.Sprintf("Current streak: %d days, longest: %d days", r.Stats.CurrentStreakDays, r.Stats.LongestStreakDays),
	}
	for _, line := range summary {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Recent sessions")
	pdf.Ln(9)
	if len(r.Sessions) == 0 {
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 7, "No focus sessions recorded yet.")
		pdf.Ln(7)
	} else {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(70, 7, "Completed (UTC)", "1", 0, "L", true, 0, "")
		pdf.CellFormat(40, 7, "Duration", "1", 1, "R", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, session := range r.Sessions {
			pdf.CellFormat(70, 7, session.CompletedAt.UTC().Format("2006-01-02 15:04"), "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, formatDuration(session.DurationSeconds), "1", 1, "R", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func formatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

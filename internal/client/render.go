package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/drpg-sync/internal/service"
	"github.com/MKhiriev/drpg-sync/models"
	"github.com/charmbracelet/lipgloss"
)

type reportStyles struct {
	title      lipgloss.Style
	downloaded lipgloss.Style
	skipped    lipgloss.Style
	planned    lipgloss.Style
	failed     lipgloss.Style
	detail     lipgloss.Style
	success    lipgloss.Style
	partial    lipgloss.Style
	failure    lipgloss.Style
}

func newReportStyles(r *lipgloss.Renderer) reportStyles {
	return reportStyles{
		title:      r.NewStyle().Bold(true),
		downloaded: r.NewStyle().Foreground(lipgloss.Color("2")),
		skipped:    r.NewStyle().Faint(true),
		planned:    r.NewStyle().Foreground(lipgloss.Color("6")),
		failed:     r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		detail:     r.NewStyle().Faint(true),
		success:    r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		partial:    r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		failure:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

// ReportRenderer prints a sync report. Colors are used only when out is a
// terminal.
type ReportRenderer struct {
	out         io.Writer
	styles      reportStyles
	showSkipped bool
}

// NewReportRenderer renders to out. Unchanged items are listed only when
// showSkipped is set; they are always counted in the summary.
func NewReportRenderer(out io.Writer, showSkipped bool) *ReportRenderer {
	return &ReportRenderer{
		out:         out,
		styles:      newReportStyles(lipgloss.NewRenderer(out)),
		showSkipped: showSkipped,
	}
}

func (rr *ReportRenderer) Render(r *service.Report) error {
	var b strings.Builder

	title := "drpg sync"
	if r.DryRun {
		title += " (dry run)"
	}
	b.WriteString(rr.styles.title.Render(title))
	b.WriteString("\n")

	for _, out := range r.Outcomes {
		label := service.Label(out)
		if label == "skipped" && !rr.showSkipped {
			continue
		}
		b.WriteString(rr.labelStyle(out).Render(fmt.Sprintf("%-16s", label)))
		b.WriteString(r.RelativePath(out))
		if detail := service.Detail(out); detail != "" {
			b.WriteString(rr.styles.detail.Render(": " + detail))
		}
		b.WriteString("\n")
	}

	b.WriteString(rr.statusStyle(r.Status()).Render(r.Summary()))
	b.WriteString("\n")

	_, err := io.WriteString(rr.out, b.String())
	return err
}

func (rr *ReportRenderer) labelStyle(out models.SyncOutcome) lipgloss.Style {
	switch out.Kind {
	case models.OutcomeSucceeded:
		return rr.styles.downloaded
	case models.OutcomeFailed:
		return rr.styles.failed
	}
	if out.Reason == models.ReasonUnchanged {
		return rr.styles.skipped
	}
	return rr.styles.planned
}

func (rr *ReportRenderer) statusStyle(status service.Status) lipgloss.Style {
	switch status {
	case service.StatusSuccess:
		return rr.styles.success
	case service.StatusPartialFailure:
		return rr.styles.partial
	default:
		return rr.styles.failure
	}
}

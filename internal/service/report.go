package service

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/MKhiriev/drpg-sync/models"
)

// Status is the overall result of a sync run.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialFailure Status = "partial-failure"
	StatusFailure        Status = "failure"
)

// Exit codes returned by Report.ExitCode.
const (
	ExitSuccess        = 0
	ExitFailure        = 1
	ExitPartialFailure = 2
)

// Report aggregates the outcomes of one run.
type Report struct {
	Outcomes []models.SyncOutcome

	Succeeded     int
	Skipped       int
	WouldDownload int
	Failed        int

	// Bytes is the total written by successful downloads.
	Bytes int64

	// Pruned is the number of orphaned records removed after the run.
	Pruned int64

	// ListingErr is set when the catalog could not be listed; no outcome
	// exists in that case.
	ListingErr error

	LibraryPath string
	DryRun      bool
	Duration    time.Duration
}

// NewReport counts outcomes. Skips planned as downloads or revalidations in
// a dry run count as WouldDownload.
func NewReport(outcomes []models.SyncOutcome) *Report {
	r := &Report{Outcomes: outcomes}
	for _, out := range outcomes {
		switch out.Kind {
		case models.OutcomeSucceeded:
			r.Succeeded++
			r.Bytes += out.Bytes
		case models.OutcomeFailed:
			r.Failed++
		case models.OutcomeSkipped:
			if out.Reason == models.ReasonWouldDownload || out.Reason == models.ReasonWouldRevalidate {
				r.WouldDownload++
				continue
			}
			r.Skipped++
		}
	}
	return r
}

// NewListingFailureReport is the report of a run that never got a catalog.
func NewListingFailureReport(err error) *Report {
	return &Report{ListingErr: err}
}

// Total is the number of outcomes.
func (r *Report) Total() int {
	return len(r.Outcomes)
}

// Status is success when nothing failed, failure when the catalog could not
// be listed or every action failed, and partial-failure otherwise.
func (r *Report) Status() Status {
	switch {
	case r.ListingErr != nil:
		return StatusFailure
	case r.Failed == 0:
		return StatusSuccess
	case r.Failed == len(r.Outcomes):
		return StatusFailure
	default:
		return StatusPartialFailure
	}
}

func (r *Report) ExitCode() int {
	switch r.Status() {
	case StatusSuccess:
		return ExitSuccess
	case StatusPartialFailure:
		return ExitPartialFailure
	default:
		return ExitFailure
	}
}

// Label is the short status word printed in front of an outcome line.
func Label(out models.SyncOutcome) string {
	switch out.Kind {
	case models.OutcomeSucceeded:
		return "downloaded"
	case models.OutcomeFailed:
		return "failed"
	default:
		switch out.Reason {
		case models.ReasonWouldDownload:
			return "would-download"
		case models.ReasonWouldRevalidate:
			return "would-revalidate"
		default:
			return "skipped"
		}
	}
}

// Detail is the text after the path in an outcome line; it may be empty.
func Detail(out models.SyncOutcome) string {
	switch out.Kind {
	case models.OutcomeFailed:
		if out.Err == nil {
			return string(out.ErrorKind)
		}
		return fmt.Sprintf("%s: %v", out.ErrorKind, out.Err)
	case models.OutcomeSucceeded:
		return string(out.Action.Reason)
	default:
		if out.Reason == models.ReasonUnchanged {
			return ""
		}
		return string(out.Action.Reason)
	}
}

// RelativePath returns the outcome's target relative to the library root
// when possible.
func (r *Report) RelativePath(out models.SyncOutcome) string {
	target := out.Action.Target
	if target == "" {
		target = out.Action.Item.Title()
	}
	if r.LibraryPath == "" {
		return target
	}
	root, err := filepath.Abs(r.LibraryPath)
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return target
	}
	return rel
}

// Lines renders one "<status>  <relative path>[: detail]" line per outcome
// in catalog order.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Outcomes))
	for _, out := range r.Outcomes {
		line := Label(out) + "  " + r.RelativePath(out)
		if detail := Detail(out); detail != "" {
			line += ": " + detail
		}
		lines = append(lines, line)
	}
	return lines
}

// Summary is a one-line count of every outcome kind.
func (r *Report) Summary() string {
	if r.ListingErr != nil {
		return fmt.Sprintf("%s: %v", StatusFailure, r.ListingErr)
	}
	if r.DryRun {
		return fmt.Sprintf("%s: %d would download, %d skipped, %d failed",
			r.Status(), r.WouldDownload, r.Skipped, r.Failed)
	}
	return fmt.Sprintf("%s: %d succeeded, %d skipped, %d failed, %d records pruned",
		r.Status(), r.Succeeded, r.Skipped, r.Failed, r.Pruned)
}

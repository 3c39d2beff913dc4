package models

import "time"

// OutcomeKind is the tag of a SyncOutcome.
type OutcomeKind int

const (
	OutcomeSucceeded OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

// String implements fmt.Stringer.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrorKind classifies a failed outcome.
type ErrorKind string

const (
	ErrorKindNone          ErrorKind = ""
	ErrorKindTransient     ErrorKind = "transient-network"
	ErrorKindExpiredURL    ErrorKind = "expired-url"
	ErrorKindIntegrity     ErrorKind = "integrity"
	ErrorKindPathCollision ErrorKind = "path-collision"
	ErrorKindNotFound      ErrorKind = "not-found"
	ErrorKindFilesystem    ErrorKind = "filesystem"
	ErrorKindStateStore    ErrorKind = "state-store"
	ErrorKindInvalidItem   ErrorKind = "invalid-item"
	ErrorKindCanceled      ErrorKind = "canceled"
	ErrorKindRemote        ErrorKind = "remote"
)

// SyncOutcome is the result of executing one SyncAction.
type SyncOutcome struct {
	Kind      OutcomeKind
	Action    SyncAction
	Reason    Reason
	ErrorKind ErrorKind
	Err       error

	// Bytes is the number of bytes written for a successful download.
	Bytes    int64
	Duration time.Duration
}

// Succeeded builds a successful outcome.
func Succeeded(action SyncAction, bytes int64) SyncOutcome {
	return SyncOutcome{Kind: OutcomeSucceeded, Action: action, Bytes: bytes}
}

// Skipped builds a skipped outcome.
func Skipped(action SyncAction, reason Reason) SyncOutcome {
	return SyncOutcome{Kind: OutcomeSkipped, Action: action, Reason: reason}
}

// Failed builds a failed outcome.
func Failed(action SyncAction, kind ErrorKind, err error) SyncOutcome {
	return SyncOutcome{Kind: OutcomeFailed, Action: action, ErrorKind: kind, Err: err}
}

package models

// ActionKind is the tag of a SyncAction.
type ActionKind int

const (
	// ActionSkip leaves the item as it is.
	ActionSkip ActionKind = iota
	// ActionDownload fetches the item and replaces the local file.
	ActionDownload
	// ActionRevalidate recomputes the local checksum and escalates to a
	// download on mismatch.
	ActionRevalidate
)

// String implements fmt.Stringer.
func (k ActionKind) String() string {
	switch k {
	case ActionSkip:
		return "skip"
	case ActionDownload:
		return "download"
	case ActionRevalidate:
		return "revalidate"
	default:
		return "unknown"
	}
}

// Reason explains why an action was planned or why an item was skipped.
type Reason string

const (
	ReasonUnchanged       Reason = "unchanged"
	ReasonWouldDownload   Reason = "would-download"
	ReasonWouldRevalidate Reason = "would-revalidate"

	ReasonNew             Reason = "no local record"
	ReasonIncomplete      Reason = "previous sync incomplete"
	ReasonPathChanged     Reason = "local path changed"
	ReasonFileMissing     Reason = "file missing on disk"
	ReasonSizeOnDisk      Reason = "file size on disk changed"
	ReasonRemoteChanged   Reason = "remote size or timestamp changed"
	ReasonChecksumChanged Reason = "remote checksum changed"
	ReasonVerify          Reason = "checksum validation requested"
	ReasonLocalMismatch   Reason = "local file does not match checksum"
)

// SyncAction is one planned step produced by the planner and consumed by
// the scheduler.
type SyncAction struct {
	Kind   ActionKind
	Item   CatalogItem
	Target string
	Reason Reason

	// Record is the previous local record, nil when none existed.
	Record *LocalRecord
}

// Skip builds a skip action.
func Skip(item CatalogItem, target string, reason Reason, rec *LocalRecord) SyncAction {
	return SyncAction{Kind: ActionSkip, Item: item, Target: target, Reason: reason, Record: rec}
}

// Download builds a download action.
func Download(item CatalogItem, target string, reason Reason, rec *LocalRecord) SyncAction {
	return SyncAction{Kind: ActionDownload, Item: item, Target: target, Reason: reason, Record: rec}
}

// Revalidate builds a revalidate action.
func Revalidate(item CatalogItem, target string, rec *LocalRecord) SyncAction {
	return SyncAction{Kind: ActionRevalidate, Item: item, Target: target, Reason: ReasonVerify, Record: rec}
}

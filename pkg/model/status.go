package model

import "time"

// StatusKind is the last known outcome of running a node.
type StatusKind int

const (
	// StatusNeverRun means no run artifact mentions this node.
	StatusNeverRun StatusKind = iota
	// StatusSuccess means the last run succeeded.
	StatusSuccess
	// StatusError means the last run failed.
	StatusError
	// StatusSkipped means the last run skipped this node.
	StatusSkipped
	// StatusStale means the last run succeeded but the node's source file
	// was modified afterwards.
	StatusStale
)

func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusSkipped:
		return "skipped"
	case StatusStale:
		return "stale"
	default:
		return "never run"
	}
}

// RunStatus is the run-artifact collaborator's answer for one node.
type RunStatus struct {
	Kind        StatusKind
	CompletedAt time.Time // zero when unknown
	Message     string    // failure message, empty otherwise
}

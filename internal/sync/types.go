// Package sync reconciles the local store with the remote backend, one
// project collection at a time. Every operation is idempotent and
// degrades to offline mode on network failure: callers can always fall
// back to reading whatever the local store holds.
package sync

import "errors"

// Mode is the user-visible sync state of a collection, rendered as a
// status badge rather than a blocking dialog.
type Mode string

const (
	ModeOffline   Mode = "offline"
	ModeSynced    Mode = "synced"
	ModeNeedsSync Mode = "needs_sync"
	ModeError     Mode = "error"
)

// Outcome reports what an entry sync did.
type Outcome struct {
	Synced       bool   `json:"synced"`
	SyncedFromDB bool   `json:"synced_from_db"`
	Mode         Mode   `json:"mode"`
	Pulled       int    `json:"pulled"`
	LocalCount   int    `json:"local_count"`
	RemoteCount  int    `json:"remote_count"`
	NeedsSync    bool   `json:"needs_sync"`
	Conflicts    int    `json:"conflicts"`
	Message      string `json:"message,omitempty"`
}

// PushResult aggregates a continue-on-error batch upload.
type PushResult struct {
	Success     bool   `json:"success"`
	SyncedCount int    `json:"synced_count"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	Message     string `json:"message,omitempty"`
}

// PullResult reports an explicit remote-wins pull.
type PullResult struct {
	Success     bool   `json:"success"`
	Pulled      int    `json:"pulled"`
	Overwritten int    `json:"overwritten"`
	Message     string `json:"message,omitempty"`
}

// TwoWayResult reports an explicit bidirectional reconciliation.
type TwoWayResult struct {
	Pulled    int    `json:"pulled"`
	Pushed    int    `json:"pushed"`
	Conflicts int    `json:"conflicts"`
	Failed    int    `json:"failed"`
	Mode      Mode   `json:"mode"`
	Message   string `json:"message,omitempty"`
}

// ErrSyncInFlight is returned when a project already has a sync
// operation running. Concurrent syncs racing the same local keys is the
// one real hazard here, so the guard is hard.
var ErrSyncInFlight = errors.New("sync already in progress for this project")

package data

import "time"

// Settings is the locally stored settings document for one membership.
type Settings struct {
	MembershipID string
	Values       map[string]any
	Updated      time.Time
}

// SyncState controls remote settings synchronisation.
type SyncState struct {
	Enabled bool
	Updated time.Time
}

// DefaultSyncUpdated is the timestamp of a sync state that has never synced.
var DefaultSyncUpdated = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultSyncState is used when nothing has been stored yet.
func DefaultSyncState() SyncState {
	return SyncState{Enabled: true, Updated: DefaultSyncUpdated}
}

// TableInfo summarises one cached manifest table.
type TableInfo struct {
	Name    string
	Version string
	Size    int // definitions
}

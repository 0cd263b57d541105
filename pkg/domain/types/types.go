package types

import (
	"fmt"

	"github.com/google/uuid"
)

// OrgName represents a tracker organization or group name
type OrgName string

// String returns the string representation
func (n OrgName) String() string {
	return string(n)
}

// RepoName represents a repository name within an organization
type RepoName string

// String returns the string representation
func (n RepoName) String() string {
	return string(n)
}

// IssueNumber represents a tracker-local issue identifier. It is kept as a
// string because snapshots key issues by the tracker's own numbering.
type IssueNumber string

// String returns the string representation
func (n IssueNumber) String() string {
	return string(n)
}

// MilestoneName represents a tracker-local milestone name
type MilestoneName string

// String returns the string representation
func (n MilestoneName) String() string {
	return string(n)
}

// SyncID identifies one synchronization pass in logs
type SyncID string

// String returns the string representation
func (id SyncID) String() string {
	return string(id)
}

// NewSyncID creates a new SyncID
func NewSyncID() SyncID {
	return SyncID(fmt.Sprintf("sync-%s", uuid.New().String()))
}

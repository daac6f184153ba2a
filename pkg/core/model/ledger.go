package model

import "time"

// LedgerReason classifies a points ledger entry.
type LedgerReason string

const (
	ReasonAttendance           LedgerReason = "attendance"
	ReasonAttendanceCorrection LedgerReason = "attendance_correction"
	ReasonAttendanceRetraction LedgerReason = "attendance_retraction"
)

// PointsLedgerEntry is one immutable, signed points grant. Corrections are
// new entries keyed by (RequestID, Revision), never updates, so a user's
// total is always the reconcilable sum of their entries.
type PointsLedgerEntry struct {
	ID        string
	UserID    string
	Points    int
	Reason    LedgerReason
	RequestID string
	Revision  int
	CreatedAt time.Time
}

// Notification is an in-app message produced as a post-commit side effect of
// a state transition.
type Notification struct {
	ID        string
	UserID    string
	Event     string
	Subject   string
	Body      string
	Read      bool
	CreatedAt time.Time
}

// AuditRecord is one append-only "who did what to which entity" line.
// Written best-effort after a transition commits.
type AuditRecord struct {
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
	CreatedAt  time.Time
}

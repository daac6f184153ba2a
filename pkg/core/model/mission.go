package model

import "time"

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	MissionDraft     MissionStatus = "DRAFT"
	MissionOpen      MissionStatus = "OPEN"
	MissionClosed    MissionStatus = "CLOSED"
	MissionCompleted MissionStatus = "COMPLETED"
	MissionCanceled  MissionStatus = "CANCELED"
)

// missionTransitions is the single source of truth for legal mission
// lifecycle moves. Transitions are monotonic along
// DRAFT -> OPEN -> CLOSED -> COMPLETED; CANCELED is reachable from any
// non-terminal state.
var missionTransitions = map[MissionStatus][]MissionStatus{
	MissionDraft:  {MissionOpen, MissionCanceled},
	MissionOpen:   {MissionClosed, MissionCanceled},
	MissionClosed: {MissionCompleted, MissionCanceled},
}

// CanTransition reports whether a mission may move from one status to another.
func (s MissionStatus) CanTransition(to MissionStatus) bool {
	for _, next := range missionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s MissionStatus) Terminal() bool {
	return s == MissionCompleted || s == MissionCanceled
}

// Mission is a time-boxed volunteering effort composed of shifts.
type Mission struct {
	ID           string
	Title        string
	DepartmentID string
	// Type selects a configured point multiplier, e.g. "medical".
	Type      string
	Status    MissionStatus
	StartTime time.Time
	EndTime   time.Time
	CreatedBy string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Shift is a staffed time slot within a mission.
type Shift struct {
	ID             string
	MissionID      string
	StartTime      time.Time
	EndTime        time.Time
	MinVolunteers  int
	MaxVolunteers  int
	ApprovedCount  int
	RequiredSkills []string
	Notes          string
	DeletedAt      *time.Time
}

// Duration returns the scheduled length of the shift.
func (s *Shift) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Department is a catalog entry referenced by missions. Read-only here.
type Department struct {
	ID   string
	Name string
}

// Skill is a catalog entry referenced by shift requirements. Read-only here.
type Skill struct {
	ID   string
	Name string
}

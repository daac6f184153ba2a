package model

import "time"

// RequestStatus is the state of a volunteer's participation request.
type RequestStatus string

const (
	RequestPending         RequestStatus = "PENDING"
	RequestApproved        RequestStatus = "APPROVED"
	RequestRejected        RequestStatus = "REJECTED"
	RequestCanceledByUser  RequestStatus = "CANCELED_BY_USER"
	RequestCanceledByAdmin RequestStatus = "CANCELED_BY_ADMIN"
)

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestPending:  {RequestApproved, RequestRejected, RequestCanceledByUser, RequestCanceledByAdmin},
	RequestApproved: {RequestRejected, RequestCanceledByAdmin},
}

// CanTransition reports whether a request may move from one status to another.
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	for _, next := range requestTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the request can no longer change state.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestRejected, RequestCanceledByUser, RequestCanceledByAdmin:
		return true
	}
	return false
}

// Active reports whether the request still occupies (or may come to occupy)
// a place on the shift. A volunteer may hold at most one active request per
// shift.
func (s RequestStatus) Active() bool {
	return s == RequestPending || s == RequestApproved
}

// ParticipationRequest ties one volunteer to one shift.
//
// DecidedBy/DecidedAt are set iff status is APPROVED or REJECTED.
// Attended/ActualHours are only meaningful while APPROVED.
type ParticipationRequest struct {
	ID              string
	ShiftID         string
	VolunteerID     string
	Status          RequestStatus
	Notes           string
	RejectionReason string
	DecidedBy       string
	DecidedAt       *time.Time
	Attended        bool
	ActualHours     *float64
	CreatedAt       time.Time
}

// Role is the acting capacity of a user, as reported by the surrounding
// identity layer. Authentication mechanics live outside this core.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleShiftLeader Role = "shift_leader"
	RoleVolunteer   Role = "volunteer"
)

// CanDecide reports whether the role may approve or reject pending requests.
func (r Role) CanDecide() bool {
	return r == RoleAdmin || r == RoleShiftLeader
}

// Actor is the identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// User is a volunteer or staff account. TotalPoints is derived state: it
// always equals the sum of the user's ledger entries.
type User struct {
	ID          string
	Name        string
	Email       string
	Role        Role
	TotalPoints int
	CreatedAt   time.Time
}

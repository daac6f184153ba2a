package api

import (
	"time"

	"github.com/volunhub/volunhub/pkg/core/model"
)

type missionDTO struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	DepartmentID string    `json:"department_id,omitempty"`
	Type         string    `json:"type,omitempty"`
	Status       string    `json:"status"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMissionDTO(m *model.Mission) *missionDTO {
	return &missionDTO{
		ID:           m.ID,
		Title:        m.Title,
		DepartmentID: m.DepartmentID,
		Type:         m.Type,
		Status:       string(m.Status),
		StartTime:    m.StartTime,
		EndTime:      m.EndTime,
		CreatedBy:    m.CreatedBy,
		CreatedAt:    m.CreatedAt,
	}
}

type shiftDTO struct {
	ID             string    `json:"id"`
	MissionID      string    `json:"mission_id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	MinVolunteers  int       `json:"min_volunteers"`
	MaxVolunteers  int       `json:"max_volunteers"`
	ApprovedCount  int       `json:"approved_count"`
	RequiredSkills []string  `json:"required_skill_ids,omitempty"`
	Notes          string    `json:"notes,omitempty"`
}

func toShiftDTO(s *model.Shift) *shiftDTO {
	return &shiftDTO{
		ID:             s.ID,
		MissionID:      s.MissionID,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		MinVolunteers:  s.MinVolunteers,
		MaxVolunteers:  s.MaxVolunteers,
		ApprovedCount:  s.ApprovedCount,
		RequiredSkills: s.RequiredSkills,
		Notes:          s.Notes,
	}
}

type requestDTO struct {
	ID              string     `json:"id"`
	ShiftID         string     `json:"shift_id"`
	VolunteerID     string     `json:"volunteer_id"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	DecidedBy       string     `json:"decided_by,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	Attended        bool       `json:"attended"`
	ActualHours     *float64   `json:"actual_hours,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toRequestDTO(r *model.ParticipationRequest) *requestDTO {
	return &requestDTO{
		ID:              r.ID,
		ShiftID:         r.ShiftID,
		VolunteerID:     r.VolunteerID,
		Status:          string(r.Status),
		Notes:           r.Notes,
		RejectionReason: r.RejectionReason,
		DecidedBy:       r.DecidedBy,
		DecidedAt:       r.DecidedAt,
		Attended:        r.Attended,
		ActualHours:     r.ActualHours,
		CreatedAt:       r.CreatedAt,
	}
}

type ledgerEntryDTO struct {
	ID        string    `json:"id"`
	Points    int       `json:"points"`
	Reason    string    `json:"reason"`
	RequestID string    `json:"request_id"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
}

type userPointsDTO struct {
	UserID      string           `json:"user_id"`
	TotalPoints int              `json:"total_points"`
	Ledger      []ledgerEntryDTO `json:"ledger"`
}

func toUserPointsDTO(u *model.User, entries []model.PointsLedgerEntry) *userPointsDTO {
	dto := &userPointsDTO{
		UserID:      u.ID,
		TotalPoints: u.TotalPoints,
		Ledger:      make([]ledgerEntryDTO, 0, len(entries)),
	}
	for _, e := range entries {
		dto.Ledger = append(dto.Ledger, ledgerEntryDTO{
			ID:        e.ID,
			Points:    e.Points,
			Reason:    string(e.Reason),
			RequestID: e.RequestID,
			Revision:  e.Revision,
			CreatedAt: e.CreatedAt,
		})
	}
	return dto
}

type attendanceDTO struct {
	Request        *requestDTO `json:"request"`
	EffectiveHours float64     `json:"effective_hours"`
	Points         int         `json:"points"`
	Delta          int         `json:"delta"`
}

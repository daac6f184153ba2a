package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// ShiftStore defines the database operations needed for shift management.
type ShiftStore interface {
	GetMission(ctx context.Context, id string) (*model.Mission, error)
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	InsertShifts(ctx context.Context, shifts []*model.Shift) error
	GetSkills(ctx context.Context, ids []string) ([]model.Skill, error)
	// DeleteShiftCascade force-cancels every PENDING/APPROVED request on
	// the shift (CANCELED_BY_ADMIN), then soft-deletes the shift. Returns
	// the affected requests.
	DeleteShiftCascade(ctx context.Context, shiftID string) ([]model.ParticipationRequest, error)
}

// ShiftInput carries the fields for a new shift.
type ShiftInput struct {
	StartTime      time.Time
	EndTime        time.Time
	MinVolunteers  int
	MaxVolunteers  int
	RequiredSkills []string
	Notes          string
}

// AddShift creates a single shift on a DRAFT or OPEN mission. Admin only.
func AddShift(
	ctx context.Context,
	store ShiftStore,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	missionID string,
	input ShiftInput,
) (*model.Shift, error) {
	shifts, err := addShifts(ctx, store, audit, logger, actor, missionID, input, nil)
	if err != nil {
		return nil, err
	}
	return shifts[0], nil
}

// AddRecurringShiftsResult reports the shifts expanded from a recurrence rule.
type AddRecurringShiftsResult struct {
	Shifts []*model.Shift
}

// AddRecurringShifts expands an RRULE (e.g. "FREQ=WEEKLY;COUNT=4") anchored
// at the template's start time into one shift per occurrence inside the
// mission window. Each occurrence keeps the template's duration, bounds and
// skill requirements.
func AddRecurringShifts(
	ctx context.Context,
	store ShiftStore,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	missionID string,
	input ShiftInput,
	rruleStr string,
) (*AddRecurringShiftsResult, error) {
	rule, err := rrule.StrToRRule(rruleStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rrule: %w", err)
	}

	shifts, err := addShifts(ctx, store, audit, logger, actor, missionID, input, rule)
	if err != nil {
		return nil, err
	}
	return &AddRecurringShiftsResult{Shifts: shifts}, nil
}

func addShifts(
	ctx context.Context,
	store ShiftStore,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	missionID string,
	input ShiftInput,
	rule *rrule.RRule,
) ([]*model.Shift, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	mission, err := store.GetMission(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}
	if mission.Status != model.MissionDraft && mission.Status != model.MissionOpen {
		return nil, &model.InvalidTransitionError{
			Entity: "mission",
			From:   string(mission.Status),
			To:     string(mission.Status),
			Reason: "shifts can only be added while the mission is DRAFT or OPEN",
		}
	}

	if !input.EndTime.After(input.StartTime) {
		return nil, fmt.Errorf("shift end time must be after start time")
	}
	if input.MinVolunteers < 0 || input.MaxVolunteers < 1 {
		return nil, fmt.Errorf("volunteer bounds must be positive")
	}
	if input.MinVolunteers > input.MaxVolunteers {
		return nil, fmt.Errorf("min volunteers (%d) exceeds max volunteers (%d)", input.MinVolunteers, input.MaxVolunteers)
	}

	if len(input.RequiredSkills) > 0 {
		skills, err := store.GetSkills(ctx, input.RequiredSkills)
		if err != nil {
			return nil, fmt.Errorf("skill lookup failed: %w", err)
		}
		if len(skills) != len(input.RequiredSkills) {
			return nil, fmt.Errorf("unknown skill id: %w", model.ErrNotFound)
		}
	}

	starts := []time.Time{input.StartTime}
	if rule != nil {
		rule.DTStart(input.StartTime)
		starts = rule.Between(input.StartTime, mission.EndTime, true)
		if len(starts) == 0 {
			return nil, fmt.Errorf("recurrence rule yields no occurrences inside the mission window")
		}
	}

	duration := input.EndTime.Sub(input.StartTime)
	shifts := make([]*model.Shift, 0, len(starts))
	for _, start := range starts {
		shifts = append(shifts, &model.Shift{
			ID:             uuid.New().String(),
			MissionID:      missionID,
			StartTime:      start,
			EndTime:        start.Add(duration),
			MinVolunteers:  input.MinVolunteers,
			MaxVolunteers:  input.MaxVolunteers,
			RequiredSkills: input.RequiredSkills,
			Notes:          input.Notes,
		})
	}

	if err := store.InsertShifts(ctx, shifts); err != nil {
		return nil, fmt.Errorf("failed to insert shifts: %w", err)
	}

	logger.Info("shifts added",
		zap.String("mission_id", missionID),
		zap.Int("count", len(shifts)))
	for _, s := range shifts {
		recordAudit(ctx, audit, logger, actor, "shift.add", "shift", s.ID, "")
	}

	return shifts, nil
}

// DeleteShiftResult reports a shift deletion and its cascade.
type DeleteShiftResult struct {
	ShiftID          string
	CanceledRequests []model.ParticipationRequest
}

// DeleteShift removes a shift, force-canceling its open requests and
// notifying each affected volunteer. Admin only.
func DeleteShift(
	ctx context.Context,
	store ShiftStore,
	notifier Notifier,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	shiftID string,
) (*DeleteShiftResult, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}

	canceled, err := store.DeleteShiftCascade(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete shift: %w", err)
	}

	logger.Info("shift deleted",
		zap.String("shift_id", shiftID),
		zap.Int("canceled_requests", len(canceled)))
	recordAudit(ctx, audit, logger, actor, "shift.delete", "shift", shiftID, "")

	when := shift.StartTime.Format("2006-01-02 15:04")
	for _, req := range canceled {
		transitionsMetric.WithLabelValues("request", string(model.RequestCanceledByAdmin)).Inc()
		notify(ctx, notifier, logger, req.VolunteerID, "shift.deleted",
			"Shift canceled",
			fmt.Sprintf("The shift on %s was removed and your participation request has been canceled.", when))
	}

	return &DeleteShiftResult{ShiftID: shiftID, CanceledRequests: canceled}, nil
}

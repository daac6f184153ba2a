package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
	"github.com/volunhub/volunhub/pkg/core/points"
)

// AttendanceStore defines the database operations needed for attendance and
// points. RecordAttendance and RetractAttendance must be atomic: the ledger
// append and the total_points update happen in one transaction, with the
// request row locked while the correction delta is computed.
type AttendanceStore interface {
	GetRequest(ctx context.Context, id string) (*model.ParticipationRequest, error)
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	GetMission(ctx context.Context, id string) (*model.Mission, error)
	// RecordAttendance marks the request attended with the given hours and
	// brings the request's granted points to totalPoints by appending one
	// signed delta entry (revision = prior max + 1). Returns the appended
	// entry; its Points field is the delta, which is zero-valued when the
	// grant was already correct.
	RecordAttendance(ctx context.Context, requestID string, hours float64, totalPoints int, reason model.LedgerReason) (*model.PointsLedgerEntry, error)
	// RetractAttendance clears the attended flag and appends an entry
	// negating everything granted for the request so far.
	RetractAttendance(ctx context.Context, requestID string) (*model.PointsLedgerEntry, error)
}

// AttendanceResult reports a recorded attendance.
type AttendanceResult struct {
	Request        *model.ParticipationRequest
	EffectiveHours float64
	Points         int
	// Delta is the signed ledger movement this call produced. On a re-mark
	// it is the net correction, not a second full grant.
	Delta int
}

// MarkAttended records that the volunteer worked the shift and grants the
// earned points. Re-invoking with different hours retracts the prior grant
// by appending a net correction entry, so the user's total always equals
// the ledger sum.
func MarkAttended(
	ctx context.Context,
	store AttendanceStore,
	calc *points.Calculator,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	requestID string,
	actualHours *float64,
) (*AttendanceResult, error) {
	if !actor.Role.CanDecide() {
		return nil, model.ErrForbidden
	}

	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if req.Status != model.RequestApproved {
		return nil, fmt.Errorf("request is %s: %w", req.Status, model.ErrNotApproved)
	}

	shift, err := store.GetShift(ctx, req.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	mission, err := store.GetMission(ctx, shift.MissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}

	hours := points.EffectiveHours(shift, actualHours)
	earned := calc.Calculate(shift, mission.Type, hours)

	reason := model.ReasonAttendance
	if req.Attended {
		reason = model.ReasonAttendanceCorrection
	}

	entry, err := store.RecordAttendance(ctx, requestID, hours, earned, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}

	req.Attended = true
	req.ActualHours = &hours

	logger.Info("attendance recorded",
		zap.String("request_id", requestID),
		zap.Float64("hours", hours),
		zap.Int("points", earned),
		zap.Int("delta", entry.Points))
	observePointsDelta(entry.Points)
	recordAudit(ctx, audit, logger, actor, "attendance.mark", "participation_request", requestID,
		fmt.Sprintf("hours=%.2f points=%d", hours, earned))

	return &AttendanceResult{
		Request:        req,
		EffectiveHours: hours,
		Points:         earned,
		Delta:          entry.Points,
	}, nil
}

// RetractAttendance undoes a recorded attendance, appending a ledger entry
// that negates the prior grant.
func RetractAttendance(
	ctx context.Context,
	store AttendanceStore,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	requestID string,
) (*AttendanceResult, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if !req.Attended {
		return nil, fmt.Errorf("no attendance recorded: %w", model.ErrNotApproved)
	}

	entry, err := store.RetractAttendance(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to retract attendance: %w", err)
	}

	req.Attended = false
	req.ActualHours = nil

	logger.Info("attendance retracted",
		zap.String("request_id", requestID),
		zap.Int("delta", entry.Points))
	observePointsDelta(entry.Points)
	recordAudit(ctx, audit, logger, actor, "attendance.retract", "participation_request", requestID, "")

	return &AttendanceResult{Request: req, Delta: entry.Points}, nil
}

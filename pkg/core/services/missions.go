package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// MissionStore defines the database operations needed for mission lifecycle
// management.
type MissionStore interface {
	GetMission(ctx context.Context, id string) (*model.Mission, error)
	InsertMission(ctx context.Context, mission *model.Mission) error
	// UpdateMissionStatus performs an optimistic transition: the row is
	// only written if it is still in the expected prior status. Returns
	// false when another caller got there first.
	UpdateMissionStatus(ctx context.Context, id string, from, to model.MissionStatus) (bool, error)
	GetDepartment(ctx context.Context, id string) (*model.Department, error)
	// CountMissingAttendance returns how many APPROVED requests across the
	// mission's shifts have no attendance recorded yet.
	CountMissingAttendance(ctx context.Context, missionID string) (int, error)
	// CancelActiveMissionRequests transitions every PENDING/APPROVED
	// request on the mission's shifts to CANCELED_BY_ADMIN, releasing
	// approved slots, and returns the affected requests.
	CancelActiveMissionRequests(ctx context.Context, missionID string) ([]model.ParticipationRequest, error)
}

// CreateMissionInput carries the fields for a new mission.
type CreateMissionInput struct {
	Title        string
	DepartmentID string
	Type         string
	StartTime    time.Time
	EndTime      time.Time
}

// CreateMission creates a mission in DRAFT. Admin only.
func CreateMission(
	ctx context.Context,
	store MissionStore,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	input CreateMissionInput,
) (*model.Mission, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}
	if input.Title == "" {
		return nil, fmt.Errorf("mission title must not be empty")
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, fmt.Errorf("mission end time must be after start time")
	}

	if input.DepartmentID != "" {
		if _, err := store.GetDepartment(ctx, input.DepartmentID); err != nil {
			return nil, fmt.Errorf("department lookup failed: %w", err)
		}
	}

	mission := &model.Mission{
		ID:           uuid.New().String(),
		Title:        input.Title,
		DepartmentID: input.DepartmentID,
		Type:         input.Type,
		Status:       model.MissionDraft,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		CreatedBy:    actor.ID,
		CreatedAt:    time.Now().UTC(),
	}

	if err := store.InsertMission(ctx, mission); err != nil {
		return nil, fmt.Errorf("failed to insert mission: %w", err)
	}

	logger.Info("mission created",
		zap.String("mission_id", mission.ID),
		zap.String("title", mission.Title))
	transitionsMetric.WithLabelValues("mission", string(model.MissionDraft)).Inc()
	recordAudit(ctx, audit, logger, actor, "mission.create", "mission", mission.ID, mission.Title)

	return mission, nil
}

// OpenMission moves a DRAFT mission to OPEN, making its shifts visible for
// applications.
func OpenMission(ctx context.Context, store MissionStore, audit AuditLog, logger *zap.Logger, actor model.Actor, missionID string) (*model.Mission, error) {
	return transitionMission(ctx, store, audit, logger, actor, missionID, model.MissionOpen, nil)
}

// CloseMission moves an OPEN mission to CLOSED. New applications are refused
// afterwards; already-pending requests remain decidable.
func CloseMission(ctx context.Context, store MissionStore, audit AuditLog, logger *zap.Logger, actor model.Actor, missionID string) (*model.Mission, error) {
	return transitionMission(ctx, store, audit, logger, actor, missionID, model.MissionClosed, nil)
}

// CompleteMission finalizes a CLOSED mission. When requireAttendance is set,
// every APPROVED request must have attendance recorded first.
func CompleteMission(
	ctx context.Context,
	store MissionStore,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	missionID string,
	requireAttendance bool,
) (*model.Mission, error) {
	var precondition func(*model.Mission) error
	if requireAttendance {
		precondition = func(m *model.Mission) error {
			missing, err := store.CountMissingAttendance(ctx, m.ID)
			if err != nil {
				return fmt.Errorf("failed to count missing attendance: %w", err)
			}
			if missing > 0 {
				return &model.InvalidTransitionError{
					Entity: "mission",
					From:   string(m.Status),
					To:     string(model.MissionCompleted),
					Reason: fmt.Sprintf("%d approved requests have no attendance recorded", missing),
				}
			}
			return nil
		}
	}
	return transitionMission(ctx, store, audit, logger, actor, missionID, model.MissionCompleted, precondition)
}

// CancelMissionResult reports a cancellation and its cascade.
type CancelMissionResult struct {
	Mission          *model.Mission
	CanceledRequests []model.ParticipationRequest
}

// CancelMission cancels a non-terminal mission and force-cancels every open
// request on its shifts, notifying each affected volunteer once.
func CancelMission(
	ctx context.Context,
	store MissionStore,
	notifier Notifier,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	missionID string,
) (*CancelMissionResult, error) {
	mission, err := transitionMission(ctx, store, audit, logger, actor, missionID, model.MissionCanceled, nil)
	if err != nil {
		return nil, err
	}

	canceled, err := store.CancelActiveMissionRequests(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel mission requests: %w", err)
	}

	logger.Info("mission canceled",
		zap.String("mission_id", missionID),
		zap.Int("canceled_requests", len(canceled)))

	notified := make(map[string]bool, len(canceled))
	for _, req := range canceled {
		if notified[req.VolunteerID] {
			continue
		}
		notified[req.VolunteerID] = true
		notify(ctx, notifier, logger, req.VolunteerID, "mission.canceled",
			fmt.Sprintf("Mission canceled: %s", mission.Title),
			fmt.Sprintf("The mission %q has been canceled and your participation request was withdrawn.", mission.Title))
	}

	return &CancelMissionResult{Mission: mission, CanceledRequests: canceled}, nil
}

// transitionMission runs the shared validate-then-commit flow for mission
// lifecycle moves. The precondition, when present, is checked after the
// transition table but before the write.
func transitionMission(
	ctx context.Context,
	store MissionStore,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	missionID string,
	to model.MissionStatus,
	precondition func(*model.Mission) error,
) (*model.Mission, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	mission, err := store.GetMission(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}

	if !mission.Status.CanTransition(to) {
		return nil, model.NewInvalidTransition("mission", mission.Status, to)
	}
	if precondition != nil {
		if err := precondition(mission); err != nil {
			return nil, err
		}
	}

	updated, err := store.UpdateMissionStatus(ctx, missionID, mission.Status, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update mission status: %w", err)
	}
	if !updated {
		// Another caller transitioned the mission first.
		current, err := store.GetMission(ctx, missionID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload mission: %w", err)
		}
		return nil, model.NewInvalidTransition("mission", current.Status, to)
	}

	mission.Status = to
	logger.Info("mission transitioned",
		zap.String("mission_id", missionID),
		zap.String("to", string(to)))
	transitionsMetric.WithLabelValues("mission", string(to)).Inc()
	recordAudit(ctx, audit, logger, actor, "mission."+transitionAction(to), "mission", missionID, "")

	return mission, nil
}

func transitionAction(to model.MissionStatus) string {
	switch to {
	case model.MissionOpen:
		return "open"
	case model.MissionClosed:
		return "close"
	case model.MissionCompleted:
		return "complete"
	case model.MissionCanceled:
		return "cancel"
	}
	return "transition"
}

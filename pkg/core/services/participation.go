package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// RequestDecision carries the audit fields written alongside a request
// status change.
type RequestDecision struct {
	DecidedBy       string
	DecidedAt       time.Time
	RejectionReason string
	// ReleaseSlot decrements the shift's approved count in the same
	// transaction, for moves out of APPROVED.
	ReleaseSlot bool
}

// ParticipationStore defines the database operations needed for the
// participation request lifecycle. Implementations must make ApproveRequest
// and InsertApprovedRequest atomic against concurrent callers: the capacity
// check and the count increment are one conditional write, never a separate
// read-then-write.
type ParticipationStore interface {
	GetMission(ctx context.Context, id string) (*model.Mission, error)
	GetShift(ctx context.Context, id string) (*model.Shift, error)
	GetRequest(ctx context.Context, id string) (*model.ParticipationRequest, error)
	// InsertRequest inserts a PENDING request. Returns
	// model.ErrDuplicateApplication when the volunteer already holds an
	// active request for the shift.
	InsertRequest(ctx context.Context, req *model.ParticipationRequest) error
	// ApproveRequest transitions PENDING -> APPROVED and increments the
	// shift's approved count in one transaction. Returns
	// model.ErrCapacityExceeded when the shift is full, and false when the
	// request was no longer PENDING.
	ApproveRequest(ctx context.Context, requestID, decidedBy string, decidedAt time.Time) (bool, error)
	// InsertApprovedRequest inserts a request directly as APPROVED through
	// the same capacity guard and uniqueness check.
	InsertApprovedRequest(ctx context.Context, req *model.ParticipationRequest) error
	// TransitionRequest performs an optimistic status move: the row is only
	// written if it is still in the expected prior status.
	TransitionRequest(ctx context.Context, requestID string, from, to model.RequestStatus, d RequestDecision) (bool, error)
}

// Apply files a volunteer's own application for a shift, creating a PENDING
// request. The mission must be OPEN and the shift must not have started.
func Apply(
	ctx context.Context,
	store ParticipationStore,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	shiftID string,
	notes string,
) (*model.ParticipationRequest, error) {
	if actor.Role != model.RoleVolunteer {
		return nil, model.ErrForbidden
	}

	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	mission, err := store.GetMission(ctx, shift.MissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}

	if mission.Status != model.MissionOpen {
		return nil, fmt.Errorf("mission is %s: %w", mission.Status, model.ErrWindowClosed)
	}
	if !shift.StartTime.After(time.Now()) {
		return nil, fmt.Errorf("shift already started: %w", model.ErrWindowClosed)
	}

	req := &model.ParticipationRequest{
		ID:          uuid.New().String(),
		ShiftID:     shiftID,
		VolunteerID: actor.ID,
		Status:      model.RequestPending,
		Notes:       notes,
		CreatedAt:   time.Now().UTC(),
	}

	if err := store.InsertRequest(ctx, req); err != nil {
		return nil, err
	}

	logger.Info("application filed",
		zap.String("request_id", req.ID),
		zap.String("shift_id", shiftID),
		zap.String("volunteer_id", actor.ID))
	transitionsMetric.WithLabelValues("request", string(model.RequestPending)).Inc()
	recordAudit(ctx, audit, logger, actor, "request.apply", "participation_request", req.ID, shiftID)

	return req, nil
}

// Approve decides a PENDING request in the volunteer's favor. The capacity
// guard runs inside the store transaction; a full shift fails with
// ErrCapacityExceeded and a request another admin already decided fails with
// an invalid transition.
func Approve(
	ctx context.Context,
	store ParticipationStore,
	notifier Notifier,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	requestID string,
) (*model.ParticipationRequest, error) {
	if !actor.Role.CanDecide() {
		return nil, model.ErrForbidden
	}

	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if !req.Status.CanTransition(model.RequestApproved) {
		return nil, model.NewInvalidTransition("request", req.Status, model.RequestApproved)
	}

	decidedAt := time.Now().UTC()
	ok, err := store.ApproveRequest(ctx, requestID, actor.ID, decidedAt)
	if err != nil {
		if errors.Is(err, model.ErrCapacityExceeded) {
			capacityRejectionsMetric.Inc()
		}
		return nil, err
	}
	if !ok {
		current, err := store.GetRequest(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload request: %w", err)
		}
		return nil, model.NewInvalidTransition("request", current.Status, model.RequestApproved)
	}

	req.Status = model.RequestApproved
	req.DecidedBy = actor.ID
	req.DecidedAt = &decidedAt

	logger.Info("request approved",
		zap.String("request_id", requestID),
		zap.String("decided_by", actor.ID))
	transitionsMetric.WithLabelValues("request", string(model.RequestApproved)).Inc()
	recordAudit(ctx, audit, logger, actor, "request.approve", "participation_request", requestID, "")
	notify(ctx, notifier, logger, req.VolunteerID, "request.approved",
		"Application approved",
		"Your application has been approved. See you at the shift!")

	return req, nil
}

// AddVolunteer is the admin shortcut that enrolls a volunteer directly as
// APPROVED. It goes through the same capacity guard and uniqueness check as
// a regular approval.
func AddVolunteer(
	ctx context.Context,
	store ParticipationStore,
	notifier Notifier,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	shiftID, volunteerID string,
) (*model.ParticipationRequest, error) {
	if actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	shift, err := store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift: %w", err)
	}
	mission, err := store.GetMission(ctx, shift.MissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission: %w", err)
	}
	if mission.Status.Terminal() {
		return nil, fmt.Errorf("mission is %s: %w", mission.Status, model.ErrWindowClosed)
	}

	decidedAt := time.Now().UTC()
	req := &model.ParticipationRequest{
		ID:          uuid.New().String(),
		ShiftID:     shiftID,
		VolunteerID: volunteerID,
		Status:      model.RequestApproved,
		DecidedBy:   actor.ID,
		DecidedAt:   &decidedAt,
		CreatedAt:   decidedAt,
	}

	if err := store.InsertApprovedRequest(ctx, req); err != nil {
		if errors.Is(err, model.ErrCapacityExceeded) {
			capacityRejectionsMetric.Inc()
		}
		return nil, err
	}

	logger.Info("volunteer added directly",
		zap.String("request_id", req.ID),
		zap.String("shift_id", shiftID),
		zap.String("volunteer_id", volunteerID))
	transitionsMetric.WithLabelValues("request", string(model.RequestApproved)).Inc()
	recordAudit(ctx, audit, logger, actor, "request.add_volunteer", "participation_request", req.ID, shiftID)
	notify(ctx, notifier, logger, volunteerID, "request.approved",
		"You have been added to a shift",
		"An organizer added you to a shift as an approved volunteer.")

	return req, nil
}

// Reject declines a request. Shift leaders may reject PENDING requests;
// revoking an APPROVED request (which releases its slot) is admin only.
func Reject(
	ctx context.Context,
	store ParticipationStore,
	notifier Notifier,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	requestID string,
	reason string,
) (*model.ParticipationRequest, error) {
	if !actor.Role.CanDecide() {
		return nil, model.ErrForbidden
	}

	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	if !req.Status.CanTransition(model.RequestRejected) {
		return nil, model.NewInvalidTransition("request", req.Status, model.RequestRejected)
	}
	if req.Status == model.RequestApproved && actor.Role != model.RoleAdmin {
		return nil, model.ErrForbidden
	}

	decidedAt := time.Now().UTC()
	ok, err := store.TransitionRequest(ctx, requestID, req.Status, model.RequestRejected, RequestDecision{
		DecidedBy:       actor.ID,
		DecidedAt:       decidedAt,
		RejectionReason: reason,
		ReleaseSlot:     req.Status == model.RequestApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	if !ok {
		current, err := store.GetRequest(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload request: %w", err)
		}
		return nil, model.NewInvalidTransition("request", current.Status, model.RequestRejected)
	}

	req.Status = model.RequestRejected
	req.DecidedBy = actor.ID
	req.DecidedAt = &decidedAt
	req.RejectionReason = reason

	logger.Info("request rejected",
		zap.String("request_id", requestID),
		zap.String("decided_by", actor.ID))
	transitionsMetric.WithLabelValues("request", string(model.RequestRejected)).Inc()
	recordAudit(ctx, audit, logger, actor, "request.reject", "participation_request", requestID, reason)

	body := "Your application was not approved this time."
	if reason != "" {
		body = fmt.Sprintf("Your application was not approved: %s", reason)
	}
	notify(ctx, notifier, logger, req.VolunteerID, "request.rejected", "Application update", body)

	return req, nil
}

// CancelRequest withdraws a request. Volunteers may cancel their own PENDING
// requests; admins may cancel any non-terminal request, releasing the slot
// if it was APPROVED.
func CancelRequest(
	ctx context.Context,
	store ParticipationStore,
	notifier Notifier,
	audit AuditLog,
	logger *zap.Logger,
	actor model.Actor,
	requestID string,
) (*model.ParticipationRequest, error) {
	req, err := store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	var to model.RequestStatus
	switch {
	case actor.Role == model.RoleAdmin:
		to = model.RequestCanceledByAdmin
	case actor.ID == req.VolunteerID:
		to = model.RequestCanceledByUser
	default:
		return nil, model.ErrForbidden
	}

	if !req.Status.CanTransition(to) {
		return nil, model.NewInvalidTransition("request", req.Status, to)
	}

	ok, err := store.TransitionRequest(ctx, requestID, req.Status, to, RequestDecision{
		ReleaseSlot: req.Status == model.RequestApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel request: %w", err)
	}
	if !ok {
		current, err := store.GetRequest(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload request: %w", err)
		}
		return nil, model.NewInvalidTransition("request", current.Status, to)
	}

	req.Status = to
	req.DecidedBy = ""
	req.DecidedAt = nil

	logger.Info("request canceled",
		zap.String("request_id", requestID),
		zap.String("by", string(actor.Role)))
	transitionsMetric.WithLabelValues("request", string(to)).Inc()
	recordAudit(ctx, audit, logger, actor, "request.cancel", "participation_request", requestID, "")

	if to == model.RequestCanceledByAdmin {
		notify(ctx, notifier, logger, req.VolunteerID, "request.canceled",
			"Participation canceled",
			"An organizer canceled your participation request.")
	}

	return req, nil
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
)

// mockParticipationStore mirrors the store contract in memory, including the
// atomic capacity guard, so concurrency behavior can be exercised without a
// database.
type mockParticipationStore struct {
	mu       sync.Mutex
	missions map[string]*model.Mission
	shifts   map[string]*model.Shift
	requests map[string]*model.ParticipationRequest
}

func newMockParticipationStore() *mockParticipationStore {
	return &mockParticipationStore{
		missions: make(map[string]*model.Mission),
		shifts:   make(map[string]*model.Shift),
		requests: make(map[string]*model.ParticipationRequest),
	}
}

func (m *mockParticipationStore) GetMission(ctx context.Context, id string) (*model.Mission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mission, ok := m.missions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *mission
	return &copied, nil
}

func (m *mockParticipationStore) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shift, ok := m.shifts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *shift
	return &copied, nil
}

func (m *mockParticipationStore) GetRequest(ctx context.Context, id string) (*model.ParticipationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *mockParticipationStore) hasActiveRequest(shiftID, volunteerID string) bool {
	for _, r := range m.requests {
		if r.ShiftID == shiftID && r.VolunteerID == volunteerID && r.Status.Active() {
			return true
		}
	}
	return false
}

func (m *mockParticipationStore) InsertRequest(ctx context.Context, req *model.ParticipationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasActiveRequest(req.ShiftID, req.VolunteerID) {
		return model.ErrDuplicateApplication
	}
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *mockParticipationStore) ApproveRequest(ctx context.Context, requestID, decidedBy string, decidedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return false, model.ErrNotFound
	}
	if req.Status != model.RequestPending {
		return false, nil
	}
	shift := m.shifts[req.ShiftID]
	if shift.ApprovedCount >= shift.MaxVolunteers {
		return false, model.ErrCapacityExceeded
	}
	shift.ApprovedCount++
	req.Status = model.RequestApproved
	req.DecidedBy = decidedBy
	req.DecidedAt = &decidedAt
	return true, nil
}

func (m *mockParticipationStore) InsertApprovedRequest(ctx context.Context, req *model.ParticipationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasActiveRequest(req.ShiftID, req.VolunteerID) {
		return model.ErrDuplicateApplication
	}
	shift := m.shifts[req.ShiftID]
	if shift.ApprovedCount >= shift.MaxVolunteers {
		return model.ErrCapacityExceeded
	}
	shift.ApprovedCount++
	copied := *req
	m.requests[req.ID] = &copied
	return nil
}

func (m *mockParticipationStore) TransitionRequest(ctx context.Context, requestID string, from, to model.RequestStatus, d RequestDecision) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return false, model.ErrNotFound
	}
	if req.Status != from {
		return false, nil
	}
	req.Status = to
	if d.DecidedBy != "" {
		req.DecidedBy = d.DecidedBy
		req.DecidedAt = &d.DecidedAt
	} else {
		req.DecidedBy = ""
		req.DecidedAt = nil
	}
	if d.RejectionReason != "" {
		req.RejectionReason = d.RejectionReason
	}
	if d.ReleaseSlot {
		m.shifts[req.ShiftID].ApprovedCount--
	}
	return true, nil
}

// seed creates an OPEN mission with one future shift.
func (m *mockParticipationStore) seed(maxVolunteers int) (missionID, shiftID string) {
	mission := &model.Mission{
		ID:     "m-1",
		Title:  "Flood relief",
		Status: model.MissionOpen,
	}
	shift := &model.Shift{
		ID:            "s-1",
		MissionID:     "m-1",
		StartTime:     time.Now().Add(24 * time.Hour),
		EndTime:       time.Now().Add(28 * time.Hour),
		MaxVolunteers: maxVolunteers,
	}
	m.missions[mission.ID] = mission
	m.shifts[shift.ID] = shift
	return mission.ID, shift.ID
}

func shiftLeader() model.Actor { return model.Actor{ID: "lead-1", Role: model.RoleShiftLeader} }

func TestApply(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)

	req, err := Apply(context.Background(), store, nil, zap.NewNop(), volunteer(), shiftID, "happy to help")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, "vol-1", req.VolunteerID)
	assert.Equal(t, "happy to help", req.Notes)
	assert.Empty(t, req.DecidedBy)
	assert.Nil(t, req.DecidedAt)
}

func TestApply_Duplicate(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	_, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)

	_, err = Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	assert.ErrorIs(t, err, model.ErrDuplicateApplication)
}

func TestApply_WindowClosed(t *testing.T) {
	ctx := context.Background()

	t.Run("mission not open", func(t *testing.T) {
		for _, status := range []model.MissionStatus{model.MissionDraft, model.MissionClosed, model.MissionCompleted, model.MissionCanceled} {
			store := newMockParticipationStore()
			_, shiftID := store.seed(5)
			store.missions["m-1"].Status = status

			_, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
			assert.ErrorIs(t, err, model.ErrWindowClosed, "status %s", status)
		}
	})

	t.Run("shift already started", func(t *testing.T) {
		store := newMockParticipationStore()
		_, shiftID := store.seed(5)
		store.shifts[shiftID].StartTime = time.Now().Add(-time.Hour)

		_, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
		assert.ErrorIs(t, err, model.ErrWindowClosed)
	})
}

func TestApply_Forbidden(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)

	_, err := Apply(context.Background(), store, nil, zap.NewNop(), admin(), shiftID, "")
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestApprove(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)

	notifier := &mockNotifier{}
	approved, err := Approve(ctx, store, notifier, nil, zap.NewNop(), shiftLeader(), req.ID)
	require.NoError(t, err)

	assert.Equal(t, model.RequestApproved, approved.Status)
	assert.Equal(t, "lead-1", approved.DecidedBy)
	assert.NotNil(t, approved.DecidedAt)
	assert.Equal(t, 1, store.shifts[shiftID].ApprovedCount)
	assert.Equal(t, 1, notifier.sentTo("vol-1"))
}

func TestApprove_CapacityExceeded(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(1)
	ctx := context.Background()

	first, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)
	second, err := Apply(ctx, store, nil, zap.NewNop(), model.Actor{ID: "vol-2", Role: model.RoleVolunteer}, shiftID, "")
	require.NoError(t, err)

	_, err = Approve(ctx, store, nil, nil, zap.NewNop(), admin(), first.ID)
	require.NoError(t, err)

	_, err = Approve(ctx, store, nil, nil, zap.NewNop(), admin(), second.ID)
	assert.ErrorIs(t, err, model.ErrCapacityExceeded)

	// The loser is still PENDING and decidable once a slot frees up.
	reloaded, err := store.GetRequest(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, reloaded.Status)
}

func TestApprove_ConcurrentSingleSlot(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(1)
	ctx := context.Background()

	first, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)
	second, err := Apply(ctx, store, nil, zap.NewNop(), model.Actor{ID: "vol-2", Role: model.RoleVolunteer}, shiftID, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, requestID string) {
			defer wg.Done()
			_, errs[i] = Approve(ctx, store, nil, nil, zap.NewNop(), admin(), requestID)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	capacity := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, model.ErrCapacityExceeded):
			capacity++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one approval must win")
	assert.Equal(t, 1, capacity, "the other must fail on capacity")
	assert.Equal(t, 1, store.shifts[shiftID].ApprovedCount)
}

func TestApprove_AlreadyDecided(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)
	_, err = Reject(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID, "")
	require.NoError(t, err)

	_, err = Approve(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID)
	var ite *model.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, string(model.RequestRejected), ite.From)
}

func TestApprove_Forbidden(t *testing.T) {
	store := newMockParticipationStore()
	_, err := Approve(context.Background(), store, nil, nil, zap.NewNop(), volunteer(), "r-1")
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestAddVolunteer(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(1)
	ctx := context.Background()

	notifier := &mockNotifier{}
	req, err := AddVolunteer(ctx, store, notifier, nil, zap.NewNop(), admin(), shiftID, "vol-9")
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, req.Status)
	assert.Equal(t, "admin-1", req.DecidedBy)
	assert.Equal(t, 1, store.shifts[shiftID].ApprovedCount)
	assert.Equal(t, 1, notifier.sentTo("vol-9"))

	// The manual path honors the same capacity guard.
	_, err = AddVolunteer(ctx, store, nil, nil, zap.NewNop(), admin(), shiftID, "vol-10")
	assert.ErrorIs(t, err, model.ErrCapacityExceeded)
}

func TestAddVolunteer_ShiftLeaderForbidden(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(1)

	_, err := AddVolunteer(context.Background(), store, nil, nil, zap.NewNop(), shiftLeader(), shiftID, "vol-9")
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestReject_WithReason(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)

	notifier := &mockNotifier{}
	rejected, err := Reject(ctx, store, notifier, nil, zap.NewNop(), shiftLeader(), req.ID, "shift overstaffed")
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, rejected.Status)
	assert.Equal(t, "shift overstaffed", rejected.RejectionReason)

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].Body, "shift overstaffed")
}

func TestReject_ApprovedReleasesSlot(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(1)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)
	_, err = Approve(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID)
	require.NoError(t, err)
	require.Equal(t, 1, store.shifts[shiftID].ApprovedCount)

	// Revoking an approval is admin only.
	_, err = Reject(ctx, store, nil, nil, zap.NewNop(), shiftLeader(), req.ID, "")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = Reject(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, store.shifts[shiftID].ApprovedCount)
}

func TestCancelRequest_ByOwner(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)

	canceled, err := CancelRequest(ctx, store, nil, nil, zap.NewNop(), volunteer(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestCanceledByUser, canceled.Status)
}

func TestCancelRequest_OtherVolunteerForbidden(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)

	other := model.Actor{ID: "vol-2", Role: model.RoleVolunteer}
	_, err = CancelRequest(ctx, store, nil, nil, zap.NewNop(), other, req.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestCancelRequest_OwnerCannotCancelApproved(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)
	_, err = Approve(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID)
	require.NoError(t, err)

	_, err = CancelRequest(ctx, store, nil, nil, zap.NewNop(), volunteer(), req.ID)
	var ite *model.InvalidTransitionError
	assert.ErrorAs(t, err, &ite)
}

func TestCancelRequest_ByAdminReleasesSlotAndNotifies(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(1)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)
	_, err = Approve(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID)
	require.NoError(t, err)

	notifier := &mockNotifier{}
	canceled, err := CancelRequest(ctx, store, notifier, nil, zap.NewNop(), admin(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestCanceledByAdmin, canceled.Status)
	assert.Equal(t, 0, store.shifts[shiftID].ApprovedCount)
	assert.Equal(t, 1, notifier.sentTo("vol-1"))
}

func TestCancelRequest_ByAdminClearsDecisionFields(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)
	_, err = Approve(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID)
	require.NoError(t, err)

	// Canceling an approval is not a decision: the decided fields belong
	// only to APPROVED and REJECTED requests.
	canceled, err := CancelRequest(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestCanceledByAdmin, canceled.Status)
	assert.Empty(t, canceled.DecidedBy)
	assert.Nil(t, canceled.DecidedAt)
}

func TestPendingRemainsDecidableAfterClose(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)

	// Mission closes: new applications refused, existing PENDING decidable.
	store.missions["m-1"].Status = model.MissionClosed

	_, err = Apply(ctx, store, nil, zap.NewNop(), model.Actor{ID: "vol-2", Role: model.RoleVolunteer}, shiftID, "")
	assert.ErrorIs(t, err, model.ErrWindowClosed)

	approved, err := Approve(ctx, store, nil, nil, zap.NewNop(), admin(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, approved.Status)
}

func TestNotificationFailureDoesNotFailApproval(t *testing.T) {
	store := newMockParticipationStore()
	_, shiftID := store.seed(5)
	ctx := context.Background()

	req, err := Apply(ctx, store, nil, zap.NewNop(), volunteer(), shiftID, "")
	require.NoError(t, err)

	notifier := &mockNotifier{fail: assert.AnError}
	approved, err := Approve(ctx, store, notifier, nil, zap.NewNop(), admin(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, approved.Status)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
	"github.com/volunhub/volunhub/pkg/core/points"
)

// mockAttendanceStore keeps a real signed ledger in memory so the
// total-equals-sum property can be checked across corrections.
type mockAttendanceStore struct {
	missions map[string]*model.Mission
	shifts   map[string]*model.Shift
	requests map[string]*model.ParticipationRequest
	ledger   []model.PointsLedgerEntry
	totals   map[string]int
}

func newMockAttendanceStore() *mockAttendanceStore {
	return &mockAttendanceStore{
		missions: make(map[string]*model.Mission),
		shifts:   make(map[string]*model.Shift),
		requests: make(map[string]*model.ParticipationRequest),
		totals:   make(map[string]int),
	}
}

func (m *mockAttendanceStore) GetMission(ctx context.Context, id string) (*model.Mission, error) {
	mission, ok := m.missions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return mission, nil
}

func (m *mockAttendanceStore) GetShift(ctx context.Context, id string) (*model.Shift, error) {
	shift, ok := m.shifts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return shift, nil
}

func (m *mockAttendanceStore) GetRequest(ctx context.Context, id string) (*model.ParticipationRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *mockAttendanceStore) grantedFor(requestID string) (sum, maxRevision int) {
	for _, e := range m.ledger {
		if e.RequestID == requestID {
			sum += e.Points
			if e.Revision > maxRevision {
				maxRevision = e.Revision
			}
		}
	}
	return sum, maxRevision
}

func (m *mockAttendanceStore) RecordAttendance(ctx context.Context, requestID string, hours float64, totalPoints int, reason model.LedgerReason) (*model.PointsLedgerEntry, error) {
	req := m.requests[requestID]
	prior, maxRev := m.grantedFor(requestID)

	entry := model.PointsLedgerEntry{
		ID:        uuid.New().String(),
		UserID:    req.VolunteerID,
		Points:    totalPoints - prior,
		Reason:    reason,
		RequestID: requestID,
		Revision:  maxRev + 1,
		CreatedAt: time.Now().UTC(),
	}
	m.ledger = append(m.ledger, entry)
	m.totals[req.VolunteerID] += entry.Points
	req.Attended = true
	req.ActualHours = &hours
	return &entry, nil
}

func (m *mockAttendanceStore) RetractAttendance(ctx context.Context, requestID string) (*model.PointsLedgerEntry, error) {
	req := m.requests[requestID]
	prior, maxRev := m.grantedFor(requestID)

	entry := model.PointsLedgerEntry{
		ID:        uuid.New().String(),
		UserID:    req.VolunteerID,
		Points:    -prior,
		Reason:    model.ReasonAttendanceRetraction,
		RequestID: requestID,
		Revision:  maxRev + 1,
		CreatedAt: time.Now().UTC(),
	}
	m.ledger = append(m.ledger, entry)
	m.totals[req.VolunteerID] += entry.Points
	req.Attended = false
	req.ActualHours = nil
	return &entry, nil
}

func (m *mockAttendanceStore) ledgerSum(userID string) int {
	sum := 0
	for _, e := range m.ledger {
		if e.UserID == userID {
			sum += e.Points
		}
	}
	return sum
}

// seedApproved sets up a medical mission with an approved request on a
// Saturday 23:00 - 02:00 shift.
func (m *mockAttendanceStore) seedApproved() string {
	start := time.Date(2025, 1, 4, 23, 0, 0, 0, time.UTC) // Saturday
	m.missions["m-1"] = &model.Mission{ID: "m-1", Type: "", Status: model.MissionClosed}
	m.shifts["s-1"] = &model.Shift{
		ID:        "s-1",
		MissionID: "m-1",
		StartTime: start,
		EndTime:   start.Add(3 * time.Hour),
	}
	decidedAt := time.Now().UTC()
	m.requests["r-1"] = &model.ParticipationRequest{
		ID:          "r-1",
		ShiftID:     "s-1",
		VolunteerID: "vol-1",
		Status:      model.RequestApproved,
		DecidedBy:   "admin-1",
		DecidedAt:   &decidedAt,
	}
	return "r-1"
}

func testCalculator() *points.Calculator {
	return points.NewCalculator(points.Rates{
		PerHour:           10,
		WeekendMultiplier: 1.5,
		NightMultiplier:   1.5,
	})
}

func TestMarkAttended_DefaultHours(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()

	result, err := MarkAttended(context.Background(), store, testCalculator(), nil, zap.NewNop(), admin(), reqID, nil)
	require.NoError(t, err)

	// 3 scheduled hours, weekend and night: 3 * 10 * 1.5 * 1.5 = 67.5 -> 68
	assert.InDelta(t, 3.0, result.EffectiveHours, 1e-9)
	assert.Equal(t, 68, result.Points)
	assert.Equal(t, 68, result.Delta)
	assert.True(t, result.Request.Attended)
	assert.Equal(t, 68, store.totals["vol-1"])
	assert.Equal(t, store.ledgerSum("vol-1"), store.totals["vol-1"])
}

func TestMarkAttended_ActualHoursOverride(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()

	hours := 2.0
	result, err := MarkAttended(context.Background(), store, testCalculator(), nil, zap.NewNop(), shiftLeader(), reqID, &hours)
	require.NoError(t, err)

	// 2 * 10 * 1.5 * 1.5 = 45
	assert.Equal(t, 45, result.Points)
	assert.InDelta(t, 2.0, *result.Request.ActualHours, 1e-9)
}

func TestMarkAttended_CorrectionNetsOut(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()
	ctx := context.Background()

	_, err := MarkAttended(ctx, store, testCalculator(), nil, zap.NewNop(), admin(), reqID, nil)
	require.NoError(t, err)
	require.Equal(t, 68, store.totals["vol-1"])

	// Correcting down to 2 actual hours must issue a net delta, not a
	// second full grant.
	hours := 2.0
	result, err := MarkAttended(ctx, store, testCalculator(), nil, zap.NewNop(), admin(), reqID, &hours)
	require.NoError(t, err)

	assert.Equal(t, 45, result.Points)
	assert.Equal(t, -23, result.Delta)
	assert.Equal(t, 45, store.totals["vol-1"])
	assert.Equal(t, store.ledgerSum("vol-1"), store.totals["vol-1"])
	assert.Len(t, store.ledger, 2)
	assert.Equal(t, model.ReasonAttendanceCorrection, store.ledger[1].Reason)
	assert.Equal(t, 2, store.ledger[1].Revision)
}

func TestMarkAttended_IdempotentWhenUnchanged(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()
	ctx := context.Background()

	_, err := MarkAttended(ctx, store, testCalculator(), nil, zap.NewNop(), admin(), reqID, nil)
	require.NoError(t, err)

	result, err := MarkAttended(ctx, store, testCalculator(), nil, zap.NewNop(), admin(), reqID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Delta)
	assert.Equal(t, 68, store.totals["vol-1"])
}

func TestMarkAttended_NotApproved(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()
	ctx := context.Background()

	for _, status := range []model.RequestStatus{model.RequestPending, model.RequestRejected, model.RequestCanceledByUser, model.RequestCanceledByAdmin} {
		store.requests[reqID].Status = status
		_, err := MarkAttended(ctx, store, testCalculator(), nil, zap.NewNop(), admin(), reqID, nil)
		assert.ErrorIs(t, err, model.ErrNotApproved, "status %s", status)
	}
}

func TestMarkAttended_Forbidden(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()

	_, err := MarkAttended(context.Background(), store, testCalculator(), nil, zap.NewNop(), volunteer(), reqID, nil)
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestRetractAttendance(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()
	ctx := context.Background()

	_, err := MarkAttended(ctx, store, testCalculator(), nil, zap.NewNop(), admin(), reqID, nil)
	require.NoError(t, err)
	require.Equal(t, 68, store.totals["vol-1"])

	result, err := RetractAttendance(ctx, store, nil, zap.NewNop(), admin(), reqID)
	require.NoError(t, err)
	assert.Equal(t, -68, result.Delta)
	assert.False(t, result.Request.Attended)
	assert.Equal(t, 0, store.totals["vol-1"])
	assert.Equal(t, store.ledgerSum("vol-1"), store.totals["vol-1"])
}

func TestRetractAttendance_RequiresRecordedAttendance(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()

	_, err := RetractAttendance(context.Background(), store, nil, zap.NewNop(), admin(), reqID)
	assert.Error(t, err)
}

func TestTotalsMatchLedgerAcrossSequences(t *testing.T) {
	store := newMockAttendanceStore()
	reqID := store.seedApproved()
	ctx := context.Background()
	calc := testCalculator()

	sequences := []*float64{nil, f(1.5), f(4), nil, f(0.5)}
	for _, h := range sequences {
		_, err := MarkAttended(ctx, store, calc, nil, zap.NewNop(), admin(), reqID, h)
		require.NoError(t, err)
		assert.Equal(t, store.ledgerSum("vol-1"), store.totals["vol-1"])
	}

	_, err := RetractAttendance(ctx, store, nil, zap.NewNop(), admin(), reqID)
	require.NoError(t, err)
	assert.Equal(t, 0, store.totals["vol-1"])
	assert.Equal(t, store.ledgerSum("vol-1"), store.totals["vol-1"])
}

func f(v float64) *float64 { return &v }

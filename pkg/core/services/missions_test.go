package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/volunhub/volunhub/pkg/core/model"
)

type mockMissionStore struct {
	missions          map[string]*model.Mission
	departments       map[string]*model.Department
	missingAttendance int
	cancelable        []model.ParticipationRequest
	updateErr         error
	// when set, UpdateMissionStatus reports a lost optimistic race
	staleUpdate bool
}

func newMockMissionStore(missions ...*model.Mission) *mockMissionStore {
	m := &mockMissionStore{
		missions:    make(map[string]*model.Mission),
		departments: map[string]*model.Department{"dep-1": {ID: "dep-1", Name: "Medical"}},
	}
	for _, mission := range missions {
		m.missions[mission.ID] = mission
	}
	return m
}

func (m *mockMissionStore) GetMission(ctx context.Context, id string) (*model.Mission, error) {
	mission, ok := m.missions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *mission
	return &copied, nil
}

func (m *mockMissionStore) InsertMission(ctx context.Context, mission *model.Mission) error {
	m.missions[mission.ID] = mission
	return nil
}

func (m *mockMissionStore) UpdateMissionStatus(ctx context.Context, id string, from, to model.MissionStatus) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	if m.staleUpdate {
		return false, nil
	}
	mission, ok := m.missions[id]
	if !ok || mission.Status != from {
		return false, nil
	}
	mission.Status = to
	return true, nil
}

func (m *mockMissionStore) GetDepartment(ctx context.Context, id string) (*model.Department, error) {
	dep, ok := m.departments[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return dep, nil
}

func (m *mockMissionStore) CountMissingAttendance(ctx context.Context, missionID string) (int, error) {
	return m.missingAttendance, nil
}

func (m *mockMissionStore) CancelActiveMissionRequests(ctx context.Context, missionID string) ([]model.ParticipationRequest, error) {
	return m.cancelable, nil
}

func admin() model.Actor     { return model.Actor{ID: "admin-1", Role: model.RoleAdmin} }
func volunteer() model.Actor { return model.Actor{ID: "vol-1", Role: model.RoleVolunteer} }

func draftMission(id string) *model.Mission {
	return &model.Mission{
		ID:        id,
		Title:     "Flood relief",
		Type:      "medical",
		Status:    model.MissionDraft,
		StartTime: time.Now().Add(24 * time.Hour),
		EndTime:   time.Now().Add(72 * time.Hour),
	}
}

func TestCreateMission(t *testing.T) {
	store := newMockMissionStore()
	logger := zap.NewNop()
	audit := &mockAudit{}

	input := CreateMissionInput{
		Title:        "Flood relief",
		DepartmentID: "dep-1",
		Type:         "medical",
		StartTime:    time.Now().Add(24 * time.Hour),
		EndTime:      time.Now().Add(72 * time.Hour),
	}

	mission, err := CreateMission(context.Background(), store, audit, logger, admin(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, mission.ID)
	assert.Equal(t, model.MissionDraft, mission.Status)
	assert.Equal(t, "admin-1", mission.CreatedBy)

	assert.Len(t, audit.records, 1)
	assert.Equal(t, "mission.create", audit.records[0].Action)
}

func TestCreateMission_Forbidden(t *testing.T) {
	store := newMockMissionStore()
	_, err := CreateMission(context.Background(), store, nil, zap.NewNop(), volunteer(), CreateMissionInput{})
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestCreateMission_UnknownDepartment(t *testing.T) {
	store := newMockMissionStore()
	input := CreateMissionInput{
		Title:        "Flood relief",
		DepartmentID: "dep-missing",
		StartTime:    time.Now(),
		EndTime:      time.Now().Add(time.Hour),
	}
	_, err := CreateMission(context.Background(), store, nil, zap.NewNop(), admin(), input)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestMissionLifecycle_HappyPath(t *testing.T) {
	store := newMockMissionStore(draftMission("m-1"))
	logger := zap.NewNop()
	ctx := context.Background()

	mission, err := OpenMission(ctx, store, nil, logger, admin(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, model.MissionOpen, mission.Status)

	mission, err = CloseMission(ctx, store, nil, logger, admin(), "m-1")
	require.NoError(t, err)
	assert.Equal(t, model.MissionClosed, mission.Status)

	mission, err = CompleteMission(ctx, store, nil, logger, admin(), "m-1", false)
	require.NoError(t, err)
	assert.Equal(t, model.MissionCompleted, mission.Status)
}

func TestMissionLifecycle_IllegalTransitions(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	tests := []struct {
		name string
		from model.MissionStatus
		op   func(store MissionStore) error
	}{
		{"complete from draft", model.MissionDraft, func(s MissionStore) error {
			_, err := CompleteMission(ctx, s, nil, logger, admin(), "m-1", false)
			return err
		}},
		{"open from open", model.MissionOpen, func(s MissionStore) error {
			_, err := OpenMission(ctx, s, nil, logger, admin(), "m-1")
			return err
		}},
		{"close from draft", model.MissionDraft, func(s MissionStore) error {
			_, err := CloseMission(ctx, s, nil, logger, admin(), "m-1")
			return err
		}},
		{"open from completed", model.MissionCompleted, func(s MissionStore) error {
			_, err := OpenMission(ctx, s, nil, logger, admin(), "m-1")
			return err
		}},
		{"cancel from canceled", model.MissionCanceled, func(s MissionStore) error {
			_, err := CancelMission(ctx, s, nil, nil, logger, admin(), "m-1")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mission := draftMission("m-1")
			mission.Status = tt.from
			store := newMockMissionStore(mission)

			err := tt.op(store)
			var ite *model.InvalidTransitionError
			require.ErrorAs(t, err, &ite)
			assert.Equal(t, string(tt.from), ite.From)
		})
	}
}

func TestMissionTransition_Forbidden(t *testing.T) {
	store := newMockMissionStore(draftMission("m-1"))
	_, err := OpenMission(context.Background(), store, nil, zap.NewNop(), volunteer(), "m-1")
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestMissionTransition_LostRace(t *testing.T) {
	mission := draftMission("m-1")
	store := newMockMissionStore(mission)
	store.staleUpdate = true

	_, err := OpenMission(context.Background(), store, nil, zap.NewNop(), admin(), "m-1")
	var ite *model.InvalidTransitionError
	assert.ErrorAs(t, err, &ite)
}

func TestCompleteMission_RequireAttendance(t *testing.T) {
	mission := draftMission("m-1")
	mission.Status = model.MissionClosed
	store := newMockMissionStore(mission)
	store.missingAttendance = 3

	_, err := CompleteMission(context.Background(), store, nil, zap.NewNop(), admin(), "m-1", true)
	var ite *model.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Contains(t, ite.Reason, "3 approved requests")

	// The same precondition passes once everything is recorded.
	store.missingAttendance = 0
	result, err := CompleteMission(context.Background(), store, nil, zap.NewNop(), admin(), "m-1", true)
	require.NoError(t, err)
	assert.Equal(t, model.MissionCompleted, result.Status)
}

func TestCancelMission_NotifiesEachVolunteerOnce(t *testing.T) {
	mission := draftMission("m-1")
	mission.Status = model.MissionOpen
	store := newMockMissionStore(mission)
	// vol-1 held requests on two shifts of the same mission.
	store.cancelable = []model.ParticipationRequest{
		{ID: "r-1", ShiftID: "s-1", VolunteerID: "vol-1", Status: model.RequestCanceledByAdmin},
		{ID: "r-2", ShiftID: "s-2", VolunteerID: "vol-1", Status: model.RequestCanceledByAdmin},
		{ID: "r-3", ShiftID: "s-1", VolunteerID: "vol-2", Status: model.RequestCanceledByAdmin},
	}

	notifier := &mockNotifier{}
	result, err := CancelMission(context.Background(), store, notifier, nil, zap.NewNop(), admin(), "m-1")
	require.NoError(t, err)

	assert.Equal(t, model.MissionCanceled, result.Mission.Status)
	assert.Len(t, result.CanceledRequests, 3)
	assert.Equal(t, 1, notifier.sentTo("vol-1"))
	assert.Equal(t, 1, notifier.sentTo("vol-2"))
}

func TestMissionTransition_StorageErrorPropagates(t *testing.T) {
	store := newMockMissionStore(draftMission("m-1"))
	store.updateErr = errors.New("connection reset")

	_, err := OpenMission(context.Background(), store, nil, zap.NewNop(), admin(), "m-1")
	require.Error(t, err)
	assert.False(t, model.IsDomainError(err))
}

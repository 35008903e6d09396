package board

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/syncclient"
)

type fakeBackend struct {
	settings  *domain.ManagerSettings
	roster    []domain.Employee
	schedules []*domain.Schedule
	fetchErr  error

	published [][]domain.Day
	updated   map[string][]domain.Day
	syncErr   error

	candidate   *syncclient.Candidate
	generateErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		settings: &domain.ManagerSettings{
			WorkDays:    []string{"Sunday", "Monday"},
			ShiftNames:  []string{"Morning", "Evening"},
			ShiftColors: map[string]string{"Morning": "#AEDFF7"},
		},
		roster: []domain.Employee{
			{ID: "e1", FirstName: "Ann", LastName: "Lee", Jobs: []string{"Cook", "Server"}},
		},
		updated: make(map[string][]domain.Day),
	}
}

func (f *fakeBackend) FetchSettings(ctx context.Context) (*domain.ManagerSettings, error) {
	return f.settings, f.fetchErr
}

func (f *fakeBackend) FetchEmployees(ctx context.Context) ([]domain.Employee, error) {
	return f.roster, f.fetchErr
}

func (f *fakeBackend) FetchSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	return f.schedules, f.fetchErr
}

func (f *fakeBackend) Publish(ctx context.Context, days []domain.Day) (string, error) {
	if f.syncErr != nil {
		return "", f.syncErr
	}
	f.published = append(f.published, days)
	return "published-id", nil
}

func (f *fakeBackend) Update(ctx context.Context, scheduleID string, days []domain.Day) error {
	if f.syncErr != nil {
		return f.syncErr
	}
	f.updated[scheduleID] = days
	return nil
}

func (f *fakeBackend) Generate(ctx context.Context) (*syncclient.Candidate, error) {
	return f.candidate, f.generateErr
}

// gatedBackend 让第一次 Publish 或 Update 阻塞，直到测试关闭 release
type gatedBackend struct {
	*fakeBackend
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{
		fakeBackend: newFakeBackend(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedBackend) wait() {
	if g.calls.Add(1) == 1 {
		g.entered <- struct{}{}
		<-g.release
	}
}

func (g *gatedBackend) Publish(ctx context.Context, days []domain.Day) (string, error) {
	g.wait()
	return g.fakeBackend.Publish(ctx, days)
}

func (g *gatedBackend) Update(ctx context.Context, scheduleID string, days []domain.Day) error {
	g.wait()
	return g.fakeBackend.Update(ctx, scheduleID, days)
}

func persisted(id string, employee string) *domain.Schedule {
	return &domain.Schedule{
		ID: id,
		Days: []domain.Day{
			{ID: "d0", Name: "Sunday", Shifts: []domain.Shift{
				{ID: "d0-morning", Time: "Morning", Assignments: []domain.Assignment{{ID: "A1", Employee: employee, Role: "Cook", Hours: "08:00-12:00"}}},
				{ID: "d0-evening", Time: "Evening"},
			}},
			{ID: "d1", Name: "Monday", Shifts: []domain.Shift{
				{ID: "d1-morning", Time: "Morning"},
				{ID: "d1-evening", Time: "Evening"},
			}},
		},
	}
}

func loadBoard(t *testing.T, backend Backend, opts Options) *Board {
	t.Helper()
	b := New(backend, opts, nil)
	require.NoError(t, b.Load(context.Background()))
	return b
}

var full = Options{AllowEdit: true, HistoryEnabled: true}

func TestLoadWithoutSchedulesUsesScaffold(t *testing.T) {
	b := loadBoard(t, newFakeBackend(), full)

	v := b.View()
	assert.True(t, v.Loaded)
	assert.Equal(t, ViewMode, v.Mode)
	assert.True(t, v.Editable)
	assert.False(t, v.Draggable)
	assert.Equal(t, 0, v.Versions)
	require.Len(t, v.Days, 2)
	for _, day := range v.Days {
		require.Len(t, day.Shifts, 2)
	}
}

func TestLoadFailureLeavesNotice(t *testing.T) {
	backend := newFakeBackend()
	backend.fetchErr = &syncclient.NetworkFailure{Op: "获取经理设置", Status: 500}
	b := New(backend, full, nil)

	err := b.Load(context.Background())

	require.Error(t, err)
	v := b.View()
	assert.False(t, v.Loaded)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, NoticeError, v.Notices[0].Kind)
}

func TestDragIgnoredInViewMode(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	b := loadBoard(t, backend, full)
	before := b.View().Days

	changed := b.DragEnd(DragResult{
		Source:      Location{ContainerID: "d0-morning", Index: 0},
		Destination: &Location{ContainerID: "d1-evening", Index: 0},
	})

	assert.False(t, changed)
	assert.Empty(t, cmp.Diff(before, b.View().Days))
}

func TestDragInEditMode(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	b := loadBoard(t, backend, full)
	require.NoError(t, b.ToggleEditMode(context.Background()))
	require.Equal(t, EditMode, b.Mode())
	assert.False(t, b.View().Dirty)

	assert.False(t, b.DragEnd(DragResult{Source: Location{ContainerID: "d0-morning", Index: 0}}))
	assert.False(t, b.DragEnd(DragResult{
		Source:      Location{ContainerID: "d0-morning", Index: 0},
		Destination: &Location{ContainerID: "d0-morning", Index: 0},
	}))
	assert.False(t, b.View().Dirty)

	require.True(t, b.DragEnd(DragResult{
		Source:      Location{ContainerID: "d0-morning", Index: 0},
		Destination: &Location{ContainerID: "d1-evening", Index: 0},
	}))

	v := b.View()
	assert.Empty(t, v.Days[0].Shifts[0].Assignments)
	require.Len(t, v.Days[1].Shifts[1].Assignments, 1)
	assert.Equal(t, "A1", v.Days[1].Shifts[1].Assignments[0].ID)
	assert.Equal(t, "#AEDFF7", v.Days[0].Shifts[0].Color)
	assert.Equal(t, "white", v.Days[1].Shifts[1].Color)
	assert.True(t, v.Dirty)
}

func TestLeavingEditModeSendsFullReplace(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	b := loadBoard(t, backend, full)

	require.NoError(t, b.ToggleEditMode(context.Background()))
	require.NoError(t, b.ToggleEditMode(context.Background()))

	days, ok := backend.updated["s1"]
	require.True(t, ok)
	require.Len(t, days, 2)
	assert.Equal(t, "white", days[0].Shifts[1].Color)
	assert.Equal(t, "#AEDFF7", days[1].Shifts[0].Color)
	assert.Equal(t, ViewMode, b.Mode())
	assert.Equal(t, NoticeInfo, b.Notices()[0].Kind)
}

func TestScaffoldIsPublishedThenUpdated(t *testing.T) {
	backend := newFakeBackend()
	b := loadBoard(t, backend, full)

	require.NoError(t, b.ToggleEditMode(context.Background()))
	require.NoError(t, b.ToggleEditMode(context.Background()))

	require.Len(t, backend.published, 1)
	for _, day := range backend.published[0] {
		for _, shift := range day.Shifts {
			assert.NotEmpty(t, shift.Color)
		}
	}
	v := b.View()
	assert.Equal(t, "published-id", v.ScheduleID)
	assert.Equal(t, 1, v.Versions)

	require.NoError(t, b.ToggleEditMode(context.Background()))
	require.NoError(t, b.ToggleEditMode(context.Background()))

	days := backend.updated["published-id"]
	require.NotNil(t, days)
	assert.Equal(t, "white", days[0].Shifts[1].Color)
}

func TestSyncFailureKeepsDraft(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	b := loadBoard(t, backend, full)

	require.NoError(t, b.ToggleEditMode(context.Background()))
	b.DragEnd(DragResult{
		Source:      Location{ContainerID: "d0-morning", Index: 0},
		Destination: &Location{ContainerID: "d1-evening", Index: 0},
	})
	before := b.View().Days

	backend.syncErr = &syncclient.NetworkFailure{Op: "更新班表", Err: errors.New("connection refused")}
	err := b.ToggleEditMode(context.Background())

	var nf *syncclient.NetworkFailure
	require.ErrorAs(t, err, &nf)
	v := b.View()
	assert.Empty(t, cmp.Diff(before, v.Days))
	assert.True(t, v.Dirty)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, NoticeError, v.Notices[0].Kind)

	assert.True(t, b.Dismiss(v.Notices[0].ID))
	assert.False(t, b.Dismiss(v.Notices[0].ID))
	assert.Empty(t, b.Notices())
}

func TestHistoryNavigation(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s2", "New Person"), persisted("s1", "Old Person")}
	b := loadBoard(t, backend, full)

	assert.False(t, b.Forward())
	require.True(t, b.Back())
	assert.False(t, b.Back())

	v := b.View()
	assert.Equal(t, 1, v.Cursor)
	assert.False(t, v.Editable)
	assert.Equal(t, "Old Person", v.Days[0].Shifts[0].Assignments[0].Employee)

	require.NoError(t, b.ToggleEditMode(context.Background()))
	assert.Equal(t, ViewMode, b.Mode())
	assert.False(t, b.RemoveAssignment("d0", "d0-morning", "A1"))

	require.True(t, b.ToLatest())
	v = b.View()
	assert.True(t, v.Editable)
	assert.Equal(t, "New Person", v.Days[0].Shifts[0].Assignments[0].Employee)
}

func TestNavigationDiscardsDraft(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s2", "Ann Lee"), persisted("s1", "Old Person")}
	b := loadBoard(t, backend, full)

	require.NoError(t, b.ToggleEditMode(context.Background()))
	require.True(t, b.RemoveAssignment("d0", "d0-morning", "A1"))
	require.True(t, b.Back())
	require.True(t, b.Forward())

	v := b.View()
	assert.Equal(t, ViewMode, v.Mode)
	assert.Len(t, v.Days[0].Shifts[0].Assignments, 1)
	assert.Empty(t, backend.updated)
}

func TestHistoryDisabled(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s2", "Ann Lee"), persisted("s1", "Old Person")}
	b := loadBoard(t, backend, Options{AllowEdit: true})

	assert.False(t, b.Back())
	assert.Equal(t, 1, b.View().Versions)
}

func TestReadOnlyBoard(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	b := loadBoard(t, backend, Options{HistoryEnabled: true})

	require.NoError(t, b.ToggleEditMode(context.Background()))
	assert.Equal(t, ViewMode, b.Mode())
	assert.False(t, b.View().Editable)
}

func TestEditorThroughBoard(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	b := loadBoard(t, backend, full)

	assert.False(t, b.OpenAdd("d1", "d1-morning"))

	require.NoError(t, b.ToggleEditMode(context.Background()))
	require.True(t, b.OpenAdd("d1", "d1-morning"))
	require.True(t, b.SelectEmployee("e1"))
	require.True(t, b.SetRole("Server"))
	b.SetStart("17:00")
	b.SetEnd("22:00")
	id, ok := b.SaveEditor()
	require.True(t, ok)

	v := b.View()
	require.Len(t, v.Days[1].Shifts[0].Assignments, 1)
	assert.Equal(t, domain.Assignment{ID: id, Employee: "Ann Lee", Role: "Server", Hours: "17:00-22:00"}, v.Days[1].Shifts[0].Assignments[0])

	require.True(t, b.OpenEdit("d0", "d0-morning", "A1"))
	b.SetRole("Server")
	b.CancelEditor()
	assert.Equal(t, "Cook", b.View().Days[0].Shifts[0].Assignments[0].Role)
}

func TestGenerateRejectionShownVerbatim(t *testing.T) {
	backend := newFakeBackend()
	backend.generateErr = &syncclient.ServerRejection{Status: 400, Message: "Not enough cooks on Monday"}
	b := loadBoard(t, backend, full)
	before := b.View().Days

	_, err := b.Generate(context.Background())

	require.Error(t, err)
	v := b.View()
	require.Len(t, v.Notices, 1)
	assert.Equal(t, "Not enough cooks on Monday", v.Notices[0].Message)
	assert.Nil(t, v.Candidate)
	assert.Empty(t, cmp.Diff(before, v.Days))
}

func TestGenerateAndPublishCandidate(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	backend.candidate = &syncclient.Candidate{
		Days: []domain.Day{{ID: "c0", Name: "Sunday", Shifts: []domain.Shift{{ID: "c0-m", Time: "Morning"}}}},
		Text: []string{"all shifts covered"},
	}
	b := loadBoard(t, backend, full)

	candidate, err := b.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#AEDFF7", candidate.Days[0].Shifts[0].Color)
	require.NotNil(t, b.View().Candidate)

	require.NoError(t, b.PublishCandidate(context.Background()))

	require.Len(t, backend.published, 1)
	v := b.View()
	assert.Nil(t, v.Candidate)
	assert.Equal(t, 2, v.Versions)
	assert.Equal(t, 0, v.Cursor)
	assert.Equal(t, "published-id", v.ScheduleID)
	require.Len(t, v.Days, 1)
}

func TestResumeDraft(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	b := loadBoard(t, backend, full)

	draft := persisted("s1", "Draft Person")
	assert.False(t, b.ResumeDraft(persisted("other", "Draft Person")))
	require.True(t, b.ResumeDraft(draft))

	v := b.View()
	assert.Equal(t, EditMode, v.Mode)
	assert.Equal(t, "Draft Person", v.Days[0].Shifts[0].Assignments[0].Employee)
	require.NotNil(t, b.Draft())
}

func TestLeavingEditModeWhilePublishingDoesNotPublishTwice(t *testing.T) {
	backend := newGatedBackend()
	b := loadBoard(t, backend, full)
	ctx := context.Background()

	require.NoError(t, b.ToggleEditMode(ctx))
	done := make(chan error, 1)
	go func() { done <- b.ToggleEditMode(ctx) }()
	<-backend.entered
	assert.True(t, b.Syncing())

	require.NoError(t, b.ToggleEditMode(ctx))
	require.Equal(t, EditMode, b.Mode())
	require.NoError(t, b.ToggleEditMode(ctx))
	assert.Equal(t, EditMode, b.Mode())

	close(backend.release)
	require.NoError(t, <-done)

	assert.Len(t, backend.published, 1)
	v := b.View()
	assert.False(t, v.Syncing)
	assert.Equal(t, 1, v.Versions)
	assert.Equal(t, "published-id", v.ScheduleID)

	require.NoError(t, b.ToggleEditMode(ctx))
	assert.Equal(t, ViewMode, b.Mode())
	assert.Len(t, backend.published, 1)
	assert.Contains(t, backend.updated, "published-id")
}

func TestLateUpdateKeepsNewerEditsDirty(t *testing.T) {
	backend := newGatedBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}
	b := loadBoard(t, backend, full)
	ctx := context.Background()

	require.NoError(t, b.ToggleEditMode(ctx))
	done := make(chan error, 1)
	go func() { done <- b.ToggleEditMode(ctx) }()
	<-backend.entered

	require.NoError(t, b.ToggleEditMode(ctx))
	require.True(t, b.DragEnd(DragResult{
		Source:      Location{ContainerID: "d0-morning", Index: 0},
		Destination: &Location{ContainerID: "d1-evening", Index: 0},
	}))
	require.True(t, b.View().Dirty)

	close(backend.release)
	require.NoError(t, <-done)

	v := b.View()
	assert.True(t, v.Dirty)
	require.Len(t, v.Days[1].Shifts[1].Assignments, 1)
	assert.Len(t, backend.updated["s1"][0].Shifts[0].Assignments, 1)
}

func TestShortagesFollowEdits(t *testing.T) {
	backend := newFakeBackend()
	backend.settings.RolesPerShift = map[string]map[string]int{"Morning": {"Cook": 1}}
	stale := persisted("s1", "Ann Lee")
	stale.Days[0].Shifts[0].Shortages = map[string]int{"Cook": 3}
	backend.schedules = []*domain.Schedule{stale}
	b := loadBoard(t, backend, full)

	require.NoError(t, b.ToggleEditMode(context.Background()))
	require.True(t, b.DragEnd(DragResult{
		Source:      Location{ContainerID: "d0-morning", Index: 0},
		Destination: &Location{ContainerID: "d1-evening", Index: 0},
	}))

	v := b.View()
	assert.Equal(t, map[string]int{"Cook": 1}, v.Days[0].Shifts[0].Shortages)
	assert.Equal(t, map[string]int{"Cook": 1}, v.Days[1].Shifts[0].Shortages)
}

func TestResumedDraftWithChangesIsDirty(t *testing.T) {
	backend := newFakeBackend()
	backend.schedules = []*domain.Schedule{persisted("s1", "Ann Lee")}

	unchanged := loadBoard(t, backend, full)
	require.True(t, unchanged.ResumeDraft(persisted("s1", "Ann Lee")))
	assert.False(t, unchanged.View().Dirty)

	changed := loadBoard(t, backend, full)
	require.True(t, changed.ResumeDraft(persisted("s1", "Draft Person")))
	assert.True(t, changed.View().Dirty)
}

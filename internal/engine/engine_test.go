package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikari-signage/hikari/internal/broadcast"
	"github.com/hikari-signage/hikari/internal/metrics"
	"github.com/hikari-signage/hikari/internal/model"
)

type timeUpdate struct {
	id     string
	start  time.Time
	active bool
}

type fakeStore struct {
	overdue    []model.Schedule
	window     []model.Schedule
	overdueErr error
	windowErr  error
	updateErr  map[string]error

	windowFrom  time.Time
	windowTo    time.Time
	updates     []timeUpdate
	deactivated []string
}

func (f *fakeStore) ListOverdueActive(now time.Time) ([]model.Schedule, error) {
	return f.overdue, f.overdueErr
}

func (f *fakeStore) ListWindowActive(from, to time.Time) ([]model.Schedule, error) {
	f.windowFrom, f.windowTo = from, to
	return f.window, f.windowErr
}

func (f *fakeStore) UpdateScheduleTime(id string, start time.Time, active bool) error {
	if err := f.updateErr[id]; err != nil {
		return err
	}
	f.updates = append(f.updates, timeUpdate{id: id, start: start, active: active})
	return nil
}

func (f *fakeStore) DeactivateSchedule(id string) error {
	if err := f.updateErr[id]; err != nil {
		return err
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

type call struct {
	reset    bool
	groupID  string
	priority int
}

type fakeBroadcaster struct {
	calls []call
}

func (f *fakeBroadcaster) Broadcast(groupID string, priority int) int {
	f.calls = append(f.calls, call{groupID: groupID, priority: priority})
	return 1
}

func (f *fakeBroadcaster) ResetAllPriorities() {
	f.calls = append(f.calls, call{reset: true})
}

func newTestEngine(store ScheduleStore, ch Broadcaster, now time.Time) *Engine {
	e := New(store, ch, 70*time.Second, metrics.New())
	e.clock = MockClock{MockTime: now}
	return e
}

func sched(id, group string, priority int, repeat model.Repeat, start time.Time, end *time.Time) model.Schedule {
	return model.Schedule{
		ID:        id,
		GroupID:   group,
		StartTime: start,
		EndTime:   end,
		Repeat:    repeat,
		Priority:  priority,
		Active:    true,
	}
}

func TestCatchUpLeavesHighestPriorityInGlobalState(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{overdue: []model.Schedule{
		sched("s1", "g-low", 1, model.RepeatAlways, now.Add(-time.Hour), nil),
		sched("s2", "g-mid", 3, model.RepeatAlways, now.Add(-2*time.Hour), nil),
		sched("s3", "g-high", 9, model.RepeatAlways, now.Add(-3*time.Hour), nil),
	}}

	ch := broadcast.NewChannel(metrics.New())
	e := newTestEngine(store, ch, now)
	e.CatchUp()

	// a display connecting after catch-up must converge on the highest
	// priority overdue instruction
	rec := &recordingPusher{}
	ch.Register("fresh", rec)
	require.Len(t, rec.cmds, 1)
	assert.Equal(t, broadcast.Command{GroupID: "g-high", Priority: 9}, rec.cmds[0])
}

func TestCatchUpSkipsStaleSchedules(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	store := &fakeStore{overdue: []model.Schedule{
		sched("stale", "g1", 5, model.RepeatNone, now.Add(-2*time.Hour), &past),
	}}
	ch := &fakeBroadcaster{}

	newTestEngine(store, ch, now).CatchUp()

	assert.Empty(t, ch.calls, "a schedule past its cutoff is stale, not live")
	assert.Equal(t, []string{"stale"}, store.deactivated)
}

func TestTickResetsPrioritiesBeforeFiring(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{window: []model.Schedule{
		sched("s1", "g1", 4, model.RepeatNone, now.Add(-time.Second), nil),
	}}
	ch := &fakeBroadcaster{}

	newTestEngine(store, ch, now).Tick()

	require.Len(t, ch.calls, 2)
	assert.True(t, ch.calls[0].reset, "the reset must precede any fire")
	assert.Equal(t, call{groupID: "g1", priority: 4}, ch.calls[1])
}

func TestTickUsesTrailingWindow(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{}

	newTestEngine(store, &fakeBroadcaster{}, now).Tick()

	assert.Equal(t, now.Add(-70*time.Second), store.windowFrom)
	assert.Equal(t, now, store.windowTo)
}

func TestTickContinuesPastFailingSchedule(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		window: []model.Schedule{
			sched("bad", "g1", 5, model.RepeatNone, now.Add(-time.Second), nil),
			sched("good", "g2", 3, model.RepeatNone, now.Add(-time.Second), nil),
		},
		updateErr: map[string]error{"bad": errors.New("connection refused")},
	}
	ch := &fakeBroadcaster{}

	newTestEngine(store, ch, now).Tick()

	// both schedules broadcast despite the first one's store failure
	require.Len(t, ch.calls, 3)
	assert.Equal(t, "g1", ch.calls[1].groupID)
	assert.Equal(t, "g2", ch.calls[2].groupID)
	assert.Equal(t, []string{"good"}, store.deactivated)
}

func TestOneShotDeactivatesAfterFiring(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{window: []model.Schedule{
		sched("s1", "g1", 0, model.RepeatNone, now.Add(-time.Second), nil),
	}}
	ch := &fakeBroadcaster{}

	newTestEngine(store, ch, now).Tick()

	assert.Equal(t, []string{"s1"}, store.deactivated)
	assert.Empty(t, store.updates)
}

func TestDailyAdvanceSkipsMissedDays(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -3).Add(-time.Minute)
	store := &fakeStore{overdue: []model.Schedule{
		sched("s1", "g1", 0, model.RepeatDaily, start, nil),
	}}

	newTestEngine(store, &fakeBroadcaster{}, now).CatchUp()

	require.Len(t, store.updates, 1)
	up := store.updates[0]
	assert.True(t, up.start.After(now), "advanced fire time must be in the future")
	assert.False(t, up.start.After(now.AddDate(0, 0, 1)), "advance must land within one day of now")
	assert.True(t, up.active)
}

func TestDailyAdvancePastCutoffDeactivates(t *testing.T) {
	now := time.Date(2024, 6, 3, 10, 0, 30, 0, time.UTC)
	start := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC)
	store := &fakeStore{window: []model.Schedule{
		sched("s1", "g1", 0, model.RepeatDaily, start, &end),
	}}
	ch := &fakeBroadcaster{}

	newTestEngine(store, ch, now).Tick()

	// it still fires today, and its time is advanced even though the next
	// occurrence falls past the cutoff
	require.Len(t, ch.calls, 2)
	require.Len(t, store.updates, 1)
	up := store.updates[0]
	assert.Equal(t, time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC), up.start)
	assert.False(t, up.active)
}

func TestWeeklyAdvance(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -10)
	store := &fakeStore{overdue: []model.Schedule{
		sched("s1", "g1", 0, model.RepeatWeekly, start, nil),
	}}

	newTestEngine(store, &fakeBroadcaster{}, now).CatchUp()

	require.Len(t, store.updates, 1)
	up := store.updates[0]
	assert.Equal(t, start.AddDate(0, 0, 14), up.start)
	assert.True(t, up.active)
}

func TestAlwaysScheduleIsNeverRewritten(t *testing.T) {
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{overdue: []model.Schedule{
		sched("s1", "g1", 2, model.RepeatAlways, now.Add(-time.Hour), nil),
	}}
	ch := &fakeBroadcaster{}

	newTestEngine(store, ch, now).CatchUp()

	require.Len(t, ch.calls, 1)
	assert.Empty(t, store.updates)
	assert.Empty(t, store.deactivated)
}

func TestCatchUpSurvivesListError(t *testing.T) {
	store := &fakeStore{overdueErr: errors.New("connection refused")}
	ch := &fakeBroadcaster{}
	newTestEngine(store, ch, time.Now()).CatchUp()
	assert.Empty(t, ch.calls)
}

type recordingPusher struct {
	cmds []broadcast.Command
}

func (r *recordingPusher) Push(cmd broadcast.Command) error {
	r.cmds = append(r.cmds, cmd)
	return nil
}

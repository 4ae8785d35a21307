package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hikari-signage/hikari/internal/model"
	"github.com/hikari-signage/hikari/internal/timeline"
)

var day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC) // a Monday

func at(dayOffset, hour, minute int) time.Time {
	return day.AddDate(0, 0, dayOffset).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func oneShot(id, group string, start time.Time, end *time.Time) model.Schedule {
	return model.Schedule{ID: id, GroupID: group, StartTime: start, EndTime: end, Repeat: model.RepeatNone}
}

func ptr(t time.Time) *time.Time { return &t }

func project(t *testing.T, schedules ...model.Schedule) []timeline.Slot {
	t.Helper()
	return timeline.ProjectDay(schedules, day, timeline.DefaultConfig())
}

func TestOneShotOnItsOwnDay(t *testing.T) {
	slots := project(t, oneShot("s1", "g1", at(0, 10, 0), ptr(at(0, 12, 0))))
	require.Len(t, slots, 1)
	assert.Equal(t, 600, slots[0].StartMinute)
	require.NotNil(t, slots[0].EndMinute)
	assert.Equal(t, 720, *slots[0].EndMinute)
	assert.False(t, slots[0].CrossesDayBoundary)
}

func TestOneShotCrossMidnightRemainder(t *testing.T) {
	// started yesterday 23:00, ends today 01:30: a partial bar at the start
	// of today
	slots := project(t, oneShot("s1", "g1", at(-1, 23, 0), ptr(at(0, 1, 30))))
	require.Len(t, slots, 1)
	assert.True(t, slots[0].CrossesDayBoundary)
	assert.Equal(t, 0, slots[0].StartMinute)
	require.NotNil(t, slots[0].EndMinute)
	assert.Equal(t, 90, *slots[0].EndMinute)
}

func TestOneShotEndingPastTrailingCutoffExcluded(t *testing.T) {
	// ends at 04:00, past the 3-hour cutoff: yesterday's bar, not today's
	slots := project(t, oneShot("s1", "g1", at(-1, 23, 0), ptr(at(0, 4, 0))))
	assert.Empty(t, slots)
}

func TestOneShotOtherDaysExcluded(t *testing.T) {
	slots := project(t,
		oneShot("past", "g1", at(-2, 10, 0), ptr(at(-2, 12, 0))),
		oneShot("future", "g1", at(1, 10, 0), nil),
	)
	assert.Empty(t, slots)
}

func TestDailyAppearsAtTimeOfDay(t *testing.T) {
	s := model.Schedule{ID: "s1", GroupID: "g1", StartTime: at(-30, 9, 15), Repeat: model.RepeatDaily}
	slots := project(t, s)
	require.Len(t, slots, 1)
	assert.Equal(t, 9*60+15, slots[0].StartMinute)
	assert.Nil(t, slots[0].EndMinute)
}

func TestDailyEndWrapsPastMidnight(t *testing.T) {
	// 22:00 to 02:00 next morning draws to minute 1560
	s := model.Schedule{
		ID: "s1", GroupID: "g1",
		StartTime: at(-5, 22, 0),
		EndTime:   ptr(at(-4, 2, 0)),
		Repeat:    model.RepeatDaily,
	}
	slots := project(t, s)
	require.Len(t, slots, 1)
	assert.Equal(t, 1320, slots[0].StartMinute)
	require.NotNil(t, slots[0].EndMinute)
	assert.Equal(t, 1560, *slots[0].EndMinute)
}

func TestDailyDistantEndIsCutoffDateNotDrawTime(t *testing.T) {
	// an end more than 24h out is when the schedule stops repeating, not
	// when the bar ends
	s := model.Schedule{
		ID: "s1", GroupID: "g1",
		StartTime: at(-5, 9, 0),
		EndTime:   ptr(at(20, 0, 0)),
		Repeat:    model.RepeatDaily,
	}
	slots := project(t, s)
	require.Len(t, slots, 1)
	assert.Nil(t, slots[0].EndMinute)
}

func TestWeeklyOnlyOnMatchingWeekday(t *testing.T) {
	monday := model.Schedule{ID: "mon", GroupID: "g1", StartTime: at(-7, 8, 0), Repeat: model.RepeatWeekly}
	tuesday := model.Schedule{ID: "tue", GroupID: "g1", StartTime: at(-6, 8, 0), Repeat: model.RepeatWeekly}

	slots := project(t, monday, tuesday)
	require.Len(t, slots, 1)
	assert.Equal(t, "mon", slots[0].ScheduleID)
	assert.Equal(t, 480, slots[0].StartMinute)
}

func TestProjectDayIsPure(t *testing.T) {
	schedules := []model.Schedule{
		oneShot("s1", "g1", at(0, 10, 0), ptr(at(0, 12, 0))),
		{ID: "s2", GroupID: "g2", StartTime: at(-3, 22, 0), Repeat: model.RepeatDaily},
	}
	first := timeline.ProjectDay(schedules, day, timeline.DefaultConfig())
	timeline.AssignLanes(first, timeline.DefaultConfig())
	second := timeline.ProjectDay(schedules, day, timeline.DefaultConfig())
	timeline.AssignLanes(second, timeline.DefaultConfig())
	assert.Equal(t, first, second)
}

func TestAssignLanesReusesFreedLane(t *testing.T) {
	slots := project(t,
		oneShot("a", "g1", at(0, 0, 0), ptr(at(0, 2, 0))),
		oneShot("b", "g1", at(0, 1, 0), ptr(at(0, 3, 0))),
		oneShot("c", "g1", at(0, 2, 0), ptr(at(0, 4, 0))),
	)
	timeline.AssignLanes(slots, timeline.DefaultConfig())

	lanes := map[string]int{}
	for _, s := range slots {
		lanes[s.ScheduleID] = s.Lane
	}
	assert.Equal(t, 0, lanes["a"])
	assert.Equal(t, 1, lanes["b"], "overlapping slot opens a new lane")
	assert.Equal(t, 0, lanes["c"], "freed lane is reused")
}

func TestAssignLanesGroupsAreIndependent(t *testing.T) {
	slots := project(t,
		oneShot("a", "g1", at(0, 10, 0), ptr(at(0, 12, 0))),
		oneShot("b", "g2", at(0, 10, 0), ptr(at(0, 12, 0))),
	)
	timeline.AssignLanes(slots, timeline.DefaultConfig())
	for _, s := range slots {
		assert.Equal(t, 0, s.Lane)
	}
}

func TestAssignLanesOpenEndedSlotOccupiesMinimumWidth(t *testing.T) {
	slots := project(t,
		oneShot("open", "g1", at(0, 10, 0), nil),
		oneShot("close", "g1", at(0, 10, 10), ptr(at(0, 11, 0))),
		oneShot("later", "g1", at(0, 10, 40), ptr(at(0, 11, 30))),
	)
	timeline.AssignLanes(slots, timeline.DefaultConfig())

	lanes := map[string]int{}
	for _, s := range slots {
		lanes[s.ScheduleID] = s.Lane
	}
	assert.Equal(t, 0, lanes["open"])
	assert.Equal(t, 1, lanes["close"], "a slot inside the synthetic width collides")
	assert.Equal(t, 0, lanes["later"], "past the synthetic width the lane is free")
}

// Package timeline projects schedules onto one calendar day for the admin
// timeline view. Everything here is pure: the same schedules and date always
// produce the same slots.
package timeline

import (
	"sort"
	"time"

	"github.com/hikari-signage/hikari/internal/model"
)

const minutesPerDay = 24 * 60

// Config carries the drawing policy. The defaults reproduce the admin UI's
// behaviour: a 27-hour canvas so early-morning overflow from the previous day
// stays visible, a 3-hour cutoff for trailing one-shot slots, and a 30-minute
// synthetic width for open-ended slots during lane packing.
type Config struct {
	CanvasMinutes         int
	TrailingCutoffMinutes int
	MinSlotMinutes        int
}

func DefaultConfig() Config {
	return Config{
		CanvasMinutes:         27 * 60,
		TrailingCutoffMinutes: 3 * 60,
		MinSlotMinutes:        30,
	}
}

// Slot is one bar on the day's timeline. Minutes count from the day's
// midnight; EndMinute is nil for slots whose cutoff is a date, not a
// draw-to time.
type Slot struct {
	ScheduleID         string `json:"schedule_id"`
	GroupID            string `json:"group_id"`
	StartMinute        int    `json:"start_minute"`
	EndMinute          *int   `json:"end_minute"`
	Lane               int    `json:"lane"`
	CrossesDayBoundary bool   `json:"crosses_day_boundary"`
}

// ProjectDay maps each schedule onto date. One-shot schedules appear on their
// own day, and additionally at the start of the next day when they end within
// the trailing cutoff after midnight. Daily schedules appear every day at
// their time-of-day; weekly ones only on their weekday.
func ProjectDay(schedules []model.Schedule, date time.Time, cfg Config) []Slot {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	var slots []Slot
	for _, s := range schedules {
		rawStart := 0
		var rawEnd *int
		include := false

		switch s.Repeat {
		case model.RepeatNone:
			rawStart = int(s.StartTime.Sub(dayStart) / time.Minute)
			if s.EndTime != nil {
				v := int(s.EndTime.Sub(dayStart) / time.Minute)
				rawEnd = &v
			}
			if rawStart >= 0 && rawStart < minutesPerDay {
				include = true
			} else if rawStart >= -minutesPerDay && rawStart < 0 &&
				rawEnd != nil && *rawEnd > 0 && *rawEnd <= cfg.TrailingCutoffMinutes {
				// started the previous day, ends early enough today to
				// warrant a partial bar
				include = true
			}
		case model.RepeatDaily:
			rawStart, rawEnd = timeOfDaySpan(&s)
			include = true
		case model.RepeatWeekly:
			if s.StartTime.Weekday() == date.Weekday() {
				rawStart, rawEnd = timeOfDaySpan(&s)
				include = true
			}
		}

		if !include {
			continue
		}
		if rawEnd != nil && *rawEnd <= 0 {
			continue
		}
		if rawStart >= cfg.CanvasMinutes {
			continue
		}

		slot := Slot{
			ScheduleID:         s.ID,
			GroupID:            s.GroupID,
			StartMinute:        max(0, rawStart),
			CrossesDayBoundary: rawStart < 0,
		}
		if rawEnd != nil {
			v := min(*rawEnd, cfg.CanvasMinutes)
			slot.EndMinute = &v
		}
		slots = append(slots, slot)
	}
	return slots
}

// timeOfDaySpan resolves a recurring schedule to its time-of-day start and,
// when the cutoff is close enough to be a draw-to time rather than a pure
// cutoff date, its end. An end at or before the start wraps past midnight.
func timeOfDaySpan(s *model.Schedule) (int, *int) {
	start := s.StartTime.Hour()*60 + s.StartTime.Minute()
	if s.EndTime == nil {
		return start, nil
	}
	span := s.EndTime.Sub(s.StartTime)
	if span <= 0 || span > 24*time.Hour {
		return start, nil
	}
	end := s.EndTime.Hour()*60 + s.EndTime.Minute()
	if end <= start {
		end += minutesPerDay
	}
	return start, &end
}

// AssignLanes packs each group's slots into lanes so overlapping bars never
// share one. Greedy first-fit over start-sorted intervals uses the fewest
// possible lanes. Slots with no end occupy a synthetic minimum width so they
// still take up lane space.
func AssignLanes(slots []Slot, cfg Config) {
	byGroup := make(map[string][]int)
	for i := range slots {
		byGroup[slots[i].GroupID] = append(byGroup[slots[i].GroupID], i)
	}
	for _, idxs := range byGroup {
		sort.SliceStable(idxs, func(a, b int) bool {
			return slots[idxs[a]].StartMinute < slots[idxs[b]].StartMinute
		})
		var laneEnds []int
		for _, i := range idxs {
			slot := &slots[i]
			end := slot.StartMinute + cfg.MinSlotMinutes
			if slot.EndMinute != nil {
				end = *slot.EndMinute
			}
			placed := false
			for lane := range laneEnds {
				if slot.StartMinute >= laneEnds[lane] {
					slot.Lane = lane
					laneEnds[lane] = end
					placed = true
					break
				}
			}
			if !placed {
				slot.Lane = len(laneEnds)
				laneEnds = append(laneEnds, end)
			}
		}
	}
}

// Package engine runs the broadcast scheduling passes: a one-shot startup
// catch-up for schedules missed while the process was down, and a cron-driven
// periodic tick firing schedules whose time has come.
package engine

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/hikari-signage/hikari/internal/metrics"
	"github.com/hikari-signage/hikari/internal/model"
)

// ScheduleStore is the slice of the repository the engine needs. List results
// arrive pre-ordered: overdue ascending by priority, window descending.
type ScheduleStore interface {
	ListOverdueActive(now time.Time) ([]model.Schedule, error)
	ListWindowActive(from, to time.Time) ([]model.Schedule, error)
	UpdateScheduleTime(scheduleID string, start time.Time, active bool) error
	DeactivateSchedule(scheduleID string) error
}

// Broadcaster is the slice of the broadcast channel the engine drives.
type Broadcaster interface {
	Broadcast(groupID string, priority int) int
	ResetAllPriorities()
}

type Engine struct {
	store  ScheduleStore
	ch     Broadcaster
	clock  Clock
	window time.Duration
	m      *metrics.Metrics
	cron   *cron.Cron
}

func New(store ScheduleStore, ch Broadcaster, window time.Duration, m *metrics.Metrics) *Engine {
	return &Engine{
		store:  store,
		ch:     ch,
		clock:  RealClock{},
		window: window,
		m:      m,
	}
}

// Start launches the catch-up pass in the background and begins ticking on the
// given cron spec. This design assumes exactly one scheduler process.
func (e *Engine) Start(tickSpec string) error {
	go e.CatchUp()

	c := cron.New()
	if _, err := c.AddFunc(tickSpec, e.Tick); err != nil {
		return err
	}
	c.Start()
	e.cron = c
	log.Info().Str("spec", tickSpec).Msg("schedule engine started")
	return nil
}

// Stop halts the periodic driver. Running passes finish on their own.
func (e *Engine) Stop() {
	if e.cron != nil {
		e.cron.Stop()
	}
}

// CatchUp fires every schedule that should have fired while the process was
// not running. Schedules arrive in ascending priority order, so the highest
// priority overdue instruction is applied last and is what reconnecting
// displays converge to.
func (e *Engine) CatchUp() {
	now := e.clock.Now()
	schedules, err := e.store.ListOverdueActive(now)
	if err != nil {
		log.Error().Err(err).Msg("catch-up: listing overdue schedules failed")
		e.m.IncTickErrors()
		return
	}
	for i := range schedules {
		e.fire(&schedules[i], now)
	}
	log.Info().Int("count", len(schedules)).Msg("catch-up pass complete")
}

// Tick is one periodic scheduling pass. The priority reset comes first so an
// ad-hoc broadcast can block the scheduler within its interval but never past
// it. The trailing window absorbs cron jitter without missing a fire.
func (e *Engine) Tick() {
	e.ch.ResetAllPriorities()

	now := e.clock.Now()
	schedules, err := e.store.ListWindowActive(now.Add(-e.window), now)
	if err != nil {
		log.Error().Err(err).Msg("tick: listing window schedules failed")
		e.m.IncTickErrors()
		return
	}
	for i := range schedules {
		e.fire(&schedules[i], now)
	}
	e.m.IncTicks()
}

// fire broadcasts one schedule and advances its fire time. A schedule whose
// cutoff already passed is stale, not live: it is deactivated and nothing is
// broadcast. Store errors abort only this schedule, never the pass.
func (e *Engine) fire(s *model.Schedule, now time.Time) {
	if s.EndTime != nil && s.EndTime.Before(now) {
		if err := e.store.DeactivateSchedule(s.ID); err != nil {
			log.Error().Err(err).Str("schedule_id", s.ID).Msg("deactivating stale schedule failed")
			e.m.IncTickErrors()
		}
		return
	}

	e.ch.Broadcast(s.GroupID, s.Priority)
	e.advance(s, now)
}

// advance applies the repeat rule after a fire. 'always' records are left
// untouched; they are rewritten only when an operator issues a new ad-hoc
// broadcast for the group.
func (e *Engine) advance(s *model.Schedule, now time.Time) {
	switch s.Repeat {
	case model.RepeatNone:
		if err := e.store.DeactivateSchedule(s.ID); err != nil {
			log.Error().Err(err).Str("schedule_id", s.ID).Msg("deactivating one-shot schedule failed")
			e.m.IncTickErrors()
		}
	case model.RepeatDaily:
		e.advanceByDays(s, now, 1)
	case model.RepeatWeekly:
		e.advanceByDays(s, now, 7)
	case model.RepeatAlways:
	}
}

// advanceByDays steps the fire time forward in whole days until it is strictly
// past now. Looping, not adding once, correctly skips multiple missed periods
// after an outage. The cutoff is only compared against, never rewritten; a
// schedule advanced past it goes inactive with its fire time still updated.
func (e *Engine) advanceByDays(s *model.Schedule, now time.Time, days int) {
	next := s.StartTime
	for !next.After(now) {
		next = next.AddDate(0, 0, days)
	}
	active := s.EndTime == nil || !next.After(*s.EndTime)
	if err := e.store.UpdateScheduleTime(s.ID, next, active); err != nil {
		log.Error().Err(err).Str("schedule_id", s.ID).Msg("advancing schedule failed")
		e.m.IncTickErrors()
	}
}

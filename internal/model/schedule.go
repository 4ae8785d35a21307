package model

import "time"

// Repeat describes how often a schedule fires.
type Repeat string

const (
	RepeatNone   Repeat = "none"
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
	// RepeatAlways marks the synthetic record left behind by an ad-hoc
	// broadcast. It is only replayed by the startup catch-up pass and is
	// never fired by the periodic tick.
	RepeatAlways Repeat = "always"
)

type Schedule struct {
	ID        string     `db:"id" json:"id"`
	GroupID   string     `db:"group_id" json:"group_id"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   *time.Time `db:"end_time" json:"end_time"`
	Repeat    Repeat     `db:"repeat" json:"repeat"`
	Priority  int        `db:"priority" json:"priority"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// ScheduleWithGroup is the list-view row: a schedule joined with its group name.
type ScheduleWithGroup struct {
	Schedule
	GroupName string `db:"group_name" json:"group_name"`
}

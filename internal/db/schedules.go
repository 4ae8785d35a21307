package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hikari-signage/hikari/internal/model"
)

func CreateSchedule(groupID string, start time.Time, end *time.Time, repeat model.Repeat, priority int) (model.Schedule, error) {
	var s model.Schedule
	const q = `
	INSERT INTO schedules (id, group_id, start_time, end_time, repeat, priority, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, true, now(), now())
	RETURNING id, group_id, start_time, end_time, repeat, priority, active, created_at, updated_at;`
	if err := DB.Get(&s, q, uuid.NewString(), groupID, start, end, repeat, priority); err != nil {
		log.Error().Err(err).Msg("CreateSchedule failed")
		return model.Schedule{}, err
	}
	return s, nil
}

func DeleteSchedule(scheduleID string) error {
	_, err := DB.Exec(`DELETE FROM schedules WHERE id = $1;`, scheduleID)
	if err != nil {
		log.Error().Err(err).Str("schedule_id", scheduleID).Msg("DeleteSchedule failed")
	}
	return err
}

func ListSchedules() ([]model.ScheduleWithGroup, error) {
	var out []model.ScheduleWithGroup
	const q = `
	SELECT s.id, s.group_id, s.start_time, s.end_time, s.repeat, s.priority, s.active,
	       s.created_at, s.updated_at, g.name AS group_name
	  FROM schedules s
	  JOIN groups g ON g.id = s.group_id
	 ORDER BY s.start_time;`
	if err := DB.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListSchedules failed")
		return nil, err
	}
	return out, nil
}

func GetSchedule(scheduleID string) (model.Schedule, error) {
	var s model.Schedule
	err := DB.Get(&s, `
		SELECT id, group_id, start_time, end_time, repeat, priority, active, created_at, updated_at
		  FROM schedules
		 WHERE id = $1;`, scheduleID)
	if err != nil {
		log.Error().Err(err).Str("schedule_id", scheduleID).Msg("GetSchedule failed")
	}
	return s, err
}

// ListOverdueActive returns every active schedule whose fire time is at or
// before now, ordered by ascending priority. The startup catch-up pass relies
// on that ordering: the most important overdue instruction is applied last.
func ListOverdueActive(now time.Time) ([]model.Schedule, error) {
	var out []model.Schedule
	const q = `
	SELECT id, group_id, start_time, end_time, repeat, priority, active, created_at, updated_at
	  FROM schedules
	 WHERE active = true
	   AND start_time <= $1
	 ORDER BY priority ASC, start_time ASC;`
	if err := DB.Select(&out, q, now); err != nil {
		log.Error().Err(err).Msg("ListOverdueActive failed")
		return nil, err
	}
	return out, nil
}

// ListWindowActive returns active schedules firing inside [from, to], ordered
// by descending priority. Records with repeat = 'always' never fire on the
// periodic pass and are excluded here rather than filtered by the caller.
func ListWindowActive(from, to time.Time) ([]model.Schedule, error) {
	var out []model.Schedule
	const q = `
	SELECT id, group_id, start_time, end_time, repeat, priority, active, created_at, updated_at
	  FROM schedules
	 WHERE active = true
	   AND repeat <> 'always'
	   AND start_time >= $1
	   AND start_time <= $2
	 ORDER BY priority DESC, start_time ASC;`
	if err := DB.Select(&out, q, from, to); err != nil {
		log.Error().Err(err).Msg("ListWindowActive failed")
		return nil, err
	}
	return out, nil
}

func UpdateScheduleTime(scheduleID string, start time.Time, active bool) error {
	_, err := DB.Exec(`
		UPDATE schedules
		   SET start_time = $2,
		       active = $3,
		       updated_at = now()
		 WHERE id = $1;`, scheduleID, start, active)
	if err != nil {
		log.Error().Err(err).Str("schedule_id", scheduleID).Msg("UpdateScheduleTime failed")
	}
	return err
}

func DeactivateSchedule(scheduleID string) error {
	_, err := DB.Exec(`
		UPDATE schedules
		   SET active = false,
		       updated_at = now()
		 WHERE id = $1;`, scheduleID)
	if err != nil {
		log.Error().Err(err).Str("schedule_id", scheduleID).Msg("DeactivateSchedule failed")
	}
	return err
}

// UpsertAlwaysSchedule replaces the group's 'always' record with a fresh one
// so the startup catch-up pass replays the latest ad-hoc broadcast.
func UpsertAlwaysSchedule(groupID string, priority int) (model.Schedule, error) {
	tx, err := DB.Beginx()
	if err != nil {
		log.Error().Err(err).Msg("UpsertAlwaysSchedule begin failed")
		return model.Schedule{}, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schedules WHERE group_id = $1 AND repeat = 'always';`, groupID); err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("UpsertAlwaysSchedule delete failed")
		return model.Schedule{}, err
	}

	var s model.Schedule
	const q = `
	INSERT INTO schedules (id, group_id, start_time, end_time, repeat, priority, active, created_at, updated_at)
	VALUES ($1, $2, now(), NULL, 'always', $3, true, now(), now())
	RETURNING id, group_id, start_time, end_time, repeat, priority, active, created_at, updated_at;`
	if err := tx.Get(&s, q, uuid.NewString(), groupID, priority); err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("UpsertAlwaysSchedule insert failed")
		return model.Schedule{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Schedule{}, fmt.Errorf("commit always schedule: %w", err)
	}
	return s, nil
}

// exposes a Store interface that is passed to API calls and to the engine
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hikari-signage/hikari/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)

	// group functions
	CreateGroup(name string) (model.Group, error)
	ListGroups() ([]model.Group, error)
	GetGroupByID(groupID string) (model.Group, error)
	DeleteGroup(groupID string) error

	// schedule functions
	CreateSchedule(groupID string, start time.Time, end *time.Time, repeat model.Repeat, priority int) (model.Schedule, error)
	ListSchedules() ([]model.ScheduleWithGroup, error)
	GetSchedule(scheduleID string) (model.Schedule, error)
	DeleteSchedule(scheduleID string) error

	// scheduling engine functions
	ListOverdueActive(now time.Time) ([]model.Schedule, error)
	ListWindowActive(from, to time.Time) ([]model.Schedule, error)
	UpdateScheduleTime(scheduleID string, start time.Time, active bool) error
	DeactivateSchedule(scheduleID string) error
	UpsertAlwaysSchedule(groupID string, priority int) (model.Schedule, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore() Store {
	return &pgStore{db: DB}
}

func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	return CreateUser(email, hashedPassword, name)
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	return GetUserByEmail(email)
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	return GetUserByID(id)
}

func (s *pgStore) CreateGroup(name string) (model.Group, error) {
	return CreateGroup(name)
}

func (s *pgStore) ListGroups() ([]model.Group, error) {
	return ListGroups()
}

func (s *pgStore) GetGroupByID(groupID string) (model.Group, error) {
	return GetGroupByID(groupID)
}

func (s *pgStore) DeleteGroup(groupID string) error {
	return DeleteGroup(groupID)
}

func (s *pgStore) CreateSchedule(groupID string, start time.Time, end *time.Time, repeat model.Repeat, priority int) (model.Schedule, error) {
	return CreateSchedule(groupID, start, end, repeat, priority)
}

func (s *pgStore) ListSchedules() ([]model.ScheduleWithGroup, error) {
	return ListSchedules()
}

func (s *pgStore) GetSchedule(scheduleID string) (model.Schedule, error) {
	return GetSchedule(scheduleID)
}

func (s *pgStore) DeleteSchedule(scheduleID string) error {
	return DeleteSchedule(scheduleID)
}

func (s *pgStore) ListOverdueActive(now time.Time) ([]model.Schedule, error) {
	return ListOverdueActive(now)
}

func (s *pgStore) ListWindowActive(from, to time.Time) ([]model.Schedule, error) {
	return ListWindowActive(from, to)
}

func (s *pgStore) UpdateScheduleTime(scheduleID string, start time.Time, active bool) error {
	return UpdateScheduleTime(scheduleID, start, active)
}

func (s *pgStore) DeactivateSchedule(scheduleID string) error {
	return DeactivateSchedule(scheduleID)
}

func (s *pgStore) UpsertAlwaysSchedule(groupID string, priority int) (model.Schedule, error) {
	return UpsertAlwaysSchedule(groupID, priority)
}

package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hikari-signage/hikari/internal/auth"
	"github.com/hikari-signage/hikari/internal/db"
	"github.com/hikari-signage/hikari/internal/model"
	"github.com/hikari-signage/hikari/internal/timeline"
)

type createScheduleRequest struct {
	GroupID   string  `json:"group_id" binding:"required"`
	StartTime string  `json:"start_time" binding:"required"`
	EndTime   *string `json:"end_time"`
	Repeat    *string `json:"repeat"`
	Priority  *int    `json:"priority"`
}

// scheduleResponse mirrors model.Schedule but flattens times to RFC3339
type scheduleResponse struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"group_id"`
	GroupName string  `json:"group_name,omitempty"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Repeat    string  `json:"repeat"`
	Priority  int     `json:"priority"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type ScheduleController struct {
	store       db.Store
	timelineCfg timeline.Config
}

func NewScheduleController(store db.Store, timelineCfg timeline.Config) *ScheduleController {
	return &ScheduleController{store: store, timelineCfg: timelineCfg}
}

func RegisterScheduleRoutes(r gin.IRoutes, store db.Store, timelineCfg timeline.Config) {
	ctl := NewScheduleController(store, timelineCfg)
	r.GET("/schedules", ctl.listSchedules)
	r.POST("/schedules", ctl.createSchedule)
	r.DELETE("/schedules/:id", ctl.deleteSchedule)

	// calendar feed for the timeline view
	r.GET("/schedules/timeline", ctl.timelineForDate)
}

// GET /api/admin/schedules
func (s *ScheduleController) listSchedules(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	list, err := s.store.ListSchedules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list schedules"})
		return
	}
	out := make([]scheduleResponse, len(list))
	for i, it := range list {
		out[i] = toScheduleResponse(it.Schedule, it.GroupName)
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/admin/schedules
func (s *ScheduleController) createSchedule(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id and start_time are required"})
		return
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_time must be RFC3339"})
		return
	}
	var end *time.Time
	if req.EndTime != nil && *req.EndTime != "" {
		t, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_time must be RFC3339"})
			return
		}
		end = &t
	}

	repeat := model.RepeatNone
	if req.Repeat != nil && *req.Repeat != "" {
		repeat = model.Repeat(*req.Repeat)
		switch repeat {
		case model.RepeatNone, model.RepeatDaily, model.RepeatWeekly, model.RepeatAlways:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid repeat"})
			return
		}
	}

	priority := 0
	if req.Priority != nil {
		priority = *req.Priority
	}
	if priority < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be non-negative"})
		return
	}

	schedule, err := s.store.CreateSchedule(req.GroupID, start, end, repeat, priority)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create schedule"})
		return
	}
	c.JSON(http.StatusCreated, toScheduleResponse(schedule, ""))
}

// DELETE /api/admin/schedules/:id
func (s *ScheduleController) deleteSchedule(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := s.store.DeleteSchedule(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete schedule"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/admin/schedules/timeline?date=YYYY-MM-DD
func (s *ScheduleController) timelineForDate(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	list, err := s.store.ListSchedules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list schedules"})
		return
	}
	schedules := make([]model.Schedule, len(list))
	for i, it := range list {
		schedules[i] = it.Schedule
	}

	slots := timeline.ProjectDay(schedules, date, s.timelineCfg)
	timeline.AssignLanes(slots, s.timelineCfg)
	c.JSON(http.StatusOK, gin.H{
		"date":  date.Format("2006-01-02"),
		"slots": slots,
	})
}

func toScheduleResponse(s model.Schedule, groupName string) scheduleResponse {
	resp := scheduleResponse{
		ID:        s.ID,
		GroupID:   s.GroupID,
		GroupName: groupName,
		StartTime: s.StartTime.Format(time.RFC3339),
		Repeat:    string(s.Repeat),
		Priority:  s.Priority,
		Active:    s.Active,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
	if s.EndTime != nil {
		v := s.EndTime.Format(time.RFC3339)
		resp.EndTime = &v
	}
	return resp
}

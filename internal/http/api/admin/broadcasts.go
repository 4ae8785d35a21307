package admin

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hikari-signage/hikari/internal/auth"
	"github.com/hikari-signage/hikari/internal/broadcast"
	"github.com/hikari-signage/hikari/internal/db"
)

type broadcastRequest struct {
	GroupID  string `json:"group_id" binding:"required"`
	Priority int    `json:"priority"`
}

// broadcastResponse lets the operator tell "no displays connected" apart from
// "suppressed by a higher-priority instruction".
type broadcastResponse struct {
	SentCount      int `json:"sent_count"`
	ConnectedCount int `json:"connected_count"`
}

type BroadcastController struct {
	store db.Store
	ch    *broadcast.Channel
}

func NewBroadcastController(store db.Store, ch *broadcast.Channel) *BroadcastController {
	return &BroadcastController{store: store, ch: ch}
}

func RegisterBroadcastRoutes(r gin.IRoutes, store db.Store, ch *broadcast.Channel) {
	ctl := NewBroadcastController(store, ch)
	r.GET("/broadcasts", ctl.connectedCount)
	r.POST("/broadcasts", ctl.broadcastNow)
	r.POST("/broadcasts/reset", ctl.resetPriorities)
}

// GET /api/admin/broadcasts
func (b *BroadcastController) connectedCount(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected_count": b.ch.ConnectedCount()})
}

// POST /api/admin/broadcasts
func (b *BroadcastController) broadcastNow(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Priority < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "priority must be non-negative"})
		return
	}
	if _, err := b.store.GetGroupByID(req.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not look up group"})
		return
	}

	// leave an 'always' record behind so the catch-up pass replays this
	// broadcast after a restart
	if _, err := b.store.UpsertAlwaysSchedule(req.GroupID, req.Priority); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record broadcast"})
		return
	}

	sent := b.ch.Broadcast(req.GroupID, req.Priority)
	log.Info().Str("group_id", req.GroupID).Int("priority", req.Priority).
		Int("sent", sent).Msg("ad-hoc broadcast issued")

	c.JSON(http.StatusOK, broadcastResponse{
		SentCount:      sent,
		ConnectedCount: b.ch.ConnectedCount(),
	})
}

// POST /api/admin/broadcasts/reset
func (b *BroadcastController) resetPriorities(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	b.ch.ResetAllPriorities()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

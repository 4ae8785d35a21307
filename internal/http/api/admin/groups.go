package admin

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hikari-signage/hikari/internal/auth"
	"github.com/hikari-signage/hikari/internal/db"
)

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type groupResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type GroupController struct {
	store db.Store
}

func RegisterGroupRoutes(r gin.IRoutes, store db.Store) {
	ctl := &GroupController{store: store}
	r.GET("/groups", ctl.listGroups)
	r.POST("/groups", ctl.createGroup)
	r.DELETE("/groups/:id", ctl.deleteGroup)
}

// GET /api/admin/groups
func (g *GroupController) listGroups(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	groups, err := g.store.ListGroups()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]groupResponse, len(groups))
	for i, it := range groups {
		out[i] = groupResponse{
			ID:        it.ID,
			Name:      it.Name,
			CreatedAt: it.CreatedAt.Format(time.RFC3339),
			UpdatedAt: it.UpdatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/admin/groups
func (g *GroupController) createGroup(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group, err := g.store.CreateGroup(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}
	c.JSON(http.StatusCreated, groupResponse{
		ID:        group.ID,
		Name:      group.Name,
		CreatedAt: group.CreatedAt.Format(time.RFC3339),
		UpdatedAt: group.UpdatedAt.Format(time.RFC3339),
	})
}

// DELETE /api/admin/groups/:id
func (g *GroupController) deleteGroup(c *gin.Context) {
	_, ok := auth.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := g.store.DeleteGroup(c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete group"})
		return
	}
	c.Status(http.StatusNoContent)
}

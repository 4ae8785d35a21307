package display

import (
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"

	redisclient "github.com/hikari-signage/hikari/internal/redis"
)

// POST /api/display/pair
func requestPairing(c *gin.Context) {
	var req struct {
		DeviceID string `json:"device_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	code := generatePairCode()
	if err := redisclient.SetPairingCode(c, code, req.DeviceID, 5*time.Minute); err != nil {
		c.JSON(500, gin.H{"error": "internal error"})
		return
	}

	c.JSON(200, gin.H{"code": code})
}

func generatePairCode() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, 6)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

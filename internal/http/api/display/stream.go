package display

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hikari-signage/hikari/internal/broadcast"
	redisclient "github.com/hikari-signage/hikari/internal/redis"
)

const (
	keepAliveInterval = 5 * time.Second
	presenceTTL       = 30 * time.Second
)

type StreamController struct {
	ch *broadcast.Channel
}

func RegisterDisplayRoutes(r gin.IRoutes, ch *broadcast.Channel) {
	ctl := &StreamController{ch: ch}
	r.GET("/:code/events", ctl.stream)
	r.GET("/:code/ws", ctl.socket)
	r.POST("/pair", requestPairing)
}

// GET /api/display/:code/events
//
// One-way server-to-display push: the display holds this stream open and
// receives {groupId, priority} events, with keep-alive comments in between.
// Registering replays the display's last known state immediately.
func (s *StreamController) stream(c *gin.Context) {
	code := c.Param("code")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	pusher := newStreamPusher()
	s.ch.Register(code, pusher)
	defer s.ch.Unregister(code)

	log.Info().Str("display", code).Msg("display stream connected")
	redisclient.MarkDisplaySeen(c.Request.Context(), code, presenceTTL)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			log.Info().Str("display", code).Msg("display stream disconnected")
			return
		case cmd := <-pusher.events:
			payload, err := json.Marshal(cmd)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
				return
			}
			c.Writer.Flush()
		case <-keepAlive.C:
			if _, err := fmt.Fprint(c.Writer, ": keep-alive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
			redisclient.MarkDisplaySeen(c.Request.Context(), code, presenceTTL)
		}
	}
}

package display

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	redisclient "github.com/hikari-signage/hikari/internal/redis"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/display/:code/ws
//
// Same contract as the SSE stream for players that prefer a websocket:
// {groupId, priority} frames out, pings as keep-alive, replay on connect.
func (s *StreamController) socket(c *gin.Context) {
	code := c.Param("code")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("display", code).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	pusher := newStreamPusher()
	s.ch.Register(code, pusher)
	defer s.ch.Unregister(code)

	log.Info().Str("display", code).Msg("display socket connected")
	redisclient.MarkDisplaySeen(c.Request.Context(), code, presenceTTL)

	// the display never sends data; the read loop only notices the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-closed:
			log.Info().Str("display", code).Msg("display socket disconnected")
			return
		case cmd := <-pusher.events:
			if err := conn.WriteJSON(cmd); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			redisclient.MarkDisplaySeen(c.Request.Context(), code, presenceTTL)
		}
	}
}

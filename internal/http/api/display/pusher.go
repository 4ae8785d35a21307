package display

import (
	"errors"

	"github.com/hikari-signage/hikari/internal/broadcast"
)

var errSlowDisplay = errors.New("display event buffer full")

// streamPusher buffers commands for one connection so a stalled display never
// holds up a broadcast pass. A full buffer is treated as a dead connection.
type streamPusher struct {
	events chan broadcast.Command
}

func newStreamPusher() *streamPusher {
	return &streamPusher{events: make(chan broadcast.Command, 8)}
}

func (p *streamPusher) Push(cmd broadcast.Command) error {
	select {
	case p.events <- cmd:
		return nil
	default:
		return errSlowDisplay
	}
}

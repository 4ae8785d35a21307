// Package broadcast owns the live display connections and the priority
// arbitration state deciding what each display is currently showing.
package broadcast

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hikari-signage/hikari/internal/metrics"
)

// SentinelPriority is lower than any valid priority, so the first command of
// any priority always wins against a fresh or reset connection.
const SentinelPriority = -1

// Command is the payload pushed to a display.
type Command struct {
	GroupID  string `json:"groupId"`
	Priority int    `json:"priority"`
}

// Pusher writes a command to one display's transport. Implementations must not
// block: a stalled display may not hold up delivery to the others, so pushers
// buffer internally and report an error when the buffer is full.
type Pusher interface {
	Push(cmd Command) error
}

type connection struct {
	pusher          Pusher
	currentGroupID  string
	currentPriority int
}

// Channel tracks one live connection per display, remembers the last command
// intended for each display even while it is disconnected, and applies the
// arbitration rule on every send. Constructed once at process start and shared
// by the engine and the transport handlers.
type Channel struct {
	mu        sync.Mutex
	conns     map[string]*connection
	lastKnown map[string]Command
	global    *Command
	m         *metrics.Metrics
}

func NewChannel(m *metrics.Metrics) *Channel {
	return &Channel{
		conns:     make(map[string]*connection),
		lastKnown: make(map[string]Command),
		m:         m,
	}
}

// Register creates a connection for the display and replays the most specific
// known state: the display's own remembered command, else the global one. A
// replay failure is swallowed; the connection stays registered and either a
// later send succeeds or the transport's own error path unregisters it.
func (ch *Channel) Register(displayID string, p Pusher) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	conn := &connection{pusher: p, currentPriority: SentinelPriority}
	ch.conns[displayID] = conn
	ch.m.SetConnectedDisplays(len(ch.conns))

	replay, ok := ch.lastKnown[displayID]
	if !ok {
		if ch.global == nil {
			return
		}
		replay = *ch.global
	}
	if err := p.Push(replay); err != nil {
		log.Error().Err(err).Str("display_id", displayID).Msg("replay push failed")
		return
	}
	// the replayed priority protects the fresh connection from being
	// overridden by a lower-priority source
	conn.currentGroupID = replay.GroupID
	conn.currentPriority = replay.Priority
	log.Info().Str("display_id", displayID).Str("group_id", replay.GroupID).
		Int("priority", replay.Priority).Msg("display registered, state replayed")
}

// Unregister removes the display's connection. Unknown ids are a no-op.
func (ch *Channel) Unregister(displayID string) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	delete(ch.conns, displayID)
	ch.m.SetConnectedDisplays(len(ch.conns))
}

// Send delivers a command to one display if it passes arbitration. The intent
// is remembered for the display regardless of the outcome, so a reconnect or a
// reset-then-retry still converges on it.
func (ch *Channel) Send(displayID, groupID string, priority int) bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	cmd := Command{GroupID: groupID, Priority: priority}
	ch.lastKnown[displayID] = cmd
	return ch.sendLocked(displayID, cmd)
}

// Broadcast sends a command to every connected display and returns how many
// deliveries passed arbitration. The global state is updated unconditionally;
// it is what displays with no per-display history replay on connect.
func (ch *Channel) Broadcast(groupID string, priority int) int {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	cmd := Command{GroupID: groupID, Priority: priority}
	ch.global = &cmd

	sent := 0
	for displayID := range ch.conns {
		ch.lastKnown[displayID] = cmd
		if ch.sendLocked(displayID, cmd) {
			sent++
		}
	}
	return sent
}

// ConnectedCount returns the size of the live connection set.
func (ch *Channel) ConnectedCount() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.conns)
}

// ResetAllPriorities lowers every remembered priority to the sentinel: live
// connections, per-display states and the global state. Nothing is redelivered;
// the next send of any priority >= 0 is simply guaranteed to pass arbitration.
func (ch *Channel) ResetAllPriorities() {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	for _, conn := range ch.conns {
		conn.currentPriority = SentinelPriority
	}
	for displayID, cmd := range ch.lastKnown {
		cmd.Priority = SentinelPriority
		ch.lastKnown[displayID] = cmd
	}
	if ch.global != nil {
		ch.global.Priority = SentinelPriority
	}
}

// sendLocked applies the arbitration rule to one connection. Equal priority
// wins: the periodic pass fires in descending priority order and relies on
// last-writer-wins to settle ties, and a manual re-broadcast at the same
// priority must still take effect.
func (ch *Channel) sendLocked(displayID string, cmd Command) bool {
	conn, ok := ch.conns[displayID]
	if !ok {
		return false
	}
	if cmd.Priority < conn.currentPriority {
		ch.m.IncCommandsSuppressed()
		return false
	}
	if err := conn.pusher.Push(cmd); err != nil {
		// treat a failed write as a disconnect
		log.Error().Err(err).Str("display_id", displayID).Msg("push failed, dropping connection")
		delete(ch.conns, displayID)
		ch.m.SetConnectedDisplays(len(ch.conns))
		return false
	}
	conn.currentGroupID = cmd.GroupID
	conn.currentPriority = cmd.Priority
	ch.m.IncCommandsDelivered()
	return true
}

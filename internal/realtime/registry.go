package realtime

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/tedstonne/takkr-sub000/internal/utils"
)

// Flusher is the subset of http.Flusher the registry needs; the events
// controller passes the response writer, tests pass plain buffers.
type Flusher interface {
	Flush()
}

// connection is one subscribed event stream. Writes to the underlying
// writer are serialized through mu so a broadcast and a heartbeat never
// interleave inside a frame.
type connection struct {
	id      uuid.UUID
	boardID int64
	mu      sync.Mutex
	w       io.Writer
	flusher Flusher
}

func (c *connection) send(frame func(io.Writer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := frame(c.w); err != nil {
		return err
	}
	if c.flusher != nil {
		c.flusher.Flush()
	}
	return nil
}

// Registry tracks live event-stream connections per board and fans
// events out to them. A connection whose write fails is silently
// dropped; the client recovers by reconnecting and refetching state.
type Registry struct {
	mu    sync.RWMutex
	conns map[int64]map[uuid.UUID]*connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[int64]map[uuid.UUID]*connection)}
}

// Connect registers a writer for a board's events and returns the
// connection id used to disconnect it later.
func (r *Registry) Connect(boardID int64, w io.Writer) uuid.UUID {
	c := &connection{id: uuid.New(), boardID: boardID, w: w}
	if f, ok := w.(Flusher); ok {
		c.flusher = f
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[boardID] == nil {
		r.conns[boardID] = make(map[uuid.UUID]*connection)
	}
	r.conns[boardID][c.id] = c

	utils.Logger.Debugf("[realtime] connection %s joined board %d", c.id, boardID)
	return c.id
}

// Disconnect removes a connection. Safe to call for an id already
// pruned by a failed broadcast write.
func (r *Registry) Disconnect(boardID int64, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(boardID, id)
}

func (r *Registry) dropLocked(boardID int64, id uuid.UUID) {
	set, ok := r.conns[boardID]
	if !ok {
		return
	}
	if _, ok := set[id]; !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.conns, boardID)
	}
	utils.Logger.Debugf("[realtime] connection %s left board %d", id, boardID)
}

// Broadcast sends one event to every connection on the board. The
// payload is marshaled once; connections are snapshotted under the read
// lock and written to outside it, so a slow or dead client never blocks
// the registry.
func (r *Registry) Broadcast(boardID int64, kind string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		utils.Logger.WithError(err).Errorf("[realtime] marshaling %s event", kind)
		return
	}

	r.mu.RLock()
	targets := make([]*connection, 0, len(r.conns[boardID]))
	for _, c := range r.conns[boardID] {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	var failed []uuid.UUID
	for _, c := range targets {
		err := c.send(func(w io.Writer) error {
			return WriteEvent(w, kind, string(body))
		})
		if err != nil {
			failed = append(failed, c.id)
		}
	}

	if len(failed) > 0 {
		r.mu.Lock()
		for _, id := range failed {
			r.dropLocked(boardID, id)
		}
		r.mu.Unlock()
		utils.Logger.Debugf("[realtime] pruned %d dead connections from board %d", len(failed), boardID)
	}
}

// Heartbeat writes a comment frame to every connection on every board,
// pruning any whose writer has gone away.
func (r *Registry) Heartbeat() {
	type target struct {
		boardID int64
		conn    *connection
	}
	r.mu.RLock()
	var targets []target
	for boardID, set := range r.conns {
		for _, c := range set {
			targets = append(targets, target{boardID, c})
		}
	}
	r.mu.RUnlock()

	type dead struct {
		boardID int64
		id      uuid.UUID
	}
	var failed []dead
	for _, t := range targets {
		if err := t.conn.send(WriteHeartbeat); err != nil {
			failed = append(failed, dead{t.boardID, t.conn.id})
		}
	}

	if len(failed) > 0 {
		r.mu.Lock()
		for _, d := range failed {
			r.dropLocked(d.boardID, d.id)
		}
		r.mu.Unlock()
	}
}

// Count reports the live connections for a board.
func (r *Registry) Count(boardID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[boardID])
}

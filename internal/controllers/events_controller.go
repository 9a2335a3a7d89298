package controllers

import (
	"net/http"

	"github.com/tedstonne/takkr-sub000/internal/middleware"
	"github.com/tedstonne/takkr-sub000/internal/realtime"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

// EventsController serves the per-board event stream. Heartbeats are
// driven by a single registry-wide ticker (started at boot), so the
// handler only has to register the connection and block until the
// client goes away.
type EventsController struct {
	registry *realtime.Registry
}

func NewEventsController(registry *realtime.Registry) *EventsController {
	return &EventsController{registry: registry}
}

func (c *EventsController) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Streaming unsupported", nil,
		)
		return
	}

	board := middleware.Board(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Tell buffering reverse proxies to pass frames through immediately.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id := c.registry.Connect(board.ID, w)
	defer c.registry.Disconnect(board.ID, id)

	utils.Logger.Debugf("[events] stream %s open on board %s", id, board.Slug)

	// Block until the client disconnects. Broadcasts and heartbeats are
	// written by the registry; a failed write also prunes the
	// connection, and Disconnect tolerates the double removal.
	<-r.Context().Done()

	utils.Logger.Debugf("[events] stream %s closed on board %s", id, board.Slug)
}

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tedstonne/takkr-sub000/internal/dtos"
	"github.com/tedstonne/takkr-sub000/internal/middleware"
	"github.com/tedstonne/takkr-sub000/internal/services"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

type NoteController struct {
	notes services.NoteService
}

func NewNoteController(notes services.NoteService) *NoteController {
	return &NoteController{notes: notes}
}

func noteIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["noteID"], 10, 64)
	if err != nil || id <= 0 {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid note id", nil,
		)
		return 0, false
	}
	return id, true
}

func (c *NoteController) Create(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid note fields", nil, err,
		)
		return
	}

	note, err := c.notes.Create(r.Context(), middleware.Board(r.Context()), services.NoteInput{
		Content: req.Content,
		Color:   req.Color,
		X:       req.X,
		Y:       req.Y,
	})
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to create note", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.NoteResponse{Note: *note})
}

// Update replaces the editable fields of a note. `?silent=true`
// suppresses the broadcast, which drag interactions use to avoid
// echoing every intermediate position back to the stream.
func (c *NoteController) Update(w http.ResponseWriter, r *http.Request) {
	noteID, ok := noteIDFromRequest(w, r)
	if !ok {
		return
	}

	var req dtos.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid note fields", nil, err,
		)
		return
	}

	silent := r.URL.Query().Get("silent") == "true"
	note, err := c.notes.Update(r.Context(), middleware.Board(r.Context()), noteID, services.NoteInput{
		Content: req.Content,
		Color:   req.Color,
		X:       req.X,
		Y:       req.Y,
	}, silent)
	if err != nil {
		c.respondNoteError(w, "Failed to update note", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NoteResponse{Note: *note})
}

func (c *NoteController) BringToFront(w http.ResponseWriter, r *http.Request) {
	noteID, ok := noteIDFromRequest(w, r)
	if !ok {
		return
	}

	note, err := c.notes.BringToFront(r.Context(), middleware.Board(r.Context()), noteID)
	if err != nil {
		c.respondNoteError(w, "Failed to raise note", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.NoteResponse{Note: *note})
}

func (c *NoteController) Delete(w http.ResponseWriter, r *http.Request) {
	noteID, ok := noteIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := c.notes.Delete(r.Context(), middleware.Board(r.Context()), noteID); err != nil {
		c.respondNoteError(w, "Failed to delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *NoteController) respondNoteError(w http.ResponseWriter, publicMsg string, err error) {
	if errors.Is(err, utils.ErrNoteNotFound) {
		utils.RespondErrorWithCode(
			w, http.StatusNotFound, utils.ErrCodeNotFound, "Note not found", nil,
		)
		return
	}
	utils.RespondErrorWithCode(
		w, http.StatusInternalServerError, utils.ErrCodeInternal, publicMsg, nil, err,
	)
}

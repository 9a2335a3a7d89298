package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/tedstonne/takkr-sub000/internal/dtos"
	"github.com/tedstonne/takkr-sub000/internal/middleware"
	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/services"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

type BoardController struct {
	boards services.BoardService
}

func NewBoardController(boards services.BoardService) *BoardController {
	return &BoardController{boards: boards}
}

func (c *BoardController) Create(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid board name", nil, err,
		)
		return
	}

	board, err := c.boards.Create(r.Context(), middleware.Username(r.Context()), req.Name)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to create board", nil, err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.BoardResponse{Board: *board})
}

func (c *BoardController) List(w http.ResponseWriter, r *http.Request) {
	boards, err := c.boards.ListForUser(r.Context(), middleware.Username(r.Context()))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list boards", nil, err,
		)
		return
	}
	if boards == nil {
		boards = []models.Board{}
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.BoardListResponse{Boards: boards})
}

// State returns the board with all notes and members. Clients call it
// on load and after an event-stream reconnect; the stream itself only
// carries deltas.
func (c *BoardController) State(w http.ResponseWriter, r *http.Request) {
	board := middleware.Board(r.Context())

	b, notes, members, err := c.boards.State(r.Context(), board)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load board", nil, err,
		)
		return
	}

	resp := dtos.BoardStateResponse{Board: *b, Notes: notes, Members: members}
	if resp.Notes == nil {
		resp.Notes = []models.Note{}
	}
	if resp.Members == nil {
		resp.Members = []models.Member{}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (c *BoardController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.boards.Delete(r.Context(), middleware.Board(r.Context())); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to delete board", nil, err,
		)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tedstonne/takkr-sub000/internal/dtos"
	"github.com/tedstonne/takkr-sub000/internal/middleware"
	"github.com/tedstonne/takkr-sub000/internal/services"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

type MemberController struct {
	members services.MemberService
}

func NewMemberController(members services.MemberService) *MemberController {
	return &MemberController{members: members}
}

func (c *MemberController) Add(w http.ResponseWriter, r *http.Request) {
	var req dtos.AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err,
		)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid username", nil, err,
		)
		return
	}

	member, err := c.members.Add(r.Context(), middleware.Board(r.Context()), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrUserNotFound):
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound, "User not found", nil,
			)
		case errors.Is(err, utils.ErrMemberExists):
			utils.RespondErrorWithCode(
				w, http.StatusConflict, utils.ErrCodeConflict, "User already has access to this board", nil,
			)
		default:
			utils.RespondErrorWithCode(
				w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to add member", nil, err,
			)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.MemberResponse{Member: *member})
}

func (c *MemberController) Remove(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	err := c.members.Remove(r.Context(), middleware.Board(r.Context()), username)
	if err != nil {
		if errors.Is(err, utils.ErrMemberNotFound) {
			utils.RespondErrorWithCode(
				w, http.StatusNotFound, utils.ErrCodeNotFound, "Member not found", nil,
			)
			return
		}
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to remove member", nil, err,
		)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

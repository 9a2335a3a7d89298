package dtos

import "github.com/tedstonne/takkr-sub000/internal/models"

type CreateBoardRequest struct {
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type BoardResponse struct {
	Board models.Board `json:"board"`
}

type BoardListResponse struct {
	Boards []models.Board `json:"boards"`
}

// BoardStateResponse is the full-state fetch a client performs on load
// or reconnect; it, not the event stream, is the source of truth.
type BoardStateResponse struct {
	Board   models.Board    `json:"board"`
	Notes   []models.Note   `json:"notes"`
	Members []models.Member `json:"members"`
}

type CreateNoteRequest struct {
	Content string `json:"content" validate:"max=4000"`
	Color   string `json:"color" validate:"omitempty,hexcolor"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// UpdateNoteRequest carries a full field replacement: omitted fields
// clobber to their zero value, matching last-write-wins semantics.
type UpdateNoteRequest struct {
	Content string `json:"content" validate:"max=4000"`
	Color   string `json:"color" validate:"omitempty,hexcolor"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

type NoteResponse struct {
	Note models.Note `json:"note"`
}

type AddMemberRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
}

type MemberResponse struct {
	Member models.Member `json:"member"`
}

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tedstonne/takkr-sub000/internal/middleware"
	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/services"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

type stubNotes struct {
	create       func(in services.NoteInput) (*models.Note, error)
	update       func(noteID int64, in services.NoteInput, silent bool) (*models.Note, error)
	delete       func(noteID int64) error
	bringToFront func(noteID int64) (*models.Note, error)
}

func (s *stubNotes) Create(_ context.Context, _ *models.Board, in services.NoteInput) (*models.Note, error) {
	return s.create(in)
}

func (s *stubNotes) Update(_ context.Context, _ *models.Board, noteID int64, in services.NoteInput, silent bool) (*models.Note, error) {
	return s.update(noteID, in, silent)
}

func (s *stubNotes) Delete(_ context.Context, _ *models.Board, noteID int64) error {
	return s.delete(noteID)
}

func (s *stubNotes) BringToFront(_ context.Context, _ *models.Board, noteID int64) (*models.Note, error) {
	return s.bringToFront(noteID)
}

func boardCtxRequest(method, target, body string, vars map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req = mux.SetURLVars(req, vars)
	board := &models.Board{ID: 42, Slug: "sprint-wall", OwnerUsername: "alice"}
	ctx := context.WithValue(req.Context(), middleware.ContextKeyBoard, board)
	ctx = context.WithValue(ctx, middleware.ContextKeyUsername, "alice")
	return req.WithContext(ctx)
}

func TestNoteCreate(t *testing.T) {
	c := NewNoteController(&stubNotes{
		create: func(in services.NoteInput) (*models.Note, error) {
			require.Equal(t, "hello", in.Content)
			return &models.Note{ID: 1, BoardID: 42, Content: in.Content, Z: 1}, nil
		},
	})

	req := boardCtxRequest(http.MethodPost, "/api/v1/boards/sprint-wall/notes",
		`{"content":"hello","x":10,"y":20}`, map[string]string{"slug": "sprint-wall"})
	rec := httptest.NewRecorder()
	c.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"hello"`)
}

func TestNoteCreateRejectsBadColor(t *testing.T) {
	c := NewNoteController(&stubNotes{})

	req := boardCtxRequest(http.MethodPost, "/api/v1/boards/sprint-wall/notes",
		`{"content":"x","color":"notacolor"}`, map[string]string{"slug": "sprint-wall"})
	rec := httptest.NewRecorder()
	c.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoteUpdateSilentFlag(t *testing.T) {
	var gotSilent bool
	c := NewNoteController(&stubNotes{
		update: func(noteID int64, in services.NoteInput, silent bool) (*models.Note, error) {
			gotSilent = silent
			return &models.Note{ID: noteID, BoardID: 42, Content: in.Content}, nil
		},
	})

	req := boardCtxRequest(http.MethodPut, "/api/v1/boards/sprint-wall/notes/5?silent=true",
		`{"content":"drag","x":300,"y":400}`,
		map[string]string{"slug": "sprint-wall", "noteID": "5"})
	rec := httptest.NewRecorder()
	c.Update(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotSilent)
}

func TestNoteUpdateDefaultIsLoud(t *testing.T) {
	var gotSilent bool
	c := NewNoteController(&stubNotes{
		update: func(noteID int64, in services.NoteInput, silent bool) (*models.Note, error) {
			gotSilent = silent
			return &models.Note{ID: noteID, BoardID: 42}, nil
		},
	})

	req := boardCtxRequest(http.MethodPut, "/api/v1/boards/sprint-wall/notes/5",
		`{"content":"edit"}`, map[string]string{"slug": "sprint-wall", "noteID": "5"})
	rec := httptest.NewRecorder()
	c.Update(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, gotSilent)
}

func TestNoteUpdateUnknownNote(t *testing.T) {
	c := NewNoteController(&stubNotes{
		update: func(int64, services.NoteInput, bool) (*models.Note, error) {
			return nil, utils.ErrNoteNotFound
		},
	})

	req := boardCtxRequest(http.MethodPut, "/api/v1/boards/sprint-wall/notes/999",
		`{"content":"x"}`, map[string]string{"slug": "sprint-wall", "noteID": "999"})
	rec := httptest.NewRecorder()
	c.Update(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNoteInvalidID(t *testing.T) {
	c := NewNoteController(&stubNotes{})

	req := boardCtxRequest(http.MethodDelete, "/api/v1/boards/sprint-wall/notes/abc",
		"", map[string]string{"slug": "sprint-wall", "noteID": "abc"})
	rec := httptest.NewRecorder()
	c.Delete(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNoteDelete(t *testing.T) {
	c := NewNoteController(&stubNotes{
		delete: func(noteID int64) error {
			require.Equal(t, int64(5), noteID)
			return nil
		},
	})

	req := boardCtxRequest(http.MethodDelete, "/api/v1/boards/sprint-wall/notes/5",
		"", map[string]string{"slug": "sprint-wall", "noteID": "5"})
	rec := httptest.NewRecorder()
	c.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestNoteBringToFront(t *testing.T) {
	c := NewNoteController(&stubNotes{
		bringToFront: func(noteID int64) (*models.Note, error) {
			return &models.Note{ID: noteID, BoardID: 42, Z: 9}, nil
		},
	})

	req := boardCtxRequest(http.MethodPost, "/api/v1/boards/sprint-wall/notes/5/front",
		"", map[string]string{"slug": "sprint-wall", "noteID": "5"})
	rec := httptest.NewRecorder()
	c.BringToFront(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"z":9`)
}

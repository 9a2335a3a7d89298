package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

type stubMembers struct {
	add    func(username string) (*models.Member, error)
	remove func(username string) error
}

func (s *stubMembers) Add(_ context.Context, _ *models.Board, username string) (*models.Member, error) {
	return s.add(username)
}

func (s *stubMembers) Remove(_ context.Context, _ *models.Board, username string) error {
	return s.remove(username)
}

func TestMemberAdd(t *testing.T) {
	c := NewMemberController(&stubMembers{
		add: func(username string) (*models.Member, error) {
			return &models.Member{BoardID: 42, Username: username}, nil
		},
	})

	req := boardCtxRequest(http.MethodPost, "/api/v1/boards/sprint-wall/members",
		`{"username":"bob"}`, map[string]string{"slug": "sprint-wall"})
	rec := httptest.NewRecorder()
	c.Add(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"bob"`)
}

func TestMemberAddStatusMapping(t *testing.T) {
	cases := []struct {
		svcErr error
		want   int
	}{
		{utils.ErrUserNotFound, http.StatusNotFound},
		{utils.ErrMemberExists, http.StatusConflict},
	}
	for _, tc := range cases {
		c := NewMemberController(&stubMembers{
			add: func(string) (*models.Member, error) { return nil, tc.svcErr },
		})

		req := boardCtxRequest(http.MethodPost, "/api/v1/boards/sprint-wall/members",
			`{"username":"bob"}`, map[string]string{"slug": "sprint-wall"})
		rec := httptest.NewRecorder()
		c.Add(rec, req)

		assert.Equal(t, tc.want, rec.Code, "error %v", tc.svcErr)
	}
}

func TestMemberRemove(t *testing.T) {
	c := NewMemberController(&stubMembers{
		remove: func(username string) error {
			if username != "bob" {
				return utils.ErrMemberNotFound
			}
			return nil
		},
	})

	req := boardCtxRequest(http.MethodDelete, "/api/v1/boards/sprint-wall/members/bob",
		"", map[string]string{"slug": "sprint-wall", "username": "bob"})
	rec := httptest.NewRecorder()
	c.Remove(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = boardCtxRequest(http.MethodDelete, "/api/v1/boards/sprint-wall/members/ghost",
		"", map[string]string{"slug": "sprint-wall", "username": "ghost"})
	rec = httptest.NewRecorder()
	c.Remove(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/repositories"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

const slugSuffixLength = 6

// BoardService owns board lifecycle and the full-state fetch clients
// perform on load or reconnect.
type BoardService interface {
	Create(ctx context.Context, owner, name string) (*models.Board, error)
	ListForUser(ctx context.Context, username string) ([]models.Board, error)
	// State assembles the board, its notes, and its members in one shot.
	State(ctx context.Context, board *models.Board) (*models.Board, []models.Note, []models.Member, error)
	Delete(ctx context.Context, board *models.Board) error
}

type boardService struct {
	boards  repositories.BoardRepository
	notes   repositories.NoteRepository
	members repositories.MemberRepository
}

func NewBoardService(
	boards repositories.BoardRepository,
	notes repositories.NoteRepository,
	members repositories.MemberRepository,
) BoardService {
	return &boardService{boards: boards, notes: notes, members: members}
}

func (s *boardService) Create(ctx context.Context, owner, name string) (*models.Board, error) {
	board := &models.Board{
		Slug:          newSlug(name),
		Name:          name,
		OwnerUsername: owner,
	}
	if err := s.boards.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}

	utils.Logger.Infof("[board] %q created board %s", owner, board.Slug)
	return board, nil
}

func (s *boardService) ListForUser(ctx context.Context, username string) ([]models.Board, error) {
	return s.boards.ListForUser(ctx, username)
}

func (s *boardService) State(ctx context.Context, board *models.Board) (*models.Board, []models.Note, []models.Member, error) {
	notes, err := s.notes.ListByBoard(ctx, board.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing notes: %w", err)
	}
	members, err := s.members.ListByBoard(ctx, board.ID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("listing members: %w", err)
	}
	return board, notes, members, nil
}

func (s *boardService) Delete(ctx context.Context, board *models.Board) error {
	if err := s.boards.Delete(ctx, board.ID); err != nil {
		return fmt.Errorf("deleting board: %w", err)
	}
	utils.Logger.Infof("[board] deleted board %s", board.Slug)
	return nil
}

// newSlug derives a URL-safe identifier from the board name plus a
// random suffix so equal names never collide.
func newSlug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "board"
	}
	if len(base) > 48 {
		base = strings.Trim(base[:48], "-")
	}
	return base + "-" + utils.RandomLowerString(slugSuffixLength)
}

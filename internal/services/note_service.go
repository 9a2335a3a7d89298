package services

import (
	"context"
	"fmt"

	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/realtime"
	"github.com/tedstonne/takkr-sub000/internal/repositories"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

const defaultNoteColor = "#f5e960"

// NoteInput is the caller-editable fields of a note.
type NoteInput struct {
	Content string
	Color   string
	X       int
	Y       int
}

// NoteService is the mutation pipeline for notes: persist first, then
// broadcast to the board's event stream. A mutation with silent=true
// still persists but skips the broadcast, which clients use for
// high-frequency drag updates they render locally.
type NoteService interface {
	Create(ctx context.Context, board *models.Board, in NoteInput) (*models.Note, error)
	Update(ctx context.Context, board *models.Board, noteID int64, in NoteInput, silent bool) (*models.Note, error)
	Delete(ctx context.Context, board *models.Board, noteID int64) error
	// BringToFront assigns the note a z above every other note on the
	// board.
	BringToFront(ctx context.Context, board *models.Board, noteID int64) (*models.Note, error)
}

type noteService struct {
	notes    repositories.NoteRepository
	registry *realtime.Registry
}

func NewNoteService(notes repositories.NoteRepository, registry *realtime.Registry) NoteService {
	return &noteService{notes: notes, registry: registry}
}

func (s *noteService) Create(ctx context.Context, board *models.Board, in NoteInput) (*models.Note, error) {
	maxZ, err := s.notes.MaxZ(ctx, board.ID)
	if err != nil {
		return nil, fmt.Errorf("reading top z: %w", err)
	}

	color := in.Color
	if color == "" {
		color = defaultNoteColor
	}
	note := &models.Note{
		BoardID: board.ID,
		Content: in.Content,
		Color:   color,
		X:       in.X,
		Y:       in.Y,
		Z:       maxZ + 1,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.registry.Broadcast(board.ID, string(models.EventNoteCreated),
		models.NoteCreatedPayload{Note: *note})
	return note, nil
}

func (s *noteService) Update(ctx context.Context, board *models.Board, noteID int64, in NoteInput, silent bool) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, board.ID, noteID)
	if err != nil {
		return nil, fmt.Errorf("loading note: %w", err)
	}
	if note == nil {
		return nil, utils.ErrNoteNotFound
	}

	note.Content = in.Content
	note.Color = in.Color
	if note.Color == "" {
		note.Color = defaultNoteColor
	}
	note.X = in.X
	note.Y = in.Y
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("updating note: %w", err)
	}

	if !silent {
		s.registry.Broadcast(board.ID, string(models.EventNoteUpdated),
			models.NoteUpdatedPayload{Note: *note, Replace: true})
	}
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, board *models.Board, noteID int64) error {
	deleted, err := s.notes.Delete(ctx, board.ID, noteID)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	if !deleted {
		return utils.ErrNoteNotFound
	}

	s.registry.Broadcast(board.ID, string(models.EventNoteDeleted),
		models.NoteDeletedPayload{NoteID: noteID})
	return nil
}

// BringToFront reads the board's top z and writes top+1. Two concurrent
// calls can land on the same z; ties render in id order, and the next
// raise resolves them.
func (s *noteService) BringToFront(ctx context.Context, board *models.Board, noteID int64) (*models.Note, error) {
	note, err := s.notes.GetByID(ctx, board.ID, noteID)
	if err != nil {
		return nil, fmt.Errorf("loading note: %w", err)
	}
	if note == nil {
		return nil, utils.ErrNoteNotFound
	}

	maxZ, err := s.notes.MaxZ(ctx, board.ID)
	if err != nil {
		return nil, fmt.Errorf("reading top z: %w", err)
	}

	note.Z = maxZ + 1
	if err := s.notes.SetZ(ctx, board.ID, noteID, note.Z); err != nil {
		return nil, fmt.Errorf("raising note: %w", err)
	}

	s.registry.Broadcast(board.ID, string(models.EventNoteUpdated),
		models.NoteUpdatedPayload{Note: *note, Replace: true})
	return note, nil
}

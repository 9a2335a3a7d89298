package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/tedstonne/takkr-sub000/internal/models"
)

// NoteRepository is plain keyed-record storage for notes. There is no
// optimistic concurrency token on notes: concurrent field edits are
// last write wins.
type NoteRepository interface {
	Create(ctx context.Context, n *models.Note) error
	GetByID(ctx context.Context, boardID, noteID int64) (*models.Note, error)
	Update(ctx context.Context, n *models.Note) error
	Delete(ctx context.Context, boardID, noteID int64) (bool, error)
	ListByBoard(ctx context.Context, boardID int64) ([]models.Note, error)
	MaxZ(ctx context.Context, boardID int64) (int, error)
	SetZ(ctx context.Context, boardID, noteID int64, z int) error
}

type noteRepo struct {
	db DB
}

func NewNoteRepository(db DB) NoteRepository {
	return &noteRepo{db: db}
}

const baseSelectNote = `
    SELECT id, board_id, content, color, x, y, z, created_at, updated_at
    FROM notes
`

func (r *noteRepo) Create(ctx context.Context, n *models.Note) error {
	row := r.db.QueryRow(ctx, `
        INSERT INTO notes (board_id, content, color, x, y, z)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at
    `, n.BoardID, n.Content, n.Color, n.X, n.Y, n.Z)
	return row.Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (r *noteRepo) GetByID(ctx context.Context, boardID, noteID int64) (*models.Note, error) {
	row := r.db.QueryRow(ctx, baseSelectNote+" WHERE board_id=$1 AND id=$2", boardID, noteID)
	return scanNote(row)
}

func (r *noteRepo) Update(ctx context.Context, n *models.Note) error {
	row := r.db.QueryRow(ctx, `
        UPDATE notes
        SET content=$3, color=$4, x=$5, y=$6, z=$7, updated_at=NOW()
        WHERE board_id=$1 AND id=$2
        RETURNING updated_at
    `, n.BoardID, n.ID, n.Content, n.Color, n.X, n.Y, n.Z)
	err := row.Scan(&n.UpdatedAt)
	if err == pgx.ErrNoRows {
		return pgx.ErrNoRows
	}
	return err
}

func (r *noteRepo) Delete(ctx context.Context, boardID, noteID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notes WHERE board_id=$1 AND id=$2`, boardID, noteID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *noteRepo) ListByBoard(ctx context.Context, boardID int64) ([]models.Note, error) {
	rows, err := r.db.Query(ctx, baseSelectNote+" WHERE board_id=$1 ORDER BY z, id", boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.BoardID, &n.Content, &n.Color, &n.X, &n.Y, &n.Z,
			&n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *noteRepo) MaxZ(ctx context.Context, boardID int64) (int, error) {
	var max int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(MAX(z), 0) FROM notes WHERE board_id=$1`, boardID).Scan(&max)
	return max, err
}

func (r *noteRepo) SetZ(ctx context.Context, boardID, noteID int64, z int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE notes SET z=$3, updated_at=NOW() WHERE board_id=$1 AND id=$2`,
		boardID, noteID, z)
	return err
}

func scanNote(row pgx.Row) (*models.Note, error) {
	n := &models.Note{}
	err := row.Scan(&n.ID, &n.BoardID, &n.Content, &n.Color, &n.X, &n.Y, &n.Z,
		&n.CreatedAt, &n.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

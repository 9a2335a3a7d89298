package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/tedstonne/takkr-sub000/internal/models"
)

// BoardRepository resolves boards by slug and answers the access
// question the authorization chain asks on every gated request.
type BoardRepository interface {
	Create(ctx context.Context, b *models.Board) error
	GetBySlug(ctx context.Context, slug string) (*models.Board, error)
	// ListForUser returns boards the user owns or is a member of.
	ListForUser(ctx context.Context, username string) ([]models.Board, error)
	Delete(ctx context.Context, boardID int64) error
	// HasAccess reports whether username is the owner or a member of the
	// board.
	HasAccess(ctx context.Context, boardID int64, username string) (bool, error)
}

type boardRepo struct {
	db DB
}

func NewBoardRepository(db DB) BoardRepository {
	return &boardRepo{db: db}
}

const baseSelectBoard = `
    SELECT id, slug, name, owner_username, created_at
    FROM boards
`

func (r *boardRepo) Create(ctx context.Context, b *models.Board) error {
	row := r.db.QueryRow(ctx, `
        INSERT INTO boards (slug, name, owner_username)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `, b.Slug, b.Name, b.OwnerUsername)
	return row.Scan(&b.ID, &b.CreatedAt)
}

func (r *boardRepo) GetBySlug(ctx context.Context, slug string) (*models.Board, error) {
	row := r.db.QueryRow(ctx, baseSelectBoard+" WHERE slug=$1", slug)
	return scanBoard(row)
}

func (r *boardRepo) ListForUser(ctx context.Context, username string) ([]models.Board, error) {
	rows, err := r.db.Query(ctx, baseSelectBoard+`
        WHERE owner_username=$1
           OR id IN (SELECT board_id FROM board_members WHERE username=$1)
        ORDER BY created_at DESC
    `, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []models.Board
	for rows.Next() {
		var b models.Board
		if err := rows.Scan(&b.ID, &b.Slug, &b.Name, &b.OwnerUsername, &b.CreatedAt); err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func (r *boardRepo) Delete(ctx context.Context, boardID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM boards WHERE id=$1`, boardID)
	return err
}

func (r *boardRepo) HasAccess(ctx context.Context, boardID int64, username string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM boards WHERE id=$1 AND owner_username=$2
            UNION
            SELECT 1 FROM board_members WHERE board_id=$1 AND username=$2
        )
    `, boardID, username).Scan(&ok)
	return ok, err
}

func scanBoard(row pgx.Row) (*models.Board, error) {
	b := &models.Board{}
	err := row.Scan(&b.ID, &b.Slug, &b.Name, &b.OwnerUsername, &b.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

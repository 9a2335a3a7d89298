package repositories

import (
	"context"

	"github.com/tedstonne/takkr-sub000/internal/models"
)

// MemberRepository tracks non-owner membership of boards.
type MemberRepository interface {
	// Add returns false (and no error) when the user is already a member.
	Add(ctx context.Context, m *models.Member) (bool, error)
	// Remove returns false when the user was not a member.
	Remove(ctx context.Context, boardID int64, username string) (bool, error)
	ListByBoard(ctx context.Context, boardID int64) ([]models.Member, error)
}

type memberRepo struct {
	db DB
}

func NewMemberRepository(db DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Add(ctx context.Context, m *models.Member) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        INSERT INTO board_members (board_id, username)
        VALUES ($1, $2)
        ON CONFLICT (board_id, username) DO NOTHING
    `, m.BoardID, m.Username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *memberRepo) Remove(ctx context.Context, boardID int64, username string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM board_members WHERE board_id=$1 AND username=$2`, boardID, username)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *memberRepo) ListByBoard(ctx context.Context, boardID int64) ([]models.Member, error) {
	rows, err := r.db.Query(ctx, `
        SELECT board_id, username, joined_at
        FROM board_members
        WHERE board_id=$1
        ORDER BY joined_at
    `, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.BoardID, &m.Username, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

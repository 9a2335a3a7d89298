package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/tedstonne/takkr-sub000/internal/models"
)

// UserRepository is the identity directory: lookup by username or by
// the raw credential id presented during a discoverable login.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByCredentialID(ctx context.Context, credentialID []byte) (*models.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	// Touch persists the post-assertion signature counter (replay-defense
	// ratchet).
	Touch(ctx context.Context, username string, signCount uint32) error
}

type userRepo struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepo{db: db}
}

const baseSelectUser = `
    SELECT id, username, credential_id, public_key, sign_count, created_at
    FROM users
`

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO users (id, username, credential_id, public_key, sign_count)
        VALUES ($1, $2, $3, $4, $5)
    `, u.ID, u.Username, u.CredentialID, u.PublicKey, u.SignCount)
	return err
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser+" WHERE username=$1", username)
	return scanUser(row)
}

func (r *userRepo) GetByCredentialID(ctx context.Context, credentialID []byte) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser+" WHERE credential_id=$1", credentialID)
	return scanUser(row)
}

func (r *userRepo) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username=$1)`, username,
	).Scan(&exists)
	return exists, err
}

func (r *userRepo) Touch(ctx context.Context, username string, signCount uint32) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET sign_count=$2 WHERE username=$1`, username, signCount)
	return err
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	var id string
	err := row.Scan(&id, &u.Username, &u.CredentialID, &u.PublicKey, &u.SignCount, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return u, nil
}

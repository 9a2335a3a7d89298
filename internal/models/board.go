package models

import (
	"time"
)

// Board is a shared canvas of notes, addressed externally by slug.
type Board struct {
	ID            int64     `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	OwnerUsername string    `json:"owner"`
	CreatedAt     time.Time `json:"created_at"`
}

// Note is a sticky note on a board. Field conflicts between concurrent
// editors are last-write-wins; there is no row version on notes.
type Note struct {
	ID        int64     `json:"id"`
	BoardID   int64     `json:"board_id"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Z         int       `json:"z"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is a non-owner user with access to a board.
type Member struct {
	BoardID  int64     `json:"board_id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

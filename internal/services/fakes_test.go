package services

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/realtime"
)

// In-memory repository fakes shared across the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.Username] = &cp
	return nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByCredentialID(_ context.Context, credentialID []byte) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if bytes.Equal(u.CredentialID, credentialID) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Exists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	return ok, nil
}

func (r *memUserRepo) Touch(_ context.Context, username string, signCount uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		u.SignCount = signCount
	}
	return nil
}

type memBoardRepo struct {
	mu     sync.Mutex
	nextID int64
	boards map[int64]*models.Board
}

func newMemBoardRepo() *memBoardRepo {
	return &memBoardRepo{boards: make(map[int64]*models.Board)}
}

func (r *memBoardRepo) Create(_ context.Context, b *models.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	cp := *b
	r.boards[b.ID] = &cp
	return nil
}

func (r *memBoardRepo) GetBySlug(_ context.Context, slug string) (*models.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.boards {
		if b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memBoardRepo) ListForUser(_ context.Context, username string) ([]models.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Board
	for _, b := range r.boards {
		if b.OwnerUsername == username {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memBoardRepo) Delete(_ context.Context, boardID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.boards, boardID)
	return nil
}

func (r *memBoardRepo) HasAccess(_ context.Context, boardID int64, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[boardID]
	return ok && b.OwnerUsername == username, nil
}

type memNoteRepo struct {
	mu     sync.Mutex
	nextID int64
	notes  map[int64]*models.Note
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{notes: make(map[int64]*models.Note)}
}

func (r *memNoteRepo) Create(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *memNoteRepo) GetByID(_ context.Context, boardID, noteID int64) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[noteID]
	if !ok || n.BoardID != boardID {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (r *memNoteRepo) Update(_ context.Context, n *models.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.UpdatedAt = time.Now()
	cp := *n
	r.notes[n.ID] = &cp
	return nil
}

func (r *memNoteRepo) Delete(_ context.Context, boardID, noteID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[noteID]
	if !ok || n.BoardID != boardID {
		return false, nil
	}
	delete(r.notes, noteID)
	return true, nil
}

func (r *memNoteRepo) ListByBoard(_ context.Context, boardID int64) ([]models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Note
	for _, n := range r.notes {
		if n.BoardID == boardID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memNoteRepo) MaxZ(_ context.Context, boardID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, n := range r.notes {
		if n.BoardID == boardID && n.Z > max {
			max = n.Z
		}
	}
	return max, nil
}

func (r *memNoteRepo) SetZ(_ context.Context, boardID, noteID int64, z int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notes[noteID]; ok && n.BoardID == boardID {
		n.Z = z
		n.UpdatedAt = time.Now()
	}
	return nil
}

type memMemberRepo struct {
	mu      sync.Mutex
	members map[int64]map[string]models.Member
}

func newMemMemberRepo() *memMemberRepo {
	return &memMemberRepo{members: make(map[int64]map[string]models.Member)}
}

func (r *memMemberRepo) Add(_ context.Context, m *models.Member) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.members[m.BoardID]
	if set == nil {
		set = make(map[string]models.Member)
		r.members[m.BoardID] = set
	}
	if _, ok := set[m.Username]; ok {
		return false, nil
	}
	set[m.Username] = *m
	return true, nil
}

func (r *memMemberRepo) Remove(_ context.Context, boardID int64, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.members[boardID]
	if !ok {
		return false, nil
	}
	if _, ok := set[username]; !ok {
		return false, nil
	}
	delete(set, username)
	return true, nil
}

func (r *memMemberRepo) ListByBoard(_ context.Context, boardID int64) ([]models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Member
	for _, m := range r.members[boardID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func memberOf(boardID int64, username string) *models.Member {
	return &models.Member{BoardID: boardID, Username: username, JoinedAt: time.Now()}
}

// streamTap subscribes a buffer to a board's event stream so tests can
// assert on the frames a mutation broadcast.
type streamTap struct {
	buf bytes.Buffer
}

func tapBoard(reg *realtime.Registry, boardID int64) *streamTap {
	t := &streamTap{}
	reg.Connect(boardID, &t.buf)
	return t
}

func (t *streamTap) frames() string { return t.buf.String() }

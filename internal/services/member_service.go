package services

import (
	"context"
	"fmt"
	"time"

	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/realtime"
	"github.com/tedstonne/takkr-sub000/internal/repositories"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

// MemberService manages board membership and announces changes on the
// board's event stream.
type MemberService interface {
	Add(ctx context.Context, board *models.Board, username string) (*models.Member, error)
	Remove(ctx context.Context, board *models.Board, username string) error
}

type memberService struct {
	members  repositories.MemberRepository
	users    repositories.UserRepository
	registry *realtime.Registry
}

func NewMemberService(
	members repositories.MemberRepository,
	users repositories.UserRepository,
	registry *realtime.Registry,
) MemberService {
	return &memberService{members: members, users: users, registry: registry}
}

func (s *memberService) Add(ctx context.Context, board *models.Board, username string) (*models.Member, error) {
	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !exists {
		return nil, utils.ErrUserNotFound
	}
	// The owner has access already; adding them as a member would just
	// duplicate the grant.
	if username == board.OwnerUsername {
		return nil, utils.ErrMemberExists
	}

	member := &models.Member{BoardID: board.ID, Username: username, JoinedAt: time.Now()}
	added, err := s.members.Add(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("adding member: %w", err)
	}
	if !added {
		return nil, utils.ErrMemberExists
	}

	s.registry.Broadcast(board.ID, string(models.EventMemberJoined),
		models.MemberJoinedPayload{Username: username})
	utils.Logger.Infof("[member] %q joined board %s", username, board.Slug)
	return member, nil
}

func (s *memberService) Remove(ctx context.Context, board *models.Board, username string) error {
	removed, err := s.members.Remove(ctx, board.ID, username)
	if err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	if !removed {
		return utils.ErrMemberNotFound
	}

	s.registry.Broadcast(board.ID, string(models.EventMemberLeft),
		models.MemberLeftPayload{Username: username})
	utils.Logger.Infof("[member] %q left board %s", username, board.Slug)
	return nil
}

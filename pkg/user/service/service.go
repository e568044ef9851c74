// Package service assembles the member-facing profile view.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/yntoyg/covenant-api/pkg/app/errors"
	"github.com/yntoyg/covenant-api/pkg/user"
)

// Store is the narrow data-access interface for the user service.
type Store interface {
	CountUserReposts(ctx context.Context, userID string) (int, error)
	LeaderboardRank(ctx context.Context, userID string) (rank, total int, err error)
}

// Service defines the interface for member profile business logic
type Service interface {
	Me(ctx context.Context, usr *user.User) (*user.Profile, error)
}

type userService struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new member profile service
func NewService(st Store, logger *zap.Logger) Service {
	return &userService{
		store:  st,
		logger: logger,
	}
}

// Me builds the profile from the session user plus live aggregates. The
// repost count degrades to zero on lookup failure rather than failing the
// whole profile.
func (s *userService) Me(ctx context.Context, usr *user.User) (*user.Profile, error) {
	reposts, err := s.store.CountUserReposts(ctx, usr.ID)
	if err != nil {
		s.logger.Warn("Failed to count reposts",
			zap.String("user_id", usr.ID), zap.Error(err))
		reposts = 0
	}

	rank, total, err := s.store.LeaderboardRank(ctx, usr.ID)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("leaderboard rank: %w", err))
	}

	return &user.Profile{
		Email:            usr.Email,
		WalletAddress:    usr.WalletAddress,
		Points:           usr.GentlemanScore,
		TotalClaims:      usr.TotalClaims,
		RepostsSubmitted: reposts,
		LeaderboardRank:  rank,
		TotalUsers:       total,
		CreatedAt:        usr.CreatedAt,
	}, nil
}

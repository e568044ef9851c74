package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yntoyg/covenant-api/pkg/claim"
	"github.com/yntoyg/covenant-api/pkg/user"
)

type logService struct {
	service Service
	logger  *zap.Logger
}

// NewLog wraps a claim service with request-level logging
func NewLog(service Service, logger *zap.Logger) Service {
	return &logService{
		service: service,
		logger:  logger,
	}
}

func (s *logService) Claim(ctx context.Context, usr *user.User) (*claim.Result, error) {
	start := time.Now()
	s.logger.Info("Claiming daily video", zap.String("user_id", usr.ID))

	result, err := s.service.Claim(ctx, usr)
	if err != nil {
		s.logger.Error("Failed to claim daily video",
			zap.String("user_id", usr.ID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Claim handled",
		zap.String("user_id", usr.ID),
		zap.Bool("already_claimed", result.AlreadyClaimed),
		zap.Int("points_awarded", result.PointsAwarded),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (s *logService) Status(ctx context.Context, usr *user.User) (*claim.Status, error) {
	status, err := s.service.Status(ctx, usr)
	if err != nil {
		s.logger.Error("Failed to read claim status",
			zap.String("user_id", usr.ID),
			zap.Error(err),
		)
		return nil, err
	}
	return status, nil
}

func (s *logService) Regenerate(ctx context.Context, usr *user.User) (*claim.Result, error) {
	start := time.Now()
	s.logger.Info("Regenerating download link", zap.String("user_id", usr.ID))

	result, err := s.service.Regenerate(ctx, usr)
	if err != nil {
		s.logger.Error("Failed to regenerate download link",
			zap.String("user_id", usr.ID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Download link regenerated",
		zap.String("user_id", usr.ID),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (s *logService) Download(ctx context.Context, usr *user.User) (*claim.Asset, error) {
	start := time.Now()

	asset, err := s.service.Download(ctx, usr)
	if err != nil {
		s.logger.Error("Failed to open claimed video",
			zap.String("user_id", usr.ID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Streaming claimed video",
		zap.String("user_id", usr.ID),
		zap.String("filename", asset.Filename),
		zap.Int64("size", asset.Size),
		zap.Duration("duration", time.Since(start)),
	)
	return asset, nil
}

// Package automation records parameter gestures the way a host's automation
// lane would, one lane per begin/end window, in a sqlite database.
package automation

import (
	"context"

	"codeberg.org/mutker/prxgyz/internal/errors"
	"codeberg.org/mutker/prxgyz/internal/logger"
)

// Service records lanes into a repository.
type Service interface {
	Recorder
	Reader
}

type service struct {
	repo Repository
	cfg  Config
}

type noopService struct{}

func NewService(cfg Config, log logger.Logger) (Service, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	// If recording is disabled, return a no-op service
	if !cfg.Enabled {
		log.Debug().Msg("Automation recording disabled, using no-op recorder")
		return &noopService{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create automation repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Bool("enabled", cfg.Enabled).
		Msg("Automation service initialized successfully")

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, lane *Lane) error {
	errFactory := errors.New()

	if lane == nil || lane.Handle == "" {
		return errFactory.New(ErrInvalidLane)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(ctx, lane); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Lanes(ctx context.Context, handle string) ([]Lane, error) {
	return s.repo.Lanes(ctx, handle)
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*noopService) Record(_ context.Context, _ *Lane) error {
	return nil
}

func (*noopService) Lanes(_ context.Context, _ string) ([]Lane, error) {
	return nil, nil
}

func (*noopService) Close() error {
	return nil
}

package service

import (
	"context"
	"errors"
	"time"

	catalogerrors "raidledger/internal/catalog/errors"
	"raidledger/internal/catalog/repository"
	"raidledger/pkg/config"
	apperrors "raidledger/pkg/errors"
	"raidledger/pkg/model"
)

// CatalogService resolves the static reference data a fight runs on: the
// active period, boss identities, and the round-scaled health table.
type CatalogService interface {
	GetActivePeriod(ctx context.Context, now time.Time) (*model.Period, error)
	GetBoss(ctx context.Context, id string) (*model.Boss, error)
	GetBossesByIDs(ctx context.Context, ids []string) (map[string]*model.Boss, error)
	GetHealth(ctx context.Context, position int, round int) (*model.BossHealth, error)
}

type catalogService struct {
	periodRepo repository.PeriodRepository
	bossRepo   repository.BossRepository
	healthRepo repository.HealthRepository
	cfg        *config.Config
}

func NewCatalogService(
	periodRepo repository.PeriodRepository,
	bossRepo repository.BossRepository,
	healthRepo repository.HealthRepository,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		periodRepo: periodRepo,
		bossRepo:   bossRepo,
		healthRepo: healthRepo,
		cfg:        cfg,
	}
}

func (s *catalogService) GetActivePeriod(ctx context.Context, now time.Time) (*model.Period, error) {
	period, err := s.periodRepo.FindActive(ctx, now)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNoActivePeriod) {
			return nil, apperrors.NotFound("Active period")
		}
		s.cfg.Log.Error("Failed to resolve active period", "error", err)
		return nil, apperrors.Internal("Failed to resolve active period", err)
	}
	return period, nil
}

func (s *catalogService) GetBoss(ctx context.Context, id string) (*model.Boss, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Boss ID cannot be empty")
	}

	boss, err := s.bossRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrBossNotFound) {
			return nil, apperrors.NotFoundWithID("Boss", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid boss ID format")
		}
		s.cfg.Log.Error("Failed to retrieve boss", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve boss", err)
	}
	return boss, nil
}

func (s *catalogService) GetBossesByIDs(ctx context.Context, ids []string) (map[string]*model.Boss, error) {
	if len(ids) == 0 {
		return map[string]*model.Boss{}, nil
	}

	bosses, err := s.bossRepo.FindByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid boss ID format")
		}
		s.cfg.Log.Error("Failed to retrieve bosses", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bosses", err)
	}
	return bosses, nil
}

// GetHealth resolves the spawn health for a slot position at a round. A
// table gap is an operator problem and comes back as INTERNAL, never as a
// player-facing validation failure.
func (s *catalogService) GetHealth(ctx context.Context, position int, round int) (*model.BossHealth, error) {
	if position < 1 || position > model.BossSlots {
		return nil, apperrors.InvalidInput("Position must be between 1 and 5")
	}
	if round < 1 {
		return nil, apperrors.InvalidInput("Round must be at least 1")
	}

	health, err := s.healthRepo.FindByPositionAndRound(ctx, position, round)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrHealthTableGap) {
			s.cfg.Log.Error("Health table gap",
				"position", position,
				"round", round,
				"error", err,
			)
			return nil, apperrors.Internal("Health table has no entry for this position and round", err)
		}
		s.cfg.Log.Error("Failed to resolve boss health", "position", position, "round", round, "error", err)
		return nil, apperrors.Internal("Failed to resolve boss health", err)
	}
	return health, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	battleerrors "raidledger/internal/battle/errors"
	"raidledger/internal/battle/repository"
	"raidledger/internal/battle/validator"
	"raidledger/internal/events"
	catalogservice "raidledger/internal/catalog/service"
	"raidledger/pkg/client"
	"raidledger/pkg/config"
	apperrors "raidledger/pkg/errors"
	"raidledger/pkg/model"
	"raidledger/pkg/sanitizer"
)

// SettlementService converts live bookings into immutable attack records.
// Each settlement is one Mongo transaction: delete the booking, insert the
// ledger row, claim the parent credit, apply saturating damage. A kill
// settlement additionally spawns the next round, outside that transaction,
// after a fresh correlation key is minted.
type SettlementService interface {
	SettleDone(ctx context.Context, teamID string, correlationKey string, participantID string, displayName string) (*model.AttackRecord, error)
	SettleKill(ctx context.Context, teamID string, correlationKey string, participantID string, displayName string, leftoverTime int) (*model.AttackRecord, *model.Encounter, error)
	GetCurrentEncounter(ctx context.Context, teamID string, correlationKey string) (*model.Encounter, error)
	GetSnapshot(ctx context.Context, teamID string, correlationKey string) (*model.EncounterSnapshot, error)
	ActivateSlot(ctx context.Context, teamID string, position int) (*model.Encounter, error)
}

type settlementService struct {
	encounterRepo repository.EncounterRepository
	bookingRepo   repository.BookingRepository
	recordRepo    repository.AttackRecordRepository
	catalog       catalogservice.CatalogService
	display       *client.DisplayClient
	validator     *validator.BookingValidator
	publisher     events.Publisher
	cfg           *config.Config
}

func NewSettlementService(
	encounterRepo repository.EncounterRepository,
	bookingRepo repository.BookingRepository,
	recordRepo repository.AttackRecordRepository,
	catalog catalogservice.CatalogService,
	display *client.DisplayClient,
	v *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) SettlementService {
	return &settlementService{
		encounterRepo: encounterRepo,
		bookingRepo:   bookingRepo,
		recordRepo:    recordRepo,
		catalog:       catalog,
		display:       display,
		validator:     v,
		publisher:     publisher,
		cfg:           cfg,
	}
}

// SettleDone settles an attack that did not finish the boss. The round
// never advances here, no matter what health ends at.
func (s *settlementService) SettleDone(ctx context.Context, teamID string, correlationKey string, participantID string, displayName string) (*model.AttackRecord, error) {
	encounter, err := s.resolveEncounter(ctx, teamID, correlationKey)
	if err != nil {
		return nil, err
	}

	record, err := s.settle(ctx, encounter, participantID, displayName, nil)
	if err != nil {
		return nil, err
	}

	s.publishSettled(ctx, encounter, record, correlationKey)
	return record, nil
}

// SettleKill settles the finishing blow and advances the fight to the
// next round. The next round's health is resolved before anything is
// written, so a health table gap aborts with the booking intact. The new
// encounter is created after the settlement transaction commits, under a
// freshly minted correlation key; the settled attack is durable even if
// the advancement fails.
func (s *settlementService) SettleKill(ctx context.Context, teamID string, correlationKey string, participantID string, displayName string, leftoverTime int) (*model.AttackRecord, *model.Encounter, error) {
	encounter, err := s.resolveEncounter(ctx, teamID, correlationKey)
	if err != nil {
		return nil, nil, err
	}

	boss, err := s.catalog.GetBoss(ctx, encounter.BossID)
	if err != nil {
		return nil, nil, err
	}

	nextHealth, err := s.catalog.GetHealth(ctx, boss.Position, encounter.Round+1)
	if err != nil {
		return nil, nil, err
	}

	record, err := s.settle(ctx, encounter, participantID, displayName, &leftoverTime)
	if err != nil {
		return nil, nil, err
	}

	s.publishSettled(ctx, encounter, record, correlationKey)
	s.publisher.Publish(ctx, events.TypeBossDefeated, teamID, correlationKey, events.BossDefeated{
		TeamID:         teamID,
		CorrelationKey: correlationKey,
		BossID:         encounter.BossID,
		Round:          encounter.Round,
		LeftoverTime:   record.LeftoverTime,
		OccurredAt:     time.Now().UTC(),
	})

	next, err := s.advance(ctx, encounter, boss.Position, nextHealth)
	if err != nil {
		return record, nil, err
	}

	return record, next, nil
}

// settle runs the settlement transaction. leftoverTime nil means a done
// settlement; non-nil means a kill, stored nil anyway for credit-backed
// bookings because a redeemed credit banks nothing.
func (s *settlementService) settle(ctx context.Context, encounter *model.Encounter, participantID string, displayName string, leftoverTime *int) (*model.AttackRecord, error) {
	var record *model.AttackRecord

	err := s.encounterRepo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.bookingRepo.DeleteByParticipant(sessCtx, encounter.TeamID, participantID)
		if err != nil {
			if errors.Is(err, battleerrors.ErrBookingNotFound) {
				return apperrors.Conflict("Participant has no live booking to settle")
			}
			return apperrors.Internal("Failed to remove booking", err)
		}

		if booking.EncounterID != encounter.ID {
			return apperrors.Conflict("Booking targets a different encounter")
		}

		if booking.Damage == nil {
			return apperrors.Conflict("Damage has not been entered for this booking")
		}

		var leftover *int
		if leftoverTime != nil && !booking.IsCarry() && booking.ParentCreditID == nil {
			if err := s.validator.ValidateLeftoverTime(*leftoverTime); err != nil {
				return apperrors.Validation("Invalid leftover time", map[string]any{"error": err.Error()})
			}
			leftover = leftoverTime
		}

		name := displayName
		if name == "" {
			name = booking.ParticipantName
		}

		record = &model.AttackRecord{
			TeamID:          encounter.TeamID,
			PeriodID:        encounter.PeriodID,
			BossID:          encounter.BossID,
			ParticipantID:   participantID,
			ParticipantName: sanitizer.NormalizeDisplayName(name),
			Round:           encounter.Round,
			AttackKind:      booking.AttackKind,
			Damage:          *booking.Damage,
			LeftoverTime:    leftover,
		}
		if err := s.recordRepo.Insert(sessCtx, record); err != nil {
			return apperrors.Internal("Failed to insert attack record", err)
		}

		if booking.ParentCreditID != nil {
			err := s.recordRepo.ConsumeCredit(sessCtx, *booking.ParentCreditID, record.ID)
			if err != nil {
				if errors.Is(err, battleerrors.ErrAlreadyConsumed) {
					s.cfg.Log.Warn("Credit already consumed by a racing settlement",
						"credit_id", *booking.ParentCreditID,
						"record_id", record.ID,
					)
				} else {
					return apperrors.Internal("Failed to consume credit", err)
				}
			}
		}

		if err := s.encounterRepo.ApplyDamage(sessCtx, encounter.ID, *booking.Damage); err != nil {
			return apperrors.Internal("Failed to apply damage", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Settlement failed",
			"team_id", encounter.TeamID,
			"participant_id", participantID,
			"encounter_id", encounter.ID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Attack settled",
		"record_id", record.ID,
		"team_id", encounter.TeamID,
		"participant_id", participantID,
		"round", encounter.Round,
		"damage", record.Damage,
	)
	return record, nil
}

// advance creates the round+1 encounter under a new correlation key. A
// concurrent kill settlement may have advanced the fight already; its
// encounter is reused instead of spawning a duplicate round.
func (s *settlementService) advance(ctx context.Context, prev *model.Encounter, position int, health *model.BossHealth) (*model.Encounter, error) {
	if existing, err := s.encounterRepo.FindLatestByBoss(ctx, prev.TeamID, prev.PeriodID, prev.BossID); err == nil && existing.Round > prev.Round {
		s.cfg.Log.Info("Next round already created by a concurrent settlement",
			"team_id", prev.TeamID,
			"round", existing.Round,
			"correlation_key", existing.CorrelationKey,
		)
		return existing, nil
	}

	correlationKey, err := s.display.MintCorrelationKey(ctx, prev.TeamID, position)
	if err != nil {
		s.cfg.Log.Error("Failed to mint correlation key for next round",
			"team_id", prev.TeamID,
			"round", prev.Round+1,
			"error", err,
		)
		return nil, apperrors.Internal("Settlement recorded but round advancement failed", err)
	}

	next := &model.Encounter{
		CorrelationKey: correlationKey,
		TeamID:         prev.TeamID,
		PeriodID:       prev.PeriodID,
		BossID:         prev.BossID,
		Round:          prev.Round + 1,
		CurrentHealth:  health.Health,
		MaxHealth:      health.Health,
	}
	if err := s.encounterRepo.Insert(ctx, next); err != nil {
		s.cfg.Log.Error("Failed to create next round encounter",
			"team_id", prev.TeamID,
			"round", prev.Round+1,
			"error", err,
		)
		return nil, apperrors.Internal("Settlement recorded but round advancement failed", err)
	}

	s.publisher.Publish(ctx, events.TypeEncounterAdvanced, next.TeamID, next.CorrelationKey, events.EncounterAdvanced{
		TeamID:         next.TeamID,
		CorrelationKey: next.CorrelationKey,
		BossID:         next.BossID,
		Round:          next.Round,
		MaxHealth:      next.MaxHealth,
		OccurredAt:     time.Now().UTC(),
	})

	s.cfg.Log.Info("Encounter advanced",
		"team_id", next.TeamID,
		"boss_id", next.BossID,
		"round", next.Round,
		"correlation_key", next.CorrelationKey,
	)
	return next, nil
}

func (s *settlementService) GetCurrentEncounter(ctx context.Context, teamID string, correlationKey string) (*model.Encounter, error) {
	return s.resolveEncounter(ctx, teamID, correlationKey)
}

// GetSnapshot bundles the encounter with its live bookings and the
// attacks already settled against its round.
func (s *settlementService) GetSnapshot(ctx context.Context, teamID string, correlationKey string) (*model.EncounterSnapshot, error) {
	encounter, err := s.resolveEncounter(ctx, teamID, correlationKey)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.FindByEncounter(ctx, encounter.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to load encounter bookings", "encounter_id", encounter.ID, "error", err)
		return nil, apperrors.Internal("Failed to load encounter bookings", err)
	}

	settled, err := s.recordRepo.FindByEncounterRound(ctx, encounter.TeamID, encounter.BossID, encounter.Round)
	if err != nil {
		s.cfg.Log.Error("Failed to load settled attacks", "encounter_id", encounter.ID, "error", err)
		return nil, apperrors.Internal("Failed to load settled attacks", err)
	}

	return &model.EncounterSnapshot{
		Encounter: encounter,
		Bookings:  bookings,
		Settled:   settled,
	}, nil
}

// ActivateSlot creates the round-1 encounter for one of the period's boss
// slots, minting the slot's first correlation key.
func (s *settlementService) ActivateSlot(ctx context.Context, teamID string, position int) (*model.Encounter, error) {
	if teamID == "" {
		return nil, apperrors.InvalidInput("TeamID cannot be empty")
	}
	if position < 1 || position > model.BossSlots {
		return nil, apperrors.InvalidInput("Position must be between 1 and 5")
	}

	period, err := s.catalog.GetActivePeriod(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	bossID, ok := period.BossIDAt(position)
	if !ok {
		return nil, apperrors.InvalidInput("Position has no boss assigned")
	}

	health, err := s.catalog.GetHealth(ctx, position, 1)
	if err != nil {
		return nil, err
	}

	correlationKey, err := s.display.MintCorrelationKey(ctx, teamID, position)
	if err != nil {
		return nil, apperrors.Internal("Failed to mint correlation key", err)
	}

	encounter := &model.Encounter{
		CorrelationKey: correlationKey,
		TeamID:         teamID,
		PeriodID:       period.ID,
		BossID:         bossID,
		Round:          1,
		CurrentHealth:  health.Health,
		MaxHealth:      health.Health,
	}
	if err := s.encounterRepo.Insert(ctx, encounter); err != nil {
		s.cfg.Log.Error("Failed to activate slot", "team_id", teamID, "position", position, "error", err)
		return nil, apperrors.Internal("Failed to activate slot", err)
	}

	s.publisher.Publish(ctx, events.TypeEncounterAdvanced, teamID, correlationKey, events.EncounterAdvanced{
		TeamID:         teamID,
		CorrelationKey: correlationKey,
		BossID:         bossID,
		Round:          1,
		MaxHealth:      health.Health,
		OccurredAt:     time.Now().UTC(),
	})

	s.cfg.Log.Info("Slot activated",
		"team_id", teamID,
		"position", position,
		"boss_id", bossID,
		"correlation_key", correlationKey,
	)
	return encounter, nil
}

func (s *settlementService) resolveEncounter(ctx context.Context, teamID string, correlationKey string) (*model.Encounter, error) {
	if teamID == "" || correlationKey == "" {
		return nil, apperrors.InvalidInput("TeamID and correlation key are required")
	}

	encounter, err := s.encounterRepo.FindLatestByCorrelationKey(ctx, teamID, correlationKey)
	if err != nil {
		if errors.Is(err, battleerrors.ErrEncounterNotFound) {
			return nil, apperrors.NotFound("Encounter")
		}
		s.cfg.Log.Error("Failed to resolve encounter", "correlation_key", correlationKey, "error", err)
		return nil, apperrors.Internal("Failed to resolve encounter", err)
	}

	return encounter, nil
}

func (s *settlementService) publishSettled(ctx context.Context, encounter *model.Encounter, record *model.AttackRecord, correlationKey string) {
	defeated := encounter.CurrentHealth-record.Damage <= 0

	s.publisher.Publish(ctx, events.TypeAttackSettled, encounter.TeamID, correlationKey, events.AttackSettled{
		TeamID:         encounter.TeamID,
		ParticipantID:  record.ParticipantID,
		CorrelationKey: correlationKey,
		RecordID:       record.ID,
		AttackKind:     record.AttackKind,
		Damage:         record.Damage,
		Round:          record.Round,
		Defeated:       defeated,
		OccurredAt:     time.Now().UTC(),
	})
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	battleerrors "raidledger/internal/battle/errors"
	"raidledger/internal/battle/repository"
	"raidledger/internal/battle/validator"
	"raidledger/internal/events"
	catalogservice "raidledger/internal/catalog/service"
	"raidledger/pkg/config"
	apperrors "raidledger/pkg/errors"
	"raidledger/pkg/model"
	"raidledger/pkg/sanitizer"
)

// BookingService manages the live attack declarations of a team. A
// participant holds at most one live booking; the database unique index is
// the only enforcement of that invariant.
type BookingService interface {
	Create(ctx context.Context, booking *model.Booking, correlationKey string) (*model.Booking, error)
	SetDamage(ctx context.Context, bookingID string, damage int64) error
	Cancel(ctx context.Context, teamID string, participantID string) error
	GetByParticipant(ctx context.Context, teamID string, participantID string) (*model.Booking, error)
	ListAvailableCredits(ctx context.Context, teamID string, participantID string) ([]*model.LeftoverCredit, error)
	DailyAttackCount(ctx context.Context, teamID string, participantID string) (*model.AttackUsage, error)
}

type bookingService struct {
	bookingRepo   repository.BookingRepository
	encounterRepo repository.EncounterRepository
	recordRepo    repository.AttackRecordRepository
	catalog       catalogservice.CatalogService
	validator     *validator.BookingValidator
	publisher     events.Publisher
	cfg           *config.Config
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	encounterRepo repository.EncounterRepository,
	recordRepo repository.AttackRecordRepository,
	catalog catalogservice.CatalogService,
	v *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		encounterRepo: encounterRepo,
		recordRepo:    recordRepo,
		catalog:       catalog,
		validator:     v,
		publisher:     publisher,
		cfg:           cfg,
	}
}

// Create books an attack against the encounter currently bound to the
// correlation key. The daily cap counts settled non-carry attacks only;
// carry bookings ride on an earlier attack's leftover and are never
// capped.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking, correlationKey string) (*model.Booking, error) {
	booking.ParticipantName = sanitizer.NormalizeDisplayName(booking.ParticipantName)

	encounter, err := s.encounterRepo.FindLatestByCorrelationKey(ctx, booking.TeamID, correlationKey)
	if err != nil {
		if errors.Is(err, battleerrors.ErrEncounterNotFound) {
			return nil, apperrors.NotFound("Encounter")
		}
		s.cfg.Log.Error("Failed to resolve encounter for booking", "correlation_key", correlationKey, "error", err)
		return nil, apperrors.Internal("Failed to resolve encounter", err)
	}
	booking.EncounterID = encounter.ID

	if booking.ParentCreditID != nil {
		credit, err := s.verifyCredit(ctx, booking)
		if err != nil {
			return nil, err
		}
		// A credit-backed booking is always a carry; the kind and the
		// redeemed time come from the credit, not from the request.
		booking.AttackKind = model.AttackCarry
		booking.LeftoverTime = credit.LeftoverTime
	}

	if err := s.validate(booking); err != nil {
		return nil, err
	}

	if !booking.IsCarry() {
		settled, err := s.recordRepo.CountSettledSince(ctx, booking.TeamID, booking.ParticipantID, startOfDayUTC(time.Now()))
		if err != nil {
			s.cfg.Log.Error("Failed to count settled attacks", "error", err)
			return nil, apperrors.Internal("Failed to check daily attack count", err)
		}
		if settled >= int64(s.cfg.MaxDailyAttacks) {
			return nil, apperrors.Conflict(fmt.Sprintf("Daily attack limit reached (%d/%d)", settled, s.cfg.MaxDailyAttacks))
		}
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Participant already has a live booking")
		}
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.publisher.Publish(ctx, events.TypeBookingCreated, booking.TeamID, correlationKey, events.BookingCreated{
		TeamID:         booking.TeamID,
		ParticipantID:  booking.ParticipantID,
		CorrelationKey: correlationKey,
		AttackKind:     booking.AttackKind,
		OccurredAt:     time.Now().UTC(),
	})

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"team_id", booking.TeamID,
		"participant_id", booking.ParticipantID,
		"attack_kind", booking.AttackKind,
	)
	return booking, nil
}

// SetDamage overwrites the declared damage. Idempotent; zero and negative
// values are rejected because nil means "not entered".
func (s *bookingService) SetDamage(ctx context.Context, bookingID string, damage int64) error {
	if bookingID == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.validator.ValidateDamage(damage); err != nil {
		return apperrors.Validation("Invalid damage value", map[string]any{"error": err.Error()})
	}

	if err := s.bookingRepo.SetDamage(ctx, bookingID, damage); err != nil {
		if errors.Is(err, battleerrors.ErrBookingNotFound) {
			return apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, battleerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to set booking damage", "id", bookingID, "error", err)
		return apperrors.Internal("Failed to set booking damage", err)
	}

	s.cfg.Log.Info("Booking damage set", "id", bookingID, "damage", damage)
	return nil
}

func (s *bookingService) Cancel(ctx context.Context, teamID string, participantID string) error {
	if teamID == "" || participantID == "" {
		return apperrors.InvalidInput("TeamID and ParticipantID are required")
	}

	booking, err := s.bookingRepo.DeleteByParticipant(ctx, teamID, participantID)
	if err != nil {
		if errors.Is(err, battleerrors.ErrBookingNotFound) {
			return apperrors.Conflict("Participant has no live booking")
		}
		s.cfg.Log.Error("Failed to cancel booking", "team_id", teamID, "participant_id", participantID, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	correlationKey := s.correlationKeyOf(ctx, booking)
	s.publisher.Publish(ctx, events.TypeBookingCancelled, teamID, correlationKey, events.BookingCancelled{
		TeamID:         teamID,
		ParticipantID:  participantID,
		CorrelationKey: correlationKey,
		OccurredAt:     time.Now().UTC(),
	})

	s.cfg.Log.Info("Booking cancelled", "id", booking.ID, "team_id", teamID, "participant_id", participantID)
	return nil
}

func (s *bookingService) GetByParticipant(ctx context.Context, teamID string, participantID string) (*model.Booking, error) {
	if teamID == "" || participantID == "" {
		return nil, apperrors.InvalidInput("TeamID and ParticipantID are required")
	}

	booking, err := s.bookingRepo.FindByParticipant(ctx, teamID, participantID)
	if err != nil {
		if errors.Is(err, battleerrors.ErrBookingNotFound) {
			return nil, apperrors.NotFound("Booking")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

// ListAvailableCredits returns the participant's unconsumed leftover
// credits for the active period, oldest first, decorated with boss names
// for display.
func (s *bookingService) ListAvailableCredits(ctx context.Context, teamID string, participantID string) ([]*model.LeftoverCredit, error) {
	if teamID == "" || participantID == "" {
		return nil, apperrors.InvalidInput("TeamID and ParticipantID are required")
	}

	period, err := s.catalog.GetActivePeriod(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.FindAvailableCredits(ctx, teamID, participantID, period.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to list available credits", "error", err)
		return nil, apperrors.Internal("Failed to list available credits", err)
	}

	bossIDs := make([]string, 0, len(records))
	for _, record := range records {
		bossIDs = append(bossIDs, record.BossID)
	}
	bosses, err := s.catalog.GetBossesByIDs(ctx, bossIDs)
	if err != nil {
		return nil, err
	}

	credits := make([]*model.LeftoverCredit, 0, len(records))
	for _, record := range records {
		if record.LeftoverTime == nil {
			continue
		}
		bossName := ""
		if boss, ok := bosses[record.BossID]; ok {
			bossName = boss.Name
		}
		credits = append(credits, &model.LeftoverCredit{
			RecordID:     record.ID,
			BossID:       record.BossID,
			BossName:     bossName,
			AttackKind:   record.AttackKind,
			LeftoverTime: *record.LeftoverTime,
			EarnedAt:     record.CreatedAt,
		})
	}

	return credits, nil
}

// DailyAttackCount returns today's settled non-carry attacks and the
// participant's live bookings alongside the configured cap.
func (s *bookingService) DailyAttackCount(ctx context.Context, teamID string, participantID string) (*model.AttackUsage, error) {
	if teamID == "" || participantID == "" {
		return nil, apperrors.InvalidInput("TeamID and ParticipantID are required")
	}

	settled, err := s.recordRepo.CountSettledSince(ctx, teamID, participantID, startOfDayUTC(time.Now()))
	if err != nil {
		s.cfg.Log.Error("Failed to count settled attacks", "error", err)
		return nil, apperrors.Internal("Failed to count settled attacks", err)
	}

	live, err := s.bookingRepo.CountLive(ctx, teamID, participantID)
	if err != nil {
		s.cfg.Log.Error("Failed to count live bookings", "error", err)
		return nil, apperrors.Internal("Failed to count live bookings", err)
	}

	return &model.AttackUsage{
		Settled: settled,
		Live:    live,
		Limit:   s.cfg.MaxDailyAttacks,
	}, nil
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	if booking.IsCarry() && booking.ParentCreditID == nil {
		return apperrors.Validation("Carry booking requires a credit to redeem", nil)
	}
	return nil
}

// verifyCredit checks the referenced credit is real, owned by the same
// participant, and still unconsumed, and returns it so its leftover time
// can be copied onto the booking. The authoritative claim happens at
// settlement; this is an early rejection for a clearly stale pick.
func (s *bookingService) verifyCredit(ctx context.Context, booking *model.Booking) (*model.AttackRecord, error) {
	credit, err := s.recordRepo.FindByID(ctx, *booking.ParentCreditID)
	if err != nil {
		if errors.Is(err, battleerrors.ErrRecordNotFound) || errors.Is(err, battleerrors.ErrInvalidID) {
			return nil, apperrors.Validation("Referenced credit does not exist", nil)
		}
		return nil, apperrors.Internal("Failed to verify credit", err)
	}
	if credit.TeamID != booking.TeamID || credit.ParticipantID != booking.ParticipantID {
		return nil, apperrors.Validation("Credit belongs to a different participant", nil)
	}
	if !credit.IsUnconsumedCredit() {
		return nil, apperrors.Conflict("Credit has already been consumed")
	}
	return credit, nil
}

func (s *bookingService) correlationKeyOf(ctx context.Context, booking *model.Booking) string {
	encounter, err := s.encounterRepo.FindByID(ctx, booking.EncounterID)
	if err != nil {
		return ""
	}
	return encounter.CorrelationKey
}

func startOfDayUTC(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour)
}

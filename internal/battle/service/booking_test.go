package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	battleerrors "raidledger/internal/battle/errors"
	"raidledger/internal/battle/validator"
	"raidledger/pkg/config"
	apperrors "raidledger/pkg/errors"
	"raidledger/pkg/model"
)

func newBookingService(
	bookingRepo *mockBookingRepository,
	encounterRepo *mockEncounterRepository,
	recordRepo *mockAttackRecordRepository,
	catalog *mockCatalogService,
	publisher *recordingPublisher,
	cfg *config.Config,
	t *testing.T,
) BookingService {
	t.Helper()
	v := validator.NewBookingValidator(cfg, cfg.Log)
	return NewBookingService(bookingRepo, encounterRepo, recordRepo, catalog, v, publisher, cfg)
}

func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: "E11000 duplicate key error"},
		},
	}
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreateBooking_Success(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newBookingService(&mockBookingRepository{}, encounterRepo, &mockAttackRecordRepository{}, &mockCatalogService{}, publisher, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "  Rei  ",
		AttackKind:      model.AttackPhysical,
	}
	created, err := svc.Create(context.Background(), booking, "surface-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.EncounterID != encounter.ID {
		t.Errorf("expected booking bound to encounter %s, got %s", encounter.ID, created.EncounterID)
	}
	if created.ParticipantName != "Rei" {
		t.Errorf("expected normalized name Rei, got %q", created.ParticipantName)
	}
	if created.ID == "" {
		t.Error("expected booking ID assigned on insert")
	}

	types := publisher.published()
	if len(types) != 1 || types[0] != "booking.created" {
		t.Errorf("expected booking.created event, got %v", types)
	}
}

func TestCreateBooking_UnknownCorrelationKey_NotFound(t *testing.T) {
	cfg := testConfig()
	svc := newBookingService(&mockBookingRepository{}, &mockEncounterRepository{}, &mockAttackRecordRepository{}, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackPhysical,
	}
	_, err := svc.Create(context.Background(), booking, "stale-surface")
	if code := errorCode(t, err); code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %s", code)
	}
}

func TestCreateBooking_DuplicateBooking_Conflict(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			return duplicateKeyError()
		},
	}
	svc := newBookingService(bookingRepo, encounterRepo, &mockAttackRecordRepository{}, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackMagic,
	}
	_, err := svc.Create(context.Background(), booking, "surface-1")
	if code := errorCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected conflict on second live booking, got %s", code)
	}
}

func TestCreateBooking_InvalidKind_Validation(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	svc := newBookingService(&mockBookingRepository{}, encounterRepo, &mockAttackRecordRepository{}, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackKind("ranged"),
	}
	_, err := svc.Create(context.Background(), booking, "surface-1")
	if code := errorCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %s", code)
	}
}

func TestCreateBooking_DailyCapReached_Conflict(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	recordRepo := &mockAttackRecordRepository{
		countSettledSinceFunc: func(ctx context.Context, teamID, participantID string, since time.Time) (int64, error) {
			return int64(cfg.MaxDailyAttacks), nil
		},
	}
	svc := newBookingService(&mockBookingRepository{}, encounterRepo, recordRepo, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackPhysical,
	}
	_, err := svc.Create(context.Background(), booking, "surface-1")
	if code := errorCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected conflict at the daily cap, got %s", code)
	}
}

func TestCreateBooking_CarrySkipsDailyCap(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	recordRepo := &mockAttackRecordRepository{
		countSettledSinceFunc: func(ctx context.Context, teamID, participantID string, since time.Time) (int64, error) {
			t.Error("carry bookings must not consult the daily cap")
			return 99, nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.AttackRecord, error) {
			return &model.AttackRecord{
				ID:            id,
				TeamID:        "team-1",
				ParticipantID: "p-1",
				LeftoverTime:  intPtr(40),
			}, nil
		},
	}
	svc := newBookingService(&mockBookingRepository{}, encounterRepo, recordRepo, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackCarry,
		ParentCreditID:  strPtr("cccccccccccccccccccccc01"),
	}
	if _, err := svc.Create(context.Background(), booking, "surface-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateBooking_CreditForcesCarryKind(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	recordRepo := &mockAttackRecordRepository{
		countSettledSinceFunc: func(ctx context.Context, teamID, participantID string, since time.Time) (int64, error) {
			t.Error("credit-backed bookings must not consult the daily cap")
			return 99, nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.AttackRecord, error) {
			return &model.AttackRecord{
				ID:            id,
				TeamID:        "team-1",
				ParticipantID: "p-1",
				LeftoverTime:  intPtr(40),
			}, nil
		},
	}
	svc := newBookingService(&mockBookingRepository{}, encounterRepo, recordRepo, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackPhysical,
		ParentCreditID:  strPtr("cccccccccccccccccccccc01"),
	}
	created, err := svc.Create(context.Background(), booking, "surface-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.AttackKind != model.AttackCarry {
		t.Errorf("a booking referencing a credit must become a carry, got %s", created.AttackKind)
	}
	if created.LeftoverTime == nil || *created.LeftoverTime != 40 {
		t.Errorf("expected the credit's leftover time 40 on the booking, got %v", created.LeftoverTime)
	}
}

func TestCreateBooking_CarryWithoutCredit_Validation(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	svc := newBookingService(&mockBookingRepository{}, encounterRepo, &mockAttackRecordRepository{}, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackCarry,
	}
	_, err := svc.Create(context.Background(), booking, "surface-1")
	if code := errorCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected validation error for carry without credit, got %s", code)
	}
}

func TestCreateBooking_CreditOwnedByOther_Validation(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	recordRepo := &mockAttackRecordRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.AttackRecord, error) {
			return &model.AttackRecord{
				ID:            id,
				TeamID:        "team-1",
				ParticipantID: "someone-else",
				LeftoverTime:  intPtr(40),
			}, nil
		},
	}
	svc := newBookingService(&mockBookingRepository{}, encounterRepo, recordRepo, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackCarry,
		ParentCreditID:  strPtr("cccccccccccccccccccccc01"),
	}
	_, err := svc.Create(context.Background(), booking, "surface-1")
	if code := errorCode(t, err); code != apperrors.CodeValidation {
		t.Errorf("expected validation error for foreign credit, got %s", code)
	}
}

func TestCreateBooking_ConsumedCredit_Conflict(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	encounterRepo := &mockEncounterRepository{
		findLatestFunc: func(ctx context.Context, teamID, key string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	recordRepo := &mockAttackRecordRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.AttackRecord, error) {
			return &model.AttackRecord{
				ID:             id,
				TeamID:         "team-1",
				ParticipantID:  "p-1",
				LeftoverTime:   intPtr(40),
				ParentCreditID: strPtr("cccccccccccccccccccccc09"),
			}, nil
		},
	}
	svc := newBookingService(&mockBookingRepository{}, encounterRepo, recordRepo, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	booking := &model.Booking{
		TeamID:          "team-1",
		ParticipantID:   "p-1",
		ParticipantName: "Rei",
		AttackKind:      model.AttackCarry,
		ParentCreditID:  strPtr("cccccccccccccccccccccc01"),
	}
	_, err := svc.Create(context.Background(), booking, "surface-1")
	if code := errorCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected conflict for consumed credit, got %s", code)
	}
}

// ────────────────────────────────────────────────
// SetDamage / Cancel
// ────────────────────────────────────────────────

func TestSetDamage_RejectsNonPositive(t *testing.T) {
	cfg := testConfig()
	svc := newBookingService(&mockBookingRepository{}, &mockEncounterRepository{}, &mockAttackRecordRepository{}, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	for _, damage := range []int64{0, -5} {
		err := svc.SetDamage(context.Background(), "bbbbbbbbbbbbbbbbbbbbbbbb", damage)
		if code := errorCode(t, err); code != apperrors.CodeValidation {
			t.Errorf("damage %d: expected validation error, got %s", damage, code)
		}
	}
}

func TestSetDamage_Overwrites(t *testing.T) {
	cfg := testConfig()

	var setTo int64
	bookingRepo := &mockBookingRepository{
		setDamageFunc: func(ctx context.Context, id string, damage int64) error {
			setTo = damage
			return nil
		},
	}
	svc := newBookingService(bookingRepo, &mockEncounterRepository{}, &mockAttackRecordRepository{}, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	if err := svc.SetDamage(context.Background(), "bbbbbbbbbbbbbbbbbbbbbbbb", 321_000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if setTo != 321_000 {
		t.Errorf("expected damage 321000, got %d", setTo)
	}
}

func TestSetDamage_BookingMissing_NotFound(t *testing.T) {
	cfg := testConfig()
	bookingRepo := &mockBookingRepository{
		setDamageFunc: func(ctx context.Context, id string, damage int64) error {
			return battleerrors.ErrBookingNotFound
		},
	}
	svc := newBookingService(bookingRepo, &mockEncounterRepository{}, &mockAttackRecordRepository{}, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	err := svc.SetDamage(context.Background(), "bbbbbbbbbbbbbbbbbbbbbbbb", 100)
	if code := errorCode(t, err); code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %s", code)
	}
}

func TestCancel_NoLiveBooking_Conflict(t *testing.T) {
	cfg := testConfig()
	svc := newBookingService(&mockBookingRepository{}, &mockEncounterRepository{}, &mockAttackRecordRepository{}, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	err := svc.Cancel(context.Background(), "team-1", "p-1")
	if code := errorCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %s", code)
	}
}

func TestCancel_PublishesCancellation(t *testing.T) {
	cfg := testConfig()
	encounter := testEncounter()

	bookingRepo := &mockBookingRepository{
		deleteByParticipantFunc: func(ctx context.Context, teamID, participantID string) (*model.Booking, error) {
			return &model.Booking{
				ID:            "bbbbbbbbbbbbbbbbbbbbbbbb",
				EncounterID:   encounter.ID,
				TeamID:        teamID,
				ParticipantID: participantID,
			}, nil
		},
	}
	encounterRepo := &mockEncounterRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Encounter, error) {
			return encounter, nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newBookingService(bookingRepo, encounterRepo, &mockAttackRecordRepository{}, &mockCatalogService{}, publisher, cfg, t)

	if err := svc.Cancel(context.Background(), "team-1", "p-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	types := publisher.published()
	if len(types) != 1 || types[0] != "booking.cancelled" {
		t.Errorf("expected booking.cancelled event, got %v", types)
	}
}

// ────────────────────────────────────────────────
// Credits / daily count
// ────────────────────────────────────────────────

func TestListAvailableCredits_DecoratesBossNames(t *testing.T) {
	cfg := testConfig()

	catalog := &mockCatalogService{
		getActivePeriodFunc: func(ctx context.Context, now time.Time) (*model.Period, error) {
			return &model.Period{ID: "dddddddddddddddddddddddd", BossIDs: []string{"b1", "b2", "b3", "b4", "b5"}}, nil
		},
		getBossesByIDsFunc: func(ctx context.Context, ids []string) (map[string]*model.Boss, error) {
			return map[string]*model.Boss{
				"b2": {ID: "b2", Name: "Wyvern"},
			}, nil
		},
	}
	recordRepo := &mockAttackRecordRepository{
		findAvailableCredits: func(ctx context.Context, teamID, participantID, periodID string) ([]*model.AttackRecord, error) {
			return []*model.AttackRecord{
				{
					ID:            "r1",
					BossID:        "b2",
					AttackKind:    model.AttackMagic,
					LeftoverTime:  intPtr(55),
					TeamID:        teamID,
					ParticipantID: participantID,
				},
			}, nil
		},
	}
	svc := newBookingService(&mockBookingRepository{}, &mockEncounterRepository{}, recordRepo, catalog, &recordingPublisher{}, cfg, t)

	credits, err := svc.ListAvailableCredits(context.Background(), "team-1", "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(credits) != 1 {
		t.Fatalf("expected 1 credit, got %d", len(credits))
	}
	if credits[0].BossName != "Wyvern" {
		t.Errorf("expected boss name Wyvern, got %q", credits[0].BossName)
	}
	if credits[0].LeftoverTime != 55 {
		t.Errorf("expected leftover 55, got %d", credits[0].LeftoverTime)
	}
}

func TestDailyAttackCount_ReturnsUsage(t *testing.T) {
	cfg := testConfig()

	recordRepo := &mockAttackRecordRepository{
		countSettledSinceFunc: func(ctx context.Context, teamID, participantID string, since time.Time) (int64, error) {
			if since.Hour() != 0 || since.Minute() != 0 || since.Second() != 0 {
				t.Errorf("expected a UTC midnight boundary, got %v", since)
			}
			return 2, nil
		},
	}
	bookingRepo := &mockBookingRepository{
		countLiveFunc: func(ctx context.Context, teamID, participantID string) (int64, error) {
			return 1, nil
		},
	}
	svc := newBookingService(bookingRepo, &mockEncounterRepository{}, recordRepo, &mockCatalogService{}, &recordingPublisher{}, cfg, t)

	usage, err := svc.DailyAttackCount(context.Background(), "team-1", "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage.Settled != 2 {
		t.Errorf("expected 2 settled, got %d", usage.Settled)
	}
	if usage.Live != 1 {
		t.Errorf("expected 1 live booking, got %d", usage.Live)
	}
	if usage.Limit != cfg.MaxDailyAttacks {
		t.Errorf("expected limit %d, got %d", cfg.MaxDailyAttacks, usage.Limit)
	}
}

func intPtr(v int) *int { return &v }

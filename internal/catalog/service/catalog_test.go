package service

import (
	"context"
	"testing"
	"time"

	catalogerrors "raidledger/internal/catalog/errors"
	"raidledger/pkg/config"
	apperrors "raidledger/pkg/errors"
	"raidledger/pkg/logger"
	"raidledger/pkg/model"
)

type mockPeriodRepository struct {
	findActiveFunc func(ctx context.Context, now time.Time) (*model.Period, error)
}

func (m *mockPeriodRepository) FindActive(ctx context.Context, now time.Time) (*model.Period, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, now)
	}
	return nil, catalogerrors.ErrNoActivePeriod
}

type mockBossRepository struct {
	findByIDFunc  func(ctx context.Context, id string) (*model.Boss, error)
	findByIDsFunc func(ctx context.Context, ids []string) (map[string]*model.Boss, error)
}

func (m *mockBossRepository) FindByID(ctx context.Context, id string) (*model.Boss, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, catalogerrors.ErrBossNotFound
}

func (m *mockBossRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Boss, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	return map[string]*model.Boss{}, nil
}

type mockHealthRepository struct {
	findFunc func(ctx context.Context, position int, round int) (*model.BossHealth, error)
}

func (m *mockHealthRepository) FindByPositionAndRound(ctx context.Context, position int, round int) (*model.BossHealth, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, position, round)
	}
	return nil, catalogerrors.ErrHealthTableGap
}

func testCatalogConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	return apperrors.AsAppError(err).Code
}

func TestGetActivePeriod_NoneActive_NotFound(t *testing.T) {
	svc := NewCatalogService(&mockPeriodRepository{}, &mockBossRepository{}, &mockHealthRepository{}, testCatalogConfig())

	_, err := svc.GetActivePeriod(context.Background(), time.Now())
	if code := errorCode(t, err); code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %s", code)
	}
}

func TestGetActivePeriod_ReturnsPeriod(t *testing.T) {
	period := &model.Period{
		ID:      "dddddddddddddddddddddddd",
		Name:    "Season 12",
		BossIDs: []string{"b1", "b2", "b3", "b4", "b5"},
	}
	periodRepo := &mockPeriodRepository{
		findActiveFunc: func(ctx context.Context, now time.Time) (*model.Period, error) {
			return period, nil
		},
	}
	svc := NewCatalogService(periodRepo, &mockBossRepository{}, &mockHealthRepository{}, testCatalogConfig())

	got, err := svc.GetActivePeriod(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != period.ID {
		t.Errorf("expected period %s, got %s", period.ID, got.ID)
	}
}

func TestGetHealth_TableGap_Internal(t *testing.T) {
	svc := NewCatalogService(&mockPeriodRepository{}, &mockBossRepository{}, &mockHealthRepository{}, testCatalogConfig())

	_, err := svc.GetHealth(context.Background(), 2, 7)
	if code := errorCode(t, err); code != apperrors.CodeInternal {
		t.Errorf("a health table gap is an operator error, expected internal, got %s", code)
	}
}

func TestGetHealth_InvalidArguments(t *testing.T) {
	svc := NewCatalogService(&mockPeriodRepository{}, &mockBossRepository{}, &mockHealthRepository{}, testCatalogConfig())

	tests := []struct {
		position int
		round    int
	}{
		{0, 1},
		{6, 1},
		{1, 0},
		{-1, -1},
	}
	for _, tt := range tests {
		_, err := svc.GetHealth(context.Background(), tt.position, tt.round)
		if code := errorCode(t, err); code != apperrors.CodeInvalidInput {
			t.Errorf("position %d round %d: expected invalid input, got %s", tt.position, tt.round, code)
		}
	}
}

func TestGetHealth_ResolvesEntry(t *testing.T) {
	healthRepo := &mockHealthRepository{
		findFunc: func(ctx context.Context, position int, round int) (*model.BossHealth, error) {
			return &model.BossHealth{Position: position, RoundFrom: 3, RoundTo: 10, Health: 8_000_000}, nil
		},
	}
	svc := NewCatalogService(&mockPeriodRepository{}, &mockBossRepository{}, healthRepo, testCatalogConfig())

	health, err := svc.GetHealth(context.Background(), 4, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Health != 8_000_000 {
		t.Errorf("expected health 8000000, got %d", health.Health)
	}
	if !health.Covers(5) {
		t.Error("returned entry must cover the requested round")
	}
}

func TestGetBossesByIDs_EmptyInput(t *testing.T) {
	svc := NewCatalogService(&mockPeriodRepository{}, &mockBossRepository{}, &mockHealthRepository{}, testCatalogConfig())

	bosses, err := svc.GetBossesByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bosses) != 0 {
		t.Errorf("expected empty map, got %d entries", len(bosses))
	}
}

func TestGetBoss_NotFound(t *testing.T) {
	svc := NewCatalogService(&mockPeriodRepository{}, &mockBossRepository{}, &mockHealthRepository{}, testCatalogConfig())

	_, err := svc.GetBoss(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeee")
	if code := errorCode(t, err); code != apperrors.CodeNotFound {
		t.Errorf("expected not found, got %s", code)
	}
}

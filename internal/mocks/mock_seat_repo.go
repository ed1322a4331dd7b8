package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

type MockSeatRepo struct {
	mock.Mock
	domain.SeatRepository
}

func (m *MockSeatRepo) ClaimSeats(
	ctx context.Context,
	screeningID int,
	keys []domain.SeatKey,
	reservationID uuid.UUID,
) ([]domain.ClaimedSeat, error) {
	args := m.Called(ctx, screeningID, keys, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ClaimedSeat), args.Error(1)
}

func (m *MockSeatRepo) ReleaseSeats(ctx context.Context, screeningID int, keys []domain.SeatKey) error {
	args := m.Called(ctx, screeningID, keys)
	return args.Error(0)
}

func (m *MockSeatRepo) PriceFor(ctx context.Context, screeningID int, key domain.SeatKey) (decimal.Decimal, error) {
	args := m.Called(ctx, screeningID, key)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSeatRepo) GetSeatMap(ctx context.Context, screeningID int) (*domain.SeatMap, error) {
	args := m.Called(ctx, screeningID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SeatMap), args.Error(1)
}

func (m *MockSeatRepo) CountClaims(ctx context.Context, screeningID int) (int, error) {
	args := m.Called(ctx, screeningID)
	return args.Int(0), args.Error(1)
}

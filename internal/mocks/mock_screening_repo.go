package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

type MockScreeningRepo struct {
	mock.Mock
	domain.ScreeningRepository
}

func (m *MockScreeningRepo) Create(ctx context.Context, screening *domain.Screening, seats []domain.Seat) error {
	args := m.Called(ctx, screening, seats)
	return args.Error(0)
}

func (m *MockScreeningRepo) GetById(ctx context.Context, id int) (*domain.Screening, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Screening), args.Error(1)
}

func (m *MockScreeningRepo) Update(ctx context.Context, screening *domain.Screening) error {
	args := m.Called(ctx, screening)
	return args.Error(0)
}

func (m *MockScreeningRepo) FindConflict(ctx context.Context, theaterID int, window domain.TimeWindow, excludeID int) (int, error) {
	args := m.Called(ctx, theaterID, window, excludeID)
	return args.Int(0), args.Error(1)
}

func (m *MockScreeningRepo) Archive(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

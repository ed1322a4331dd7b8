package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

type MockPaymentRepo struct {
	mock.Mock
	domain.PaymentRepository
}

func (m *MockPaymentRepo) GetByReservationId(ctx context.Context, reservationID uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepo) MarkRefunded(ctx context.Context, id int, refundAmount decimal.Decimal) error {
	args := m.Called(ctx, id, refundAmount)
	return args.Error(0)
}

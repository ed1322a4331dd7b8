package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) Capture(
	ctx context.Context,
	amount decimal.Decimal,
	currency string,
	method domain.PaymentMethod,
) (string, error) {
	args := m.Called(ctx, amount, currency, method)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProvider) Refund(ctx context.Context, providerRef string, amount decimal.Decimal) error {
	args := m.Called(ctx, providerRef, amount)
	return args.Error(0)
}

package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

// MockPaymentProvider approves every capture. Used in development and in the
// integration suite, where no Stripe account is available.
type MockPaymentProvider struct{}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) Capture(
	ctx context.Context,
	amount decimal.Decimal,
	currency string,
	method domain.PaymentMethod,
) (string, error) {
	return fmt.Sprintf("mock_%s", uuid.NewString()), nil
}

func (m *MockPaymentProvider) Refund(ctx context.Context, providerRef string, amount decimal.Decimal) error {
	return nil
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records what was charged for a reservation. Its amount always
// equals the reservation total, which equals the sum of the captured seat
// prices.
type Payment struct {
	ID            int
	ReservationID uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Status        PaymentStatus
	ProviderRef   *string
	RefundAmount  decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// PaymentMethod is the opaque payment instruction collected at the boundary.
// Deferred leaves the reservation pending; the holder pays at the theater.
type PaymentMethod struct {
	ProviderToken string
	Deferred      bool
}

type PaymentProvider interface {
	Capture(ctx context.Context, amount decimal.Decimal, currency string, method PaymentMethod) (providerRef string, err error)
	Refund(ctx context.Context, providerRef string, amount decimal.Decimal) error
}

type PaymentRepository interface {
	GetByReservationId(ctx context.Context, reservationID uuid.UUID) (*Payment, error)
	MarkRefunded(ctx context.Context, id int, refundAmount decimal.Decimal) error
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seatwise/screening-booking-system/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) GetByReservationId(ctx context.Context, reservationID uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT id, reservation_id, amount, currency, status, provider_ref, refund_amount, created_at, updated_at
		FROM payments
		WHERE reservation_id = $1
	`

	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, reservationID).Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.ProviderRef,
		&payment.RefundAmount,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &payment, nil
}

func (p *PostgresPaymentRepository) MarkRefunded(ctx context.Context, id int, refundAmount decimal.Decimal) error {
	query := `
		UPDATE payments
		SET status = 'refunded', refund_amount = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := p.db.Exec(ctx, query, refundAmount, id)

	return err
}

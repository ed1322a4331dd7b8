package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seatwise/screening-booking-system/internal/domain"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

// Create persists the reservation, its captured seats, and its payment record
// in one transaction. The caller has already claimed the seats; if this
// transaction fails, the caller releases the claim.
func (p *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation, payment *domain.Payment) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO reservations (
				id, holder_id, screening_id, total, status, contact_email, confirmed_at, refund_amount
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING version, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			reservation.ID,
			reservation.HolderID,
			reservation.ScreeningID,
			reservation.Total,
			reservation.Status,
			reservation.ContactEmail,
			reservation.ConfirmedAt,
			reservation.RefundAmount,
		).Scan(&reservation.Version, &reservation.CreatedAt)

		if err != nil {
			return err
		}

		query = `
			INSERT INTO payments (reservation_id, amount, currency, status, provider_ref, refund_amount)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			payment.ReservationID,
			payment.Amount,
			payment.Currency,
			payment.Status,
			payment.ProviderRef,
			payment.RefundAmount,
		).Scan(&payment.ID, &payment.CreatedAt)

		if err != nil {
			return err
		}

		query = `UPDATE reservations SET payment_id = $1 WHERE id = $2`

		_, err = tx.Exec(ctx, query, payment.ID, reservation.ID)
		if err != nil {
			return err
		}

		reservation.PaymentID = payment.ID

		rows := make([][]any, 0, len(reservation.Seats))
		for _, seat := range reservation.Seats {
			rows = append(rows, []any{
				reservation.ID,
				seat.Key.Row,
				seat.Key.Number,
				seat.Class,
				seat.Price,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"reservation_seats"},
			[]string{"reservation_id", "seat_row", "seat_number", "seat_class", "price"},
			pgx.CopyFromRows(rows),
		)

		return err
	})
}

func (p *PostgresReservationRepository) GetById(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	query := `
		SELECT
			id, holder_id, screening_id, total, status, COALESCE(payment_id, 0),
			contact_email, confirmed_at, checked_in_at, cancelled_at,
			cancel_reason, refund_amount, version, created_at
		FROM reservations
		WHERE id = $1
	`

	var reservation domain.Reservation

	err := p.db.QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.HolderID,
		&reservation.ScreeningID,
		&reservation.Total,
		&reservation.Status,
		&reservation.PaymentID,
		&reservation.ContactEmail,
		&reservation.ConfirmedAt,
		&reservation.CheckedInAt,
		&reservation.CancelledAt,
		&reservation.CancelReason,
		&reservation.RefundAmount,
		&reservation.Version,
		&reservation.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	seats, err := p.retrieveReservationSeats(ctx, id)
	if err != nil {
		return nil, err
	}

	reservation.Seats = seats

	return &reservation, nil
}

func (p *PostgresReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $1, confirmed_at = $2, checked_in_at = $3, cancelled_at = $4,
			cancel_reason = $5, refund_amount = $6, version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	err := p.db.QueryRow(
		ctx,
		query,
		reservation.Status,
		reservation.ConfirmedAt,
		reservation.CheckedInAt,
		reservation.CancelledAt,
		reservation.CancelReason,
		reservation.RefundAmount,
		reservation.ID,
		reservation.Version,
	).Scan(&reservation.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEditConflict
		}

		return err
	}

	return nil
}

func (p *PostgresReservationRepository) GetSummariesByHolderId(
	ctx context.Context,
	holderID int,
	pagination domain.Pagination,
) ([]domain.ReservationSummary, *domain.Metadata, error) {
	query := `
		SELECT
			COUNT(*) OVER(),
			r.id,
			s.movie_title,
			t.name,
			s.starts_at,
			(SELECT COUNT(*) FROM reservation_seats rs WHERE rs.reservation_id = r.id),
			r.total,
			r.status,
			r.created_at
		FROM reservations r
		JOIN screenings s ON r.screening_id = s.id
		JOIN theaters t ON s.theater_id = t.id
		WHERE r.holder_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, holderID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	summaries := make([]domain.ReservationSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var summary domain.ReservationSummary

		err := rows.Scan(
			&totalRecords,
			&summary.ReservationID,
			&summary.MovieTitle,
			&summary.TheaterName,
			&summary.StartsAt,
			&summary.SeatCount,
			&summary.Total,
			&summary.Status,
			&summary.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return summaries, metadata, nil
}

func (p *PostgresReservationRepository) retrieveReservationSeats(
	ctx context.Context,
	reservationID uuid.UUID,
) ([]domain.ClaimedSeat, error) {
	query := `
		SELECT seat_row, seat_number, seat_class, price
		FROM reservation_seats
		WHERE reservation_id = $1
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.ClaimedSeat, 0)

	for rows.Next() {
		var seat domain.ClaimedSeat

		err = rows.Scan(&seat.Key.Row, &seat.Key.Number, &seat.Class, &seat.Price)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

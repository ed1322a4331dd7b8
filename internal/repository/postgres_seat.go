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

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

// ClaimSeats flips every requested seat to unavailable in a single conditional
// UPDATE and records one claim row per seat, all in one transaction. If any
// requested seat is already claimed or unknown, the row count comes up short,
// the transaction rolls back, and the offending keys are reported. Concurrent
// claims over intersecting seat sets serialize on the row locks the UPDATE
// takes, so at most one of them can win.
func (p *PostgresSeatRepository) ClaimSeats(
	ctx context.Context,
	screeningID int,
	keys []domain.SeatKey,
	reservationID uuid.UUID,
) ([]domain.ClaimedSeat, error) {
	seatRows, seatNumbers := seatKeyArrays(keys)

	claimed := make(map[domain.SeatKey]domain.ClaimedSeat, len(keys))

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE screening_seats ss
			SET is_available = FALSE
			FROM (
				SELECT unnest($2::text[]) AS seat_row, unnest($3::int[]) AS seat_number
			) req
			WHERE ss.screening_id = $1
				AND ss.seat_row = req.seat_row
				AND ss.seat_number = req.seat_number
				AND ss.is_available
			RETURNING ss.seat_row, ss.seat_number, ss.seat_class, ss.price
		`

		rows, err := tx.Query(ctx, query, screeningID, seatRows, seatNumbers)
		if err != nil {
			return err
		}

		for rows.Next() {
			var seat domain.ClaimedSeat

			err = rows.Scan(&seat.Key.Row, &seat.Key.Number, &seat.Class, &seat.Price)
			if err != nil {
				rows.Close()
				return err
			}

			claimed[seat.Key] = seat
		}

		rows.Close()

		if err = rows.Err(); err != nil {
			return err
		}

		if len(claimed) != len(keys) {
			unavailable := make([]domain.SeatKey, 0, len(keys)-len(claimed))
			for _, k := range keys {
				if _, ok := claimed[k]; !ok {
					unavailable = append(unavailable, k)
				}
			}

			return domain.SeatUnavailableError{SeatKeys: unavailable}
		}

		claimRows := make([][]any, 0, len(keys))
		for _, k := range keys {
			claimRows = append(claimRows, []any{screeningID, k.Row, k.Number, reservationID})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"seat_claims"},
			[]string{"screening_id", "seat_row", "seat_number", "reservation_id"},
			pgx.CopyFromRows(claimRows),
		)

		return err
	})

	if err != nil {
		return nil, err
	}

	result := make([]domain.ClaimedSeat, 0, len(keys))
	for _, k := range keys {
		result = append(result, claimed[k])
	}

	return result, nil
}

// ReleaseSeats removes the claims and flips the seats back to available.
// Releasing a seat that is already available is a no-op, so a release can be
// retried safely.
func (p *PostgresSeatRepository) ReleaseSeats(ctx context.Context, screeningID int, keys []domain.SeatKey) error {
	seatRows, seatNumbers := seatKeyArrays(keys)

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			DELETE FROM seat_claims sc
			USING (
				SELECT unnest($2::text[]) AS seat_row, unnest($3::int[]) AS seat_number
			) req
			WHERE sc.screening_id = $1
				AND sc.seat_row = req.seat_row
				AND sc.seat_number = req.seat_number
		`

		_, err := tx.Exec(ctx, query, screeningID, seatRows, seatNumbers)
		if err != nil {
			return err
		}

		query = `
			UPDATE screening_seats ss
			SET is_available = TRUE
			FROM (
				SELECT unnest($2::text[]) AS seat_row, unnest($3::int[]) AS seat_number
			) req
			WHERE ss.screening_id = $1
				AND ss.seat_row = req.seat_row
				AND ss.seat_number = req.seat_number
		`

		_, err = tx.Exec(ctx, query, screeningID, seatRows, seatNumbers)

		return err
	})
}

func (p *PostgresSeatRepository) PriceFor(ctx context.Context, screeningID int, key domain.SeatKey) (decimal.Decimal, error) {
	query := `
		SELECT price
		FROM screening_seats
		WHERE screening_id = $1 AND seat_row = $2 AND seat_number = $3
	`

	var price decimal.Decimal

	err := p.db.QueryRow(ctx, query, screeningID, key.Row, key.Number).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.SeatNotFoundError{SeatKey: key}
		}

		return decimal.Zero, err
	}

	return price, nil
}

func (p *PostgresSeatRepository) GetSeatMap(ctx context.Context, screeningID int) (*domain.SeatMap, error) {
	query := `
		SELECT s.id, t.id, t.name, s.movie_title, s.starts_at
		FROM screenings s
		JOIN theaters t ON s.theater_id = t.id
		WHERE s.id = $1
	`

	var seatMap domain.SeatMap

	err := p.db.QueryRow(ctx, query, screeningID).Scan(
		&seatMap.ScreeningID,
		&seatMap.TheaterID,
		&seatMap.TheaterName,
		&seatMap.MovieTitle,
		&seatMap.StartsAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	query = `
		SELECT seat_row, seat_number, seat_class, price, is_available
		FROM screening_seats
		WHERE screening_id = $1
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatMap.Seats = make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&seat.Key.Row,
			&seat.Key.Number,
			&seat.Class,
			&seat.Price,
			&seat.Available,
		)
		if err != nil {
			return nil, err
		}

		seatMap.Seats = append(seatMap.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &seatMap, nil
}

func (p *PostgresSeatRepository) CountClaims(ctx context.Context, screeningID int) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM screening_seats
		WHERE screening_id = $1 AND NOT is_available
	`

	var count int

	err := p.db.QueryRow(ctx, query, screeningID).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func seatKeyArrays(keys []domain.SeatKey) ([]string, []int) {
	seatRows := make([]string, len(keys))
	seatNumbers := make([]int, len(keys))

	for i, k := range keys {
		seatRows[i] = k.Row
		seatNumbers[i] = k.Number
	}

	return seatRows, seatNumbers
}

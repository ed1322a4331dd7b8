package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seatwise/screening-booking-system/internal/domain"
)

type PostgresScreeningRepository struct {
	db *pgxpool.Pool
}

func NewPostgresScreeningRepository(db *pgxpool.Pool) *PostgresScreeningRepository {
	return &PostgresScreeningRepository{
		db: db,
	}
}

// Create inserts the screening and bulk-inserts its seat inventory in one
// transaction. The exclusion constraint on (theater_id, time range) is the
// authoritative overlap check; a violation is reported as a
// ScheduleConflictError naming the colliding screening.
func (p *PostgresScreeningRepository) Create(ctx context.Context, screening *domain.Screening, seats []domain.Seat) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO screenings (theater_id, movie_title, starts_at, ends_at, base_price, status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, version, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			screening.TheaterID,
			screening.MovieTitle,
			screening.Window.StartsAt,
			screening.Window.EndsAt,
			screening.BasePrice,
			screening.Status,
		).Scan(&screening.ID, &screening.Version, &screening.CreatedAt)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(seats))
		for _, seat := range seats {
			rows = append(rows, []any{
				screening.ID,
				seat.Key.Row,
				seat.Key.Number,
				seat.Class,
				seat.Price,
				seat.Available,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"screening_seats"},
			[]string{"screening_id", "seat_row", "seat_number", "seat_class", "price", "is_available"},
			pgx.CopyFromRows(rows),
		)

		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return p.conflictError(ctx, screening.TheaterID, screening.Window, 0)
		}

		return err
	}

	return nil
}

func (p *PostgresScreeningRepository) GetById(ctx context.Context, id int) (*domain.Screening, error) {
	query := `
		SELECT id, theater_id, movie_title, starts_at, ends_at, base_price, status, version, created_at
		FROM screenings
		WHERE id = $1
	`

	var screening domain.Screening

	err := p.db.QueryRow(ctx, query, id).Scan(
		&screening.ID,
		&screening.TheaterID,
		&screening.MovieTitle,
		&screening.Window.StartsAt,
		&screening.Window.EndsAt,
		&screening.BasePrice,
		&screening.Status,
		&screening.Version,
		&screening.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &screening, nil
}

func (p *PostgresScreeningRepository) Update(ctx context.Context, screening *domain.Screening) error {
	query := `
		UPDATE screenings
		SET theater_id = $1, movie_title = $2, starts_at = $3, ends_at = $4,
			base_price = $5, status = $6, version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	err := p.db.QueryRow(
		ctx,
		query,
		screening.TheaterID,
		screening.MovieTitle,
		screening.Window.StartsAt,
		screening.Window.EndsAt,
		screening.BasePrice,
		screening.Status,
		screening.ID,
		screening.Version,
	).Scan(&screening.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEditConflict
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
			return p.conflictError(ctx, screening.TheaterID, screening.Window, screening.ID)
		}

		return err
	}

	return nil
}

func (p *PostgresScreeningRepository) FindConflict(
	ctx context.Context,
	theaterID int,
	window domain.TimeWindow,
	excludeID int,
) (int, error) {
	query := `
		SELECT id
		FROM screenings
		WHERE theater_id = $1
			AND status = 'scheduled'
			AND starts_at < $3
			AND $2 < ends_at
			AND id <> $4
		LIMIT 1
	`

	var conflictID int

	err := p.db.QueryRow(ctx, query, theaterID, window.StartsAt, window.EndsAt, excludeID).Scan(&conflictID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}

		return 0, err
	}

	return conflictID, nil
}

func (p *PostgresScreeningRepository) Archive(ctx context.Context, id int) error {
	query := `
		UPDATE screenings
		SET status = 'archived', version = version + 1
		WHERE id = $1 AND status = 'scheduled'
	`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		_, err := p.GetById(ctx, id)
		if err != nil {
			return err
		}

		// The row exists but is already archived. Archiving is idempotent.
	}

	return nil
}

// conflictError runs outside the failed transaction to recover the id of the
// screening the exclusion constraint collided with.
func (p *PostgresScreeningRepository) conflictError(
	ctx context.Context,
	theaterID int,
	window domain.TimeWindow,
	excludeID int,
) error {
	conflictID, err := p.FindConflict(ctx, theaterID, window, excludeID)
	if err != nil || conflictID == 0 {
		return domain.ScheduleConflictError{}
	}

	return domain.ScheduleConflictError{ScreeningID: conflictID}
}

package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/seatwise/screening-booking-system/internal/domain"
	"github.com/seatwise/screening-booking-system/internal/repository"
)

// Exercises the repository guarantees that the HTTP layer's pre-checks would
// otherwise mask: the exclusion constraint on overlapping windows and the
// optimistic version check.
type RepositoryTestSuite struct {
	BaseSuite
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) TestOverlappingInsertHitsExclusionConstraint() {
	resetDatabase(s.T(), s.app)
	executeSQLFile(s.T(), s.app, "testdata/screenings_up.sql")

	repo := repository.NewPostgresScreeningRepository(s.app.DB)

	seeded, err := repo.GetById(context.Background(), TestScreeningId)
	s.Require().NoError(err)

	overlapping := &domain.Screening{
		TheaterID:  TestTheaterId,
		MovieTitle: "Double Booked",
		Window: domain.TimeWindow{
			StartsAt: seeded.Window.StartsAt.Add(30 * time.Minute),
			EndsAt:   seeded.Window.EndsAt.Add(30 * time.Minute),
		},
		BasePrice: decimal.NewFromInt(10),
		Status:    domain.ScreeningStatusScheduled,
	}

	seats, err := domain.BuildSeatInventory(overlapping.BasePrice, []domain.TemplateSeat{
		{Row: "A", Number: 1, Class: domain.SeatClassRegular},
	})
	s.Require().NoError(err)

	err = repo.Create(context.Background(), overlapping, seats)

	var conflictErr domain.ScheduleConflictError
	s.Require().ErrorAs(err, &conflictErr)
	s.Equal(TestScreeningId, conflictErr.ScreeningID)
}

func (s *RepositoryTestSuite) TestStaleScreeningUpdateReturnsEditConflict() {
	resetDatabase(s.T(), s.app)
	executeSQLFile(s.T(), s.app, "testdata/screenings_up.sql")

	repo := repository.NewPostgresScreeningRepository(s.app.DB)

	first, err := repo.GetById(context.Background(), TestScreeningId)
	s.Require().NoError(err)

	stale, err := repo.GetById(context.Background(), TestScreeningId)
	s.Require().NoError(err)

	first.Window.StartsAt = first.Window.StartsAt.Add(time.Hour)
	first.Window.EndsAt = first.Window.EndsAt.Add(time.Hour)
	s.Require().NoError(repo.Update(context.Background(), first))

	stale.Window.StartsAt = stale.Window.StartsAt.Add(2 * time.Hour)
	stale.Window.EndsAt = stale.Window.EndsAt.Add(2 * time.Hour)
	err = repo.Update(context.Background(), stale)

	s.ErrorIs(err, domain.ErrEditConflict)
}

func (s *RepositoryTestSuite) TestPartialClaimLeavesNothingBehind() {
	resetDatabase(s.T(), s.app)
	executeSQLFile(s.T(), s.app, "testdata/screenings_up.sql")

	seatRepo := repository.NewPostgresSeatRepository(s.app.DB)

	_, err := s.app.DB.Exec(context.Background(),
		"UPDATE screening_seats SET is_available = FALSE WHERE screening_id = 1 AND seat_row = 'A' AND seat_number = 2")
	s.Require().NoError(err)

	reservationID := uuid.New()
	keys := []domain.SeatKey{{Row: "A", Number: 1}, {Row: "A", Number: 2}}

	_, err = seatRepo.ClaimSeats(context.Background(), TestScreeningId, keys, reservationID)

	var unavailableErr domain.SeatUnavailableError
	s.Require().ErrorAs(err, &unavailableErr)
	s.Equal([]domain.SeatKey{{Row: "A", Number: 2}}, unavailableErr.SeatKeys)

	// A1 was claimable on its own; the failed claim must not have kept it.
	var available bool
	err = s.app.DB.QueryRow(context.Background(),
		"SELECT is_available FROM screening_seats WHERE screening_id = 1 AND seat_row = 'A' AND seat_number = 1").Scan(&available)
	s.Require().NoError(err)
	s.True(available)

	var claims int
	err = s.app.DB.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM seat_claims WHERE reservation_id = $1", reservationID).Scan(&claims)
	s.Require().NoError(err)
	s.Equal(0, claims)
}

func (s *RepositoryTestSuite) TestPriceFor() {
	resetDatabase(s.T(), s.app)
	executeSQLFile(s.T(), s.app, "testdata/screenings_up.sql")

	seatRepo := repository.NewPostgresSeatRepository(s.app.DB)

	price, err := seatRepo.PriceFor(context.Background(), TestScreeningId, domain.SeatKey{Row: "B", Number: 1})
	s.Require().NoError(err)
	s.True(price.Equal(decimal.NewFromFloat(12.5)), "got price %s", price)

	_, err = seatRepo.PriceFor(context.Background(), TestScreeningId, domain.SeatKey{Row: "Z", Number: 9})

	var notFoundErr domain.SeatNotFoundError
	s.Require().ErrorAs(err, &notFoundErr)
	s.Equal(domain.SeatKey{Row: "Z", Number: 9}, notFoundErr.SeatKey)
}

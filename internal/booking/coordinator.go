// Package booking orchestrates the claim-then-create protocol between the
// seat inventory, the reservation lifecycle, and the payment provider.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

type Coordinator struct {
	screeningRepo   domain.ScreeningRepository
	seatRepo        domain.SeatRepository
	reservationRepo domain.ReservationRepository
	paymentRepo     domain.PaymentRepository
	paymentProvider domain.PaymentProvider
	policy          domain.LifecyclePolicy
	logger          *slog.Logger

	// now is swapped out in tests.
	now func() time.Time
}

func NewCoordinator(
	screeningRepo domain.ScreeningRepository,
	seatRepo domain.SeatRepository,
	reservationRepo domain.ReservationRepository,
	paymentRepo domain.PaymentRepository,
	paymentProvider domain.PaymentProvider,
	policy domain.LifecyclePolicy,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		screeningRepo:   screeningRepo,
		seatRepo:        seatRepo,
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		paymentProvider: paymentProvider,
		policy:          policy,
		logger:          logger,
		now:             time.Now,
	}
}

const paymentCurrency = "USD"

type BookingRequest struct {
	ScreeningID  int
	SeatKeys     []domain.SeatKey
	HolderID     int
	ContactEmail string
	Payment      domain.PaymentMethod
}

// BookSeats claims the requested seats and persists a reservation over them.
// If anything fails after the claim succeeded, the claim is released before
// the error is surfaced: seats are never left claimed without a reservation
// record.
func (c *Coordinator) BookSeats(ctx context.Context, req BookingRequest) (*domain.Reservation, error) {
	screening, err := c.screeningRepo.GetById(ctx, req.ScreeningID)
	if err != nil {
		return nil, err
	}

	now := c.now()
	if !screening.IsBookable(now) {
		return nil, domain.ErrScreeningUnavailable
	}

	keys := dedupeKeys(req.SeatKeys)
	if len(keys) == 0 {
		return nil, domain.SeatUnavailableError{}
	}

	reservationID := uuid.New()

	claimed, err := c.seatRepo.ClaimSeats(ctx, screening.ID, keys, reservationID)
	if err != nil {
		return nil, err
	}

	reservation := domain.NewReservation(reservationID, req.HolderID, screening.ID, claimed, req.ContactEmail)

	payment := &domain.Payment{
		ReservationID: reservationID,
		Amount:        reservation.Total,
		Currency:      paymentCurrency,
		Status:        domain.PaymentStatusPending,
		RefundAmount:  decimal.Zero,
	}

	if !req.Payment.Deferred {
		providerRef, err := c.paymentProvider.Capture(ctx, reservation.Total, payment.Currency, req.Payment)
		if err != nil {
			c.releaseClaim(ctx, screening.ID, keys)
			return nil, fmt.Errorf("payment capture failed: %w", err)
		}

		payment.ProviderRef = &providerRef
		payment.Status = domain.PaymentStatusCompleted

		if err := reservation.Confirm(now, screening.Window.StartsAt); err != nil {
			c.releaseClaim(ctx, screening.ID, keys)
			c.refundCapture(ctx, providerRef, payment.Amount)
			return nil, err
		}
	}

	if err := c.reservationRepo.Create(ctx, reservation, payment); err != nil {
		c.releaseClaim(ctx, screening.ID, keys)
		if payment.ProviderRef != nil {
			c.refundCapture(ctx, *payment.ProviderRef, payment.Amount)
		}

		return nil, fmt.Errorf("failed to persist reservation: %w", err)
	}

	return reservation, nil
}

// Cancel transitions the reservation to cancelled, releases its seats, and
// refunds the computed amount. Only the holder or an admin may cancel.
func (c *Coordinator) Cancel(
	ctx context.Context,
	reservationID uuid.UUID,
	actorID int,
	isAdmin bool,
	reason string,
) (decimal.Decimal, error) {
	reservation, err := c.reservationRepo.GetById(ctx, reservationID)
	if err != nil {
		return decimal.Zero, err
	}

	if reservation.HolderID != actorID && !isAdmin {
		return decimal.Zero, domain.ErrAccessDenied
	}

	screening, err := c.screeningRepo.GetById(ctx, reservation.ScreeningID)
	if err != nil {
		return decimal.Zero, err
	}

	refund, err := reservation.Cancel(c.now(), screening.Window.StartsAt, c.policy, reason)
	if err != nil {
		return decimal.Zero, err
	}

	var payment *domain.Payment

	if refund.IsPositive() {
		payment, err = c.paymentRepo.GetByReservationId(ctx, reservation.ID)
		if err != nil {
			return decimal.Zero, err
		}

		// A refund can only return money that was actually captured. A deferred
		// payment still pending at cancellation time leaves nothing to give back.
		if payment.Status != domain.PaymentStatusCompleted {
			refund = decimal.Zero
			reservation.RefundAmount = decimal.Zero
		}
	}

	if err := c.reservationRepo.Update(ctx, reservation); err != nil {
		return decimal.Zero, err
	}

	// The cancellation is committed from here on. Release and refund failures
	// are logged, not surfaced: the release is idempotent and can be retried,
	// and a seat staying unavailable longer than necessary is the accepted
	// worst case.
	if err := c.seatRepo.ReleaseSeats(ctx, reservation.ScreeningID, reservation.SeatKeys()); err != nil {
		c.logger.Error("failed to release seats of cancelled reservation",
			"reservation_id", reservation.ID,
			"screening_id", reservation.ScreeningID,
			"error", err,
		)
	}

	if refund.IsPositive() {
		if err := c.refundPayment(ctx, payment, refund); err != nil {
			c.logger.Error("failed to refund cancelled reservation",
				"reservation_id", reservation.ID,
				"refund", refund,
				"error", err,
			)
		}
	}

	return refund, nil
}

// CheckIn records the holder's arrival without changing the reservation
// status. It is only accepted inside the policy's check-in window.
func (c *Coordinator) CheckIn(ctx context.Context, reservationID uuid.UUID) (time.Time, error) {
	reservation, err := c.reservationRepo.GetById(ctx, reservationID)
	if err != nil {
		return time.Time{}, err
	}

	screening, err := c.screeningRepo.GetById(ctx, reservation.ScreeningID)
	if err != nil {
		return time.Time{}, err
	}

	if err := reservation.CheckIn(c.now(), screening.Window.StartsAt, c.policy); err != nil {
		return time.Time{}, err
	}

	if err := c.reservationRepo.Update(ctx, reservation); err != nil {
		return time.Time{}, err
	}

	return *reservation.CheckedInAt, nil
}

// SetStatus applies an administrative transition. Cancellation goes through
// Cancel, never through here, because it has side effects on seats and
// payments.
func (c *Coordinator) SetStatus(ctx context.Context, reservationID uuid.UUID, target domain.ReservationStatus) (*domain.Reservation, error) {
	reservation, err := c.reservationRepo.GetById(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	screening, err := c.screeningRepo.GetById(ctx, reservation.ScreeningID)
	if err != nil {
		return nil, err
	}

	now := c.now()

	switch target {
	case domain.ReservationStatusConfirmed:
		err = reservation.Confirm(now, screening.Window.StartsAt)
	case domain.ReservationStatusCompleted:
		err = reservation.MarkCompleted(now, screening.Window.EndsAt)
	case domain.ReservationStatusNoShow:
		err = reservation.MarkNoShow(now, screening.Window.StartsAt)
	default:
		err = domain.InvalidTransitionError{From: reservation.Status, To: target}
	}

	if err != nil {
		return nil, err
	}

	if err := c.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	return reservation, nil
}

// CreateScreening validates the time window against the theater's existing
// active screenings and materializes the seat inventory in one transaction.
func (c *Coordinator) CreateScreening(
	ctx context.Context,
	theaterID int,
	movieTitle string,
	window domain.TimeWindow,
	basePrice decimal.Decimal,
	template []domain.TemplateSeat,
) (*domain.Screening, error) {
	conflictID, err := c.screeningRepo.FindConflict(ctx, theaterID, window, 0)
	if err != nil {
		return nil, err
	}
	if conflictID != 0 {
		return nil, domain.ScheduleConflictError{ScreeningID: conflictID}
	}

	seats, err := domain.BuildSeatInventory(basePrice, template)
	if err != nil {
		return nil, err
	}

	screening := &domain.Screening{
		TheaterID:  theaterID,
		MovieTitle: movieTitle,
		Window:     window,
		BasePrice:  basePrice,
		Status:     domain.ScreeningStatusScheduled,
	}

	if err := c.screeningRepo.Create(ctx, screening, seats); err != nil {
		return nil, err
	}

	return screening, nil
}

// EditScreening moves a screening to a new window and/or theater. Edits are
// rejected once the screening has started or has any claimed seats.
func (c *Coordinator) EditScreening(
	ctx context.Context,
	screeningID int,
	theaterID int,
	window domain.TimeWindow,
) (*domain.Screening, error) {
	screening, err := c.screeningRepo.GetById(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	claims, err := c.seatRepo.CountClaims(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	if err := screening.CheckEditable(c.now(), claims); err != nil {
		return nil, err
	}

	conflictID, err := c.screeningRepo.FindConflict(ctx, theaterID, window, screeningID)
	if err != nil {
		return nil, err
	}
	if conflictID != 0 {
		return nil, domain.ScheduleConflictError{ScreeningID: conflictID}
	}

	screening.TheaterID = theaterID
	screening.Window = window

	if err := c.screeningRepo.Update(ctx, screening); err != nil {
		return nil, err
	}

	return screening, nil
}

// releaseClaim is the compensating action after a post-claim failure. The
// request context may already be cancelled, so the release runs detached
// from it.
func (c *Coordinator) releaseClaim(ctx context.Context, screeningID int, keys []domain.SeatKey) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := c.seatRepo.ReleaseSeats(releaseCtx, screeningID, keys); err != nil {
		c.logger.Error("compensating seat release failed",
			"screening_id", screeningID,
			"seats", len(keys),
			"error", err,
		)
	}
}

func (c *Coordinator) refundCapture(ctx context.Context, providerRef string, amount decimal.Decimal) {
	refundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := c.paymentProvider.Refund(refundCtx, providerRef, amount); err != nil {
		c.logger.Error("failed to refund orphaned payment capture",
			"provider_ref", providerRef,
			"amount", amount,
			"error", err,
		)
	}
}

// refundPayment settles an already-verified refund: the caller has checked
// that the payment completed, so the only question left is whether an
// external capture has to be reversed before the refund is recorded.
func (c *Coordinator) refundPayment(ctx context.Context, payment *domain.Payment, refund decimal.Decimal) error {
	if payment.ProviderRef != nil {
		if err := c.paymentProvider.Refund(ctx, *payment.ProviderRef, refund); err != nil {
			return err
		}
	}

	return c.paymentRepo.MarkRefunded(ctx, payment.ID, refund)
}

func dedupeKeys(keys []domain.SeatKey) []domain.SeatKey {
	seen := make(map[domain.SeatKey]bool, len(keys))
	out := make([]domain.SeatKey, 0, len(keys))

	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}

	return out
}

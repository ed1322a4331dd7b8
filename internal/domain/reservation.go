package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusNoShow    ReservationStatus = "no_show"
)

// Terminal reports whether no further transition may leave the status.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case ReservationStatusCancelled, ReservationStatusCompleted, ReservationStatusNoShow:
		return true
	}

	return false
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled,
		ReservationStatusCompleted, ReservationStatusNoShow:
		return true
	}

	return false
}

// Reservation is never physically deleted; cancellation and the other
// terminal states are recorded, not erased. Its seat set is immutable after
// creation except by full cancellation.
type Reservation struct {
	ID           uuid.UUID
	HolderID     int
	ScreeningID  int
	Seats        []ClaimedSeat
	Total        decimal.Decimal
	Status       ReservationStatus
	PaymentID    int
	ContactEmail string
	ConfirmedAt  *time.Time
	CheckedInAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
	RefundAmount decimal.Decimal
	Version      int
	CreatedAt    time.Time
}

// NewReservation builds a pending reservation over seats that were already
// claimed under id. The total is the sum of the captured seat prices.
func NewReservation(id uuid.UUID, holderID int, screeningID int, seats []ClaimedSeat, contactEmail string) *Reservation {
	total := decimal.Zero
	for _, s := range seats {
		total = total.Add(s.Price)
	}

	return &Reservation{
		ID:           id,
		HolderID:     holderID,
		ScreeningID:  screeningID,
		Seats:        seats,
		Total:        total,
		Status:       ReservationStatusPending,
		ContactEmail: contactEmail,
		RefundAmount: decimal.Zero,
	}
}

// SeatKeys returns the keys of the claimed seats.
func (r *Reservation) SeatKeys() []SeatKey {
	keys := make([]SeatKey, len(r.Seats))
	for i, s := range r.Seats {
		keys[i] = s.Key
	}

	return keys
}

// Confirm advances a pending reservation once payment capture succeeds.
// Allowed any time before the screening start.
func (r *Reservation) Confirm(now, start time.Time) error {
	if r.Status != ReservationStatusPending || !now.Before(start) {
		return InvalidTransitionError{From: r.Status, To: ReservationStatusConfirmed}
	}

	confirmedAt := now
	r.Status = ReservationStatusConfirmed
	r.ConfirmedAt = &confirmedAt

	return nil
}

// IsCancellable holds while the status is non-terminal and the screening
// start is further away than the policy cutoff.
func (r *Reservation) IsCancellable(now, start time.Time, policy LifecyclePolicy) bool {
	if r.Status.Terminal() {
		return false
	}

	return start.Sub(now) > policy.CancelCutoff
}

// Cancel transitions the reservation to cancelled and returns the refund
// amount owed under the policy. The caller is responsible for releasing the
// seat claims afterwards.
func (r *Reservation) Cancel(now, start time.Time, policy LifecyclePolicy, reason string) (decimal.Decimal, error) {
	if !r.IsCancellable(now, start, policy) {
		return decimal.Zero, InvalidTransitionError{From: r.Status, To: ReservationStatusCancelled}
	}

	cancelledAt := now
	r.Status = ReservationStatusCancelled
	r.CancelledAt = &cancelledAt
	r.CancelReason = reason
	r.RefundAmount = policy.Refund(r.Total, start.Sub(now))

	return r.RefundAmount, nil
}

// CheckIn records the holder's arrival. It is a side transition: the status
// stays confirmed. The window check applies regardless of status.
func (r *Reservation) CheckIn(now, start time.Time, policy LifecyclePolicy) error {
	opensAt, closesAt := policy.CheckInWindow(start)
	if now.Before(opensAt) || now.After(closesAt) {
		return CheckInWindowError{OpensAt: opensAt, ClosesAt: closesAt}
	}

	if r.Status != ReservationStatusConfirmed || r.CheckedInAt != nil {
		return InvalidTransitionError{From: r.Status, To: ReservationStatusConfirmed}
	}

	checkedInAt := now
	r.CheckedInAt = &checkedInAt

	return nil
}

// MarkCompleted is the administrative transition applied after the screening
// has occurred.
func (r *Reservation) MarkCompleted(now, end time.Time) error {
	if r.Status != ReservationStatusConfirmed || now.Before(end) {
		return InvalidTransitionError{From: r.Status, To: ReservationStatusCompleted}
	}

	r.Status = ReservationStatusCompleted

	return nil
}

// MarkNoShow is the administrative transition applied when the holder never
// checked in.
func (r *Reservation) MarkNoShow(now, start time.Time) error {
	if r.Status != ReservationStatusConfirmed || r.CheckedInAt != nil || now.Before(start) {
		return InvalidTransitionError{From: r.Status, To: ReservationStatusNoShow}
	}

	r.Status = ReservationStatusNoShow

	return nil
}

type ReservationSummary struct {
	ReservationID uuid.UUID
	MovieTitle    string
	TheaterName   string
	StartsAt      time.Time
	SeatCount     int
	Total         decimal.Decimal
	Status        ReservationStatus
	CreatedAt     time.Time
}

type ReservationRepository interface {
	// Create persists the reservation, its captured seats, and its payment
	// record in one transaction. A reservation row exists in storage if and
	// only if its seats were successfully claimed beforehand.
	Create(ctx context.Context, reservation *Reservation, payment *Payment) error

	GetById(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// Update persists lifecycle fields with an optimistic version check,
	// returning ErrEditConflict on a stale version.
	Update(ctx context.Context, reservation *Reservation) error

	GetSummariesByHolderId(ctx context.Context, holderID int, pagination Pagination) ([]ReservationSummary, *Metadata, error)
}

package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ScreeningStatus string

const (
	ScreeningStatusScheduled ScreeningStatus = "scheduled"
	ScreeningStatusArchived  ScreeningStatus = "archived"
)

// TimeWindow is a half-open interval [StartsAt, EndsAt).
type TimeWindow struct {
	StartsAt time.Time
	EndsAt   time.Time
}

func (w TimeWindow) Valid() bool {
	return w.EndsAt.After(w.StartsAt)
}

// Overlaps reports whether two half-open intervals conflict:
// [s1,e1) and [s2,e2) overlap iff s1 < e2 and s2 < e1. Back-to-back
// screenings sharing an instant do not conflict.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(w.EndsAt)
}

type Screening struct {
	ID         int
	TheaterID  int
	MovieTitle string
	Window     TimeWindow
	BasePrice  decimal.Decimal
	Status     ScreeningStatus
	Version    int
	CreatedAt  time.Time
}

// IsBookable reports whether new reservations may still be created against
// the screening.
func (s *Screening) IsBookable(now time.Time) bool {
	return s.Status == ScreeningStatusScheduled && now.Before(s.Window.StartsAt)
}

// CheckEditable rejects time/theater edits once the screening has started or
// once any seat is claimed. Edits after a claim would invalidate the captured
// prices that claim was made at.
func (s *Screening) CheckEditable(now time.Time, claimedSeats int) error {
	if s.Status != ScreeningStatusScheduled || !now.Before(s.Window.StartsAt) {
		return ErrScreeningImmutable
	}

	if claimedSeats > 0 {
		return ErrScreeningImmutable
	}

	return nil
}

// TemplateSeat describes one seat of the fixed layout a screening is created
// with. The seat set never grows or shrinks afterwards.
type TemplateSeat struct {
	Row    string
	Number int
	Class  SeatClass
}

// BuildSeatInventory expands a seat template into priced, available seats.
// Every seat key must be unique within the screening.
func BuildSeatInventory(basePrice decimal.Decimal, template []TemplateSeat) ([]Seat, error) {
	seen := make(map[SeatKey]bool, len(template))
	seats := make([]Seat, 0, len(template))

	for _, t := range template {
		if !t.Class.Valid() {
			return nil, fmt.Errorf("invalid seat class %q", t.Class)
		}

		if !ValidSeatRow(t.Row) || t.Number <= 0 {
			return nil, fmt.Errorf("invalid seat %s%d in template", t.Row, t.Number)
		}

		key := SeatKey{Row: t.Row, Number: t.Number}
		if seen[key] {
			return nil, fmt.Errorf("duplicate seat key %s in template", key)
		}
		seen[key] = true

		seats = append(seats, Seat{
			Key:       key,
			Class:     t.Class,
			Price:     basePrice.Mul(t.Class.Multiplier()).Round(2),
			Available: true,
		})
	}

	return seats, nil
}

type ScreeningRepository interface {
	// Create inserts the screening together with its full seat inventory.
	Create(ctx context.Context, screening *Screening, seats []Seat) error

	GetById(ctx context.Context, id int) (*Screening, error)

	// Update persists time/theater/price edits with an optimistic version
	// check, returning ErrEditConflict on a stale version.
	Update(ctx context.Context, screening *Screening) error

	// FindConflict returns the id of an active screening at the theater whose
	// window half-open-overlaps the given one, or 0 if there is none.
	// excludeID skips the screening being edited.
	FindConflict(ctx context.Context, theaterID int, window TimeWindow, excludeID int) (int, error)

	Archive(ctx context.Context, id int) error
}

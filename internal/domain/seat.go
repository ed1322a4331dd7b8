package domain

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SeatClass string

const (
	SeatClassRegular SeatClass = "regular"
	SeatClassPremium SeatClass = "premium"
	SeatClassVIP     SeatClass = "vip"
)

// Multiplier returns the factor applied to a screening's base price to derive
// the price of a seat of this class.
func (c SeatClass) Multiplier() decimal.Decimal {
	switch c {
	case SeatClassPremium:
		return decimal.NewFromFloat(1.25)
	case SeatClassVIP:
		return decimal.NewFromFloat(1.5)
	default:
		return decimal.NewFromInt(1)
	}
}

func (c SeatClass) Valid() bool {
	switch c {
	case SeatClassRegular, SeatClassPremium, SeatClassVIP:
		return true
	}

	return false
}

var (
	seatKeyRgx = regexp.MustCompile(`^([A-Z]{1,2})([1-9][0-9]{0,2})$`)
	seatRowRgx = regexp.MustCompile(`^[A-Z]{1,2}$`)
)

// ValidSeatRow reports whether row is a well-formed row label ("A" to "ZZ").
// Rows are uppercase so that every seat in the inventory forms a key
// ParseSeatKey accepts.
func ValidSeatRow(row string) bool {
	return seatRowRgx.MatchString(row)
}

// SeatKey identifies one physical seat within a screening, e.g. "A12".
type SeatKey struct {
	Row    string
	Number int
}

func (k SeatKey) String() string {
	return fmt.Sprintf("%s%d", k.Row, k.Number)
}

func ParseSeatKey(s string) (SeatKey, error) {
	matches := seatKeyRgx.FindStringSubmatch(s)
	if matches == nil {
		return SeatKey{}, fmt.Errorf("invalid seat key %q", s)
	}

	number, err := strconv.Atoi(matches[2])
	if err != nil {
		return SeatKey{}, fmt.Errorf("invalid seat key %q", s)
	}

	return SeatKey{Row: matches[1], Number: number}, nil
}

type Seat struct {
	Key       SeatKey
	Class     SeatClass
	Price     decimal.Decimal
	Available bool
}

// ClaimedSeat carries the class and price captured at the moment a seat was
// bound to a reservation. Captured prices are what the reservation total is
// computed from, so later screening edits can never change them.
type ClaimedSeat struct {
	Key   SeatKey
	Class SeatClass
	Price decimal.Decimal
}

// SeatMap is an unsynchronized availability snapshot used for display. It may
// lag behind concurrent claims; the claim operation itself is the only
// authoritative availability check.
type SeatMap struct {
	ScreeningID int
	TheaterID   int
	TheaterName string
	MovieTitle  string
	StartsAt    time.Time
	Seats       []Seat
}

type SeatRepository interface {
	// ClaimSeats atomically flips every requested seat to unavailable and
	// binds it to the reservation. If any requested seat is unavailable or
	// unknown, no seat is claimed and a SeatUnavailableError names the
	// offending keys.
	ClaimSeats(ctx context.Context, screeningID int, keys []SeatKey, reservationID uuid.UUID) ([]ClaimedSeat, error)

	// ReleaseSeats flips the given seats back to available and removes their
	// claims. Releasing an already-available seat is a no-op.
	ReleaseSeats(ctx context.Context, screeningID int, keys []SeatKey) error

	PriceFor(ctx context.Context, screeningID int, key SeatKey) (decimal.Decimal, error)
	GetSeatMap(ctx context.Context, screeningID int) (*SeatMap, error)
	CountClaims(ctx context.Context, screeningID int) (int, error)
}

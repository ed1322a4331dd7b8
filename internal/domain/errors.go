package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrScreeningUnavailable = errors.New("screening is not open for booking")
	ErrScreeningImmutable   = errors.New("screening can no longer be edited")
	ErrAccessDenied         = errors.New("access denied")
)

// SeatUnavailableError reports a claim attempt that named seats which are
// already claimed or unknown for the screening. Claims are all-or-nothing,
// so the listed seats are the reason the whole request failed.
type SeatUnavailableError struct {
	SeatKeys []SeatKey
}

func (e SeatUnavailableError) Error() string {
	keys := make([]string, len(e.SeatKeys))
	for i, k := range e.SeatKeys {
		keys[i] = k.String()
	}

	return fmt.Sprintf("seat(s) unavailable: %s", strings.Join(keys, ", "))
}

type SeatNotFoundError struct {
	SeatKey SeatKey
}

func (e SeatNotFoundError) Error() string {
	return fmt.Sprintf("seat %s does not exist for this screening", e.SeatKey)
}

// ScheduleConflictError names the active screening whose time window overlaps
// the one being created or edited.
type ScheduleConflictError struct {
	ScreeningID int
}

func (e ScheduleConflictError) Error() string {
	return fmt.Sprintf("time window overlaps screening %d at the same theater", e.ScreeningID)
}

type InvalidTransitionError struct {
	From ReservationStatus
	To   ReservationStatus
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition reservation from %s to %s", e.From, e.To)
}

type CheckInWindowError struct {
	OpensAt  time.Time
	ClosesAt time.Time
}

func (e CheckInWindowError) Error() string {
	return fmt.Sprintf(
		"check-in is only open between %s and %s",
		e.OpensAt.Format(time.RFC3339),
		e.ClosesAt.Format(time.RFC3339),
	)
}

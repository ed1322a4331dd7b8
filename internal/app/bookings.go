package app

import (
	"errors"
	"net/http"

	"github.com/seatwise/screening-booking-system/internal/booking"
	"github.com/seatwise/screening-booking-system/internal/domain"
)

func (app *Application) CreateReservationHandler(w http.ResponseWriter, r *http.Request) {
	screeningID, err := app.readIDParam(r, "screeningID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input CreateReservationRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	seatKeys := make([]domain.SeatKey, len(input.Seats))
	for i, s := range input.Seats {
		// The seat_key validation rule already vetted the format.
		seatKeys[i], _ = domain.ParseSeatKey(s)
	}

	req := booking.BookingRequest{
		ScreeningID:  screeningID,
		SeatKeys:     seatKeys,
		HolderID:     app.contextGetHolderId(r),
		ContactEmail: input.ContactEmail,
		Payment: domain.PaymentMethod{
			ProviderToken: input.PaymentToken,
			Deferred:      input.DeferPayment,
		},
	}

	reservation, err := app.coordinator.BookSeats(r.Context(), req)
	if err != nil {
		var seatErr domain.SeatUnavailableError
		var transitionErr domain.InvalidTransitionError

		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrScreeningUnavailable):
			app.unprocessableResponse(w, r, domain.ErrScreeningUnavailable.Error())
		case errors.As(err, &seatErr):
			app.conflictResponse(w, r, seatErr.Error())
		case errors.As(err, &transitionErr):
			app.unprocessableResponse(w, r, transitionErr.Error())
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if reservation.Status == domain.ReservationStatusConfirmed && reservation.ContactEmail != "" {
		app.sendReservationEmail(reservation, "reservation_confirmation.tmpl", nil)
	}

	err = app.writeJSON(w, http.StatusCreated, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

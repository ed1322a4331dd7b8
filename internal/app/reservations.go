package app

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

func (app *Application) CancelReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationID, err := app.readUUIDParam(r, "reservationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input CancellationRequest

	if r.ContentLength > 0 {
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
	}

	holderID := app.contextGetHolderId(r)
	isAdmin := app.contextIsAdmin(r)

	refund, err := app.coordinator.Cancel(r.Context(), reservationID, holderID, isAdmin, input.Reason)
	if err != nil {
		var transitionErr domain.InvalidTransitionError

		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrAccessDenied):
			app.forbiddenResponse(w, r)
		case errors.As(err, &transitionErr):
			app.unprocessableResponse(w, r, transitionErr.Error())
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if reservation, err := app.reservationRepo.GetById(r.Context(), reservationID); err == nil && reservation.ContactEmail != "" {
		app.sendReservationEmail(reservation, "reservation_cancelled.tmpl", &refund)
	}

	resp := CancellationResponse{
		Id:           reservationID,
		Status:       string(domain.ReservationStatusCancelled),
		RefundAmount: refund,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CheckInReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationID, err := app.readUUIDParam(r, "reservationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	checkedInAt, err := app.coordinator.CheckIn(r.Context(), reservationID)
	if err != nil {
		var windowErr domain.CheckInWindowError
		var transitionErr domain.InvalidTransitionError

		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.As(err, &windowErr):
			app.unprocessableResponse(w, r, windowErr.Error())
		case errors.As(err, &transitionErr):
			app.unprocessableResponse(w, r, transitionErr.Error())
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := CheckInResponse{
		Id:          reservationID,
		CheckedInAt: checkedInAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateReservationStatusHandler(w http.ResponseWriter, r *http.Request) {
	reservationID, err := app.readUUIDParam(r, "reservationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input UpdateReservationStatusRequest

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

	target := domain.ReservationStatus(input.Status)

	reservation, err := app.coordinator.SetStatus(r.Context(), reservationID, target)
	if err != nil {
		var transitionErr domain.InvalidTransitionError

		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.As(err, &transitionErr):
			app.unprocessableResponse(w, r, transitionErr.Error())
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toReservationResponse(reservation), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetReservationsOfUserHandler(w http.ResponseWriter, r *http.Request) {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if page := r.URL.Query().Get("page"); page != "" {
		pageNum, err := strconv.Atoi(page)
		if err != nil || pageNum < 1 {
			app.badRequestResponse(w, r, errors.New("page must be a positive integer"))
			return
		}
		pagination.Page = pageNum
	}

	if pageSize := r.URL.Query().Get("pageSize"); pageSize != "" {
		pageSizeNum, err := strconv.Atoi(pageSize)
		if err != nil || pageSizeNum < 1 || pageSizeNum > MaxPageSize {
			app.badRequestResponse(w, r, errors.New("pageSize must be between 1 and 100"))
			return
		}
		pagination.PageSize = pageSizeNum
	}

	holderID := app.contextGetHolderId(r)

	reservations, metadata, err := app.reservationRepo.GetSummariesByHolderId(r.Context(), holderID, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := UserReservationsResponse{
		Reservations: toReservationSummaries(reservations),
		Metadata:     toMetadataResponse(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

const seatMapCacheTTL = 5 * time.Second

func (app *Application) CreateScreeningHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateScreeningRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	if _, err := app.theaterRepo.GetById(r.Context(), input.TheaterID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.badRequestResponse(w, r, fmt.Errorf("theater %d does not exist", input.TheaterID))
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	template := make([]domain.TemplateSeat, len(input.Seats))
	seen := make(map[string]bool, len(input.Seats))

	for i, s := range input.Seats {
		key := fmt.Sprintf("%s%d", s.Row, s.Number)
		if seen[key] {
			app.badRequestResponse(w, r, fmt.Errorf("duplicate seat %s in template", key))
			return
		}
		seen[key] = true

		template[i] = domain.TemplateSeat{
			Row:    s.Row,
			Number: s.Number,
			Class:  domain.SeatClass(s.Class),
		}
	}

	window := domain.TimeWindow{StartsAt: input.StartsAt, EndsAt: input.EndsAt}

	screening, err := app.coordinator.CreateScreening(
		r.Context(),
		input.TheaterID,
		input.MovieTitle,
		window,
		input.BasePrice,
		template,
	)
	if err != nil {
		var conflictErr domain.ScheduleConflictError
		if errors.As(err, &conflictErr) {
			app.conflictResponse(w, r, conflictErr.Error())
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toScreeningResponse(screening, len(template))

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateScreeningHandler(w http.ResponseWriter, r *http.Request) {
	screeningID, err := app.readIDParam(r, "screeningID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input UpdateScreeningRequest

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

	window := domain.TimeWindow{StartsAt: input.StartsAt, EndsAt: input.EndsAt}

	screening, err := app.coordinator.EditScreening(r.Context(), screeningID, input.TheaterID, window)
	if err != nil {
		var conflictErr domain.ScheduleConflictError

		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrScreeningImmutable):
			app.unprocessableResponse(w, r, err.Error())
		case errors.As(err, &conflictErr):
			app.conflictResponse(w, r, conflictErr.Error())
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toScreeningResponse(screening, 0), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ArchiveScreeningHandler retires a screening. Archived screenings keep their
// rows and their reservations; they only stop being bookable and stop
// blocking the theater's schedule.
func (app *Application) ArchiveScreeningHandler(w http.ResponseWriter, r *http.Request) {
	screeningID, err := app.readIDParam(r, "screeningID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.screeningRepo.Archive(r.Context(), screeningID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) GetSeatMapHandler(w http.ResponseWriter, r *http.Request) {
	screeningID, err := app.readIDParam(r, "screeningID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if cached, ok := app.cachedSeatMap(r.Context(), screeningID); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(cached)
		return
	}

	seatMap, err := app.seatRepo.GetSeatMap(r.Context(), screeningID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(seatMap)

	app.cacheSeatMap(r.Context(), screeningID, resp)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// The seat map is an unsynchronized snapshot to begin with, so serving one a
// few seconds stale from redis loses nothing. The claim path never reads it.
func (app *Application) cachedSeatMap(ctx context.Context, screeningID int) ([]byte, bool) {
	if app.redis == nil {
		return nil, false
	}

	data, err := app.redis.Get(ctx, seatMapCacheKey(screeningID)).Bytes()
	if err != nil {
		return nil, false
	}

	return data, true
}

func (app *Application) cacheSeatMap(ctx context.Context, screeningID int, resp SeatMapResponse) {
	if app.redis == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return
	}

	err = app.redis.Set(ctx, seatMapCacheKey(screeningID), data, seatMapCacheTTL).Err()
	if err != nil {
		app.logger.Warn("failed to cache seat map", "screening_id", screeningID, "error", err)
	}
}

func seatMapCacheKey(screeningID int) string {
	return fmt.Sprintf("seatmap:%d", screeningID)
}

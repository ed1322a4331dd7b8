package app

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

// sendReservationEmail renders and sends a lifecycle email in the background.
// Email delivery is best effort: a failure is logged and never affects the
// booking or cancellation it describes.
func (app *Application) sendReservationEmail(reservation *domain.Reservation, templateFile string, refund *decimal.Decimal) {
	app.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		screening, err := app.screeningRepo.GetById(ctx, reservation.ScreeningID)
		if err != nil {
			app.logger.Error("failed to load screening for reservation email",
				"reservation_id", reservation.ID, "error", err)
			return
		}

		theaterName := ""
		if theater, err := app.theaterRepo.GetById(ctx, screening.TheaterID); err == nil {
			theaterName = theater.Name
		}

		seatKeys := make([]string, len(reservation.Seats))
		for i, s := range reservation.Seats {
			seatKeys[i] = s.Key.String()
		}

		data := map[string]any{
			"ReservationID": reservation.ID,
			"MovieTitle":    screening.MovieTitle,
			"TheaterName":   theaterName,
			"StartsAt":      screening.Window.StartsAt.Format("Jan 2, 2006 15:04"),
			"Seats":         strings.Join(seatKeys, ", "),
			"Total":         reservation.Total,
			"Currency":      "USD",
		}

		if refund != nil && refund.IsPositive() {
			data["Refund"] = *refund
		}

		err = app.mailer.Send(reservation.ContactEmail, templateFile, data)
		if err != nil {
			app.logger.Error("failed to send reservation email",
				"reservation_id", reservation.ID, "template", templateFile, "error", err)
		}
	})
}

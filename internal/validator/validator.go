package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat_key", validateSeatKey)
	validator.RegisterValidation("seat_row", validateSeatRow)
	validator.RegisterValidation("seat_class", validateSeatClass)
	validator.RegisterValidation("reservation_status", validateReservationStatus)

	return validator
}

func validateSeatKey(fl validator.FieldLevel) bool {
	_, err := domain.ParseSeatKey(fl.Field().String())
	return err == nil
}

func validateSeatRow(fl validator.FieldLevel) bool {
	return domain.ValidSeatRow(fl.Field().String())
}

func validateSeatClass(fl validator.FieldLevel) bool {
	return domain.SeatClass(fl.Field().String()).Valid()
}

func validateReservationStatus(fl validator.FieldLevel) bool {
	return domain.ReservationStatus(fl.Field().String()).Valid()
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", err.Param())
	case "seat_key":
		return "must be a valid seat key, e.g. A12"
	case "seat_row":
		return "must be one or two uppercase letters, e.g. A"
	case "seat_class":
		return "must be one of: regular, premium, vip"
	case "reservation_status":
		return "must be one of: pending, confirmed, cancelled, completed, no_show"
	default:
		return "is invalid"
	}
}

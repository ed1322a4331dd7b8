package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seatwise/screening-booking-system/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type CreateSessionRequest struct {
	HolderID int  `json:"holderId" validate:"required,gt=0"`
	Admin    bool `json:"admin"`
}

type SessionResponse struct {
	HolderID int  `json:"holderId"`
	Admin    bool `json:"admin"`
}

type TemplateSeatRequest struct {
	Row    string `json:"row" validate:"required,seat_row"`
	Number int    `json:"number" validate:"required,gt=0"`
	Class  string `json:"class" validate:"required,seat_class"`
}

type CreateScreeningRequest struct {
	TheaterID  int                   `json:"theaterId" validate:"required,gt=0"`
	MovieTitle string                `json:"movieTitle" validate:"required,min=1,max=200"`
	StartsAt   time.Time             `json:"startsAt" validate:"required"`
	EndsAt     time.Time             `json:"endsAt" validate:"required,gtfield=StartsAt"`
	BasePrice  decimal.Decimal       `json:"basePrice" validate:"required"`
	Seats      []TemplateSeatRequest `json:"seats" validate:"required,min=1,max=1000,dive"`
}

type UpdateScreeningRequest struct {
	TheaterID int       `json:"theaterId" validate:"required,gt=0"`
	StartsAt  time.Time `json:"startsAt" validate:"required"`
	EndsAt    time.Time `json:"endsAt" validate:"required,gtfield=StartsAt"`
}

type ScreeningResponse struct {
	Id         int             `json:"id"`
	TheaterId  int             `json:"theaterId"`
	MovieTitle string          `json:"movieTitle"`
	StartsAt   time.Time       `json:"startsAt"`
	EndsAt     time.Time       `json:"endsAt"`
	BasePrice  decimal.Decimal `json:"basePrice"`
	Status     string          `json:"status"`
	SeatCount  int             `json:"seatCount,omitempty"`
}

type SeatResponse struct {
	Key       string          `json:"key"`
	Class     string          `json:"class"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

type SeatRowResponse struct {
	Row   string         `json:"row"`
	Seats []SeatResponse `json:"seats"`
}

type SeatMapResponse struct {
	ScreeningId int               `json:"screeningId"`
	TheaterId   int               `json:"theaterId"`
	TheaterName string            `json:"theaterName"`
	MovieTitle  string            `json:"movieTitle"`
	StartsAt    time.Time         `json:"startsAt"`
	SeatRows    []SeatRowResponse `json:"seatRows"`
}

type CreateReservationRequest struct {
	Seats        []string `json:"seats" validate:"required,min=1,max=10,dive,seat_key"`
	ContactEmail string   `json:"contactEmail" validate:"omitempty,email"`
	PaymentToken string   `json:"paymentToken" validate:"required_without=DeferPayment"`
	DeferPayment bool     `json:"deferPayment"`
}

type ReservationSeatResponse struct {
	Key   string          `json:"key"`
	Class string          `json:"class"`
	Price decimal.Decimal `json:"price"`
}

type ReservationResponse struct {
	Id          uuid.UUID                 `json:"id"`
	ScreeningId int                       `json:"screeningId"`
	Seats       []ReservationSeatResponse `json:"seats"`
	Total       decimal.Decimal           `json:"total"`
	Status      string                    `json:"status"`
	ConfirmedAt *time.Time                `json:"confirmedAt,omitempty"`
	CheckedInAt *time.Time                `json:"checkedInAt,omitempty"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

type CancellationRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type CancellationResponse struct {
	Id           uuid.UUID       `json:"id"`
	Status       string          `json:"status"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
}

type CheckInResponse struct {
	Id          uuid.UUID `json:"id"`
	CheckedInAt time.Time `json:"checkedInAt"`
}

type UpdateReservationStatusRequest struct {
	Status string `json:"status" validate:"required,reservation_status"`
}

type ReservationSummaryResponse struct {
	Id          uuid.UUID       `json:"id"`
	MovieTitle  string          `json:"movieTitle"`
	TheaterName string          `json:"theaterName"`
	StartsAt    time.Time       `json:"startsAt"`
	SeatCount   int             `json:"seatCount"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type MetadataResponse struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type UserReservationsResponse struct {
	Reservations []ReservationSummaryResponse `json:"reservations"`
	Metadata     MetadataResponse             `json:"metadata"`
}

type HealthcheckResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

func toScreeningResponse(screening *domain.Screening, seatCount int) ScreeningResponse {
	return ScreeningResponse{
		Id:         screening.ID,
		TheaterId:  screening.TheaterID,
		MovieTitle: screening.MovieTitle,
		StartsAt:   screening.Window.StartsAt,
		EndsAt:     screening.Window.EndsAt,
		BasePrice:  screening.BasePrice,
		Status:     string(screening.Status),
		SeatCount:  seatCount,
	}
}

func toSeatMapResponse(seatMap *domain.SeatMap) SeatMapResponse {
	return SeatMapResponse{
		ScreeningId: seatMap.ScreeningID,
		TheaterId:   seatMap.TheaterID,
		TheaterName: seatMap.TheaterName,
		MovieTitle:  seatMap.MovieTitle,
		StartsAt:    seatMap.StartsAt,
		SeatRows:    toSeatRows(seatMap.Seats),
	}
}

func toSeatRows(seats []domain.Seat) []SeatRowResponse {
	// Seats are pre-sorted by row and number, so a single pass groups them.

	var seatRows []SeatRowResponse

	for _, v := range seats {
		if len(seatRows) == 0 || seatRows[len(seatRows)-1].Row != v.Key.Row {
			seatRows = append(seatRows, SeatRowResponse{Row: v.Key.Row})
		}

		row := &seatRows[len(seatRows)-1]
		row.Seats = append(row.Seats, SeatResponse{
			Key:       v.Key.String(),
			Class:     string(v.Class),
			Price:     v.Price,
			Available: v.Available,
		})
	}

	return seatRows
}

func toReservationResponse(reservation *domain.Reservation) ReservationResponse {
	seats := make([]ReservationSeatResponse, len(reservation.Seats))
	for i, s := range reservation.Seats {
		seats[i] = ReservationSeatResponse{
			Key:   s.Key.String(),
			Class: string(s.Class),
			Price: s.Price,
		}
	}

	return ReservationResponse{
		Id:          reservation.ID,
		ScreeningId: reservation.ScreeningID,
		Seats:       seats,
		Total:       reservation.Total,
		Status:      string(reservation.Status),
		ConfirmedAt: reservation.ConfirmedAt,
		CheckedInAt: reservation.CheckedInAt,
		CreatedAt:   reservation.CreatedAt,
	}
}

func toReservationSummaries(reservations []domain.ReservationSummary) []ReservationSummaryResponse {
	summaries := make([]ReservationSummaryResponse, len(reservations))

	for i, v := range reservations {
		summaries[i] = ReservationSummaryResponse{
			Id:          v.ReservationID,
			MovieTitle:  v.MovieTitle,
			TheaterName: v.TheaterName,
			StartsAt:    v.StartsAt,
			SeatCount:   v.SeatCount,
			Total:       v.Total,
			Status:      string(v.Status),
			CreatedAt:   v.CreatedAt,
		}
	}

	return summaries
}

func toMetadataResponse(metadata *domain.Metadata) MetadataResponse {
	return MetadataResponse{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}

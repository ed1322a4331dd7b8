package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/seatwise/screening-booking-system/internal/booking"
	"github.com/seatwise/screening-booking-system/internal/domain"
	"github.com/seatwise/screening-booking-system/internal/mailer"
	"github.com/seatwise/screening-booking-system/internal/mocks"
	"github.com/seatwise/screening-booking-system/internal/validator"
)

type testMocks struct {
	screeningRepo   *mocks.MockScreeningRepo
	seatRepo        *mocks.MockSeatRepo
	reservationRepo *mocks.MockReservationRepo
	paymentRepo     *mocks.MockPaymentRepo
	theaterRepo     *mocks.MockTheaterRepo
	paymentProvider *mocks.MockPaymentProvider
	mailer          *mailer.MockMailer
}

func newTestApplication(opts ...func(*Application)) (*Application, *testMocks) {
	m := &testMocks{
		screeningRepo:   new(mocks.MockScreeningRepo),
		seatRepo:        new(mocks.MockSeatRepo),
		reservationRepo: new(mocks.MockReservationRepo),
		paymentRepo:     new(mocks.MockPaymentRepo),
		theaterRepo:     new(mocks.MockTheaterRepo),
		paymentProvider: new(mocks.MockPaymentProvider),
		mailer:          mailer.NewMockMailer(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	coordinator := booking.NewCoordinator(
		m.screeningRepo,
		m.seatRepo,
		m.reservationRepo,
		m.paymentRepo,
		m.paymentProvider,
		domain.DefaultLifecyclePolicy(),
		logger,
	)

	app := &Application{
		validator:       validator.NewValidator(),
		logger:          logger,
		mailer:          m.mailer,
		sessionManager:  scs.New(),
		screeningRepo:   m.screeningRepo,
		seatRepo:        m.seatRepo,
		reservationRepo: m.reservationRepo,
		paymentRepo:     m.paymentRepo,
		theaterRepo:     m.theaterRepo,
		coordinator:     coordinator,
	}

	for _, opt := range opts {
		opt(app)
	}

	return app, m
}

// asUser attaches the identity the authentication middleware would have put
// on the request context.
func asUser(r *http.Request, holderID int, admin bool) *http.Request {
	ctx := context.WithValue(r.Context(), SessionKeyHolderId, holderID)
	ctx = context.WithValue(ctx, SessionKeyIsAdmin, admin)

	return r.WithContext(ctx)
}

func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reader io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func decodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var resp T
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return resp
}

func checkErrorMessage(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()

	if want == "" {
		return
	}

	resp := decodeResponse[ErrorResponse](t, w)
	if resp.Message != want {
		t.Errorf("expected error message %q, got %q", want, resp.Message)
	}
}

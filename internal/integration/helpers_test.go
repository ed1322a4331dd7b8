package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = []string{"timestamp", "requestId", "createdAt", "confirmedAt", "startsAt", "endsAt", "id"}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req, nil
}

func executeHTTP(testApp *TestApp, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	testApp.App.Routes().ServeHTTP(rec, req)

	return rec.Result()
}

func decodeBody[T any](t testing.TB, body io.Reader) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(body).Decode(&v))

	return v
}

// signIn bootstraps a session for the given holder and returns the session
// cookie to attach to subsequent requests.
func signIn(t testing.TB, testApp *TestApp, holderID int, admin bool) []*http.Cookie {
	t.Helper()

	body := strings.NewReader(fmt.Sprintf(`{"holderId": %d, "admin": %t}`, holderID, admin))

	req, err := prepareRequest(http.MethodPost, "/sessions", body, nil, nil)
	require.NoError(t, err)

	res := executeHTTP(testApp, req)
	defer res.Body.Close()

	require.Equal(t, http.StatusCreated, res.StatusCode)

	return res.Cookies()
}

// resetDatabase clears every table touched by the tests and reseeds the base
// theater, so each test starts from the same state.
func resetDatabase(t testing.TB, testApp *TestApp) {
	t.Helper()

	_, err := testApp.DB.Exec(context.Background(),
		"TRUNCATE theaters, screenings, screening_seats, seat_claims, reservations, reservation_seats, payments RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	executeSQLFile(t, testApp, "testdata/theaters_up.sql")

	testApp.Mailer.Reset()
}

func executeSQLFile(t testing.TB, testApp *TestApp, path string) {
	t.Helper()

	script, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = testApp.DB.Exec(context.Background(), string(script))
	require.NoError(t, err)
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		for _, ignored := range keysToIgnore {
			if k == ignored {
				return true
			}
		}
		return false
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

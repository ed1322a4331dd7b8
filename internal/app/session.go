package app

import "net/http"

type sessionKey string

const (
	SessionKeyHolderId = sessionKey("holderID")
	SessionKeyIsAdmin  = sessionKey("isAdmin")
)

func (s sessionKey) String() string {
	return string(s)
}

func (app *Application) contextGetHolderId(r *http.Request) int {
	holderId, ok := r.Context().Value(SessionKeyHolderId).(int)
	if !ok {
		panic("missing holder id from context")
	}

	return holderId
}

func (app *Application) contextIsAdmin(r *http.Request) bool {
	isAdmin, _ := r.Context().Value(SessionKeyIsAdmin).(bool)
	return isAdmin
}

// CreateSessionHandler binds an already-verified identity to a session.
// Authentication itself happens upstream; this service only needs to know who
// holds the session and whether they administer screenings.
func (app *Application) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateSessionRequest

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

	err = app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.sessionManager.Put(r.Context(), SessionKeyHolderId.String(), input.HolderID)
	app.sessionManager.Put(r.Context(), SessionKeyIsAdmin.String(), input.Admin)

	err = app.writeJSON(w, http.StatusCreated, SessionResponse{HolderID: input.HolderID, Admin: input.Admin}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

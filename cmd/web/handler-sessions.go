package main

import (
	"net/http"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
)

const listedSessions = 50

type sessionsTemplateData struct {
	Sessions []models.SessionSummary
}

func (app *application) sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := app.transcripts.ListSessions(r.Context(), listedSessions)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list sessions"))
		return
	}
	app.render(w, r, http.StatusOK, "sessions", "base", sessionsTemplateData{Sessions: sessions})
}

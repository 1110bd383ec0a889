package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/myrjola/whodunit/internal/autopilot"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/game"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/prompts"
)

const (
	playerIDSessionKey = "player_id"
	flashSessionKey    = "flash"
)

type suspectView struct {
	ID      string
	Name    string
	Turns   int
	Current bool
}

type boardTemplateData struct {
	Title              string
	Briefing           string
	Flash              string
	Status             game.Status
	Suspects           []suspectView
	Current            models.EntityProfile
	Exchanges          []models.Exchange
	Weapons            []string
	Motives            []string
	SuggestedQuestions []string
	Verdict            *models.Verdict
}

// acquirePlayer returns the locked player of the browser session. Call release when done.
func (app *application) acquirePlayer(r *http.Request) (*player, error) {
	ctx := r.Context()
	id := app.sessionManager.GetString(ctx, playerIDSessionKey)
	if id == "" {
		id = uuid.NewString()
		app.sessionManager.Put(ctx, playerIDSessionKey, id)
	}
	p, err := app.games.acquire(id, func() (*game.Game, error) {
		return game.New(app.caseFile, app.responders, app.cfg, app.logger, game.WithJournal(app.transcripts))
	})
	if err != nil {
		return nil, errors.Wrap(err, "acquire player", slog.String("player_id", id))
	}
	return p, nil
}

func (app *application) boardData(g *game.Game, flash string) boardTemplateData {
	status := g.Status()
	current := g.CurrentSuspect()
	suspects := make([]suspectView, len(status.Suspects))
	for i, s := range status.Suspects {
		suspects[i] = suspectView{ID: s.ID, Name: s.Name, Turns: s.Turns, Current: s.ID == current.ID}
	}
	data := boardTemplateData{
		Title:              app.caseFile.Title(),
		Briefing:           prompts.Briefing(app.caseFile),
		Flash:              flash,
		Status:             status,
		Suspects:           suspects,
		Current:            current,
		Exchanges:          g.Exchanges(current.ID),
		Weapons:            app.caseFile.Weapons(),
		Motives:            app.caseFile.Motives(),
		SuggestedQuestions: app.caseFile.SuggestedQuestions(),
	}
	if verdict, ok := g.Verdict(); ok {
		data.Verdict = &verdict
	}
	return data
}

// respond finishes a POST. htmx requests get the board fragment, other requests are redirected to the board.
func (app *application) respond(w http.ResponseWriter, r *http.Request, g *game.Game, flash string) {
	// The htmx middleware stores the HX-* request headers in the context.
	if app.htmx.HxHeader(r.Context()).HxRequest {
		app.render(w, r, http.StatusOK, "home", "board", app.boardData(g, flash))
		return
	}
	if flash != "" {
		app.sessionManager.Put(r.Context(), flashSessionKey, flash)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	p, err := app.acquirePlayer(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer p.release()
	flash := app.sessionManager.PopString(r.Context(), flashSessionKey)
	app.render(w, r, http.StatusOK, "home", "base", app.boardData(p.game, flash))
}

func (app *application) switchSuspect(w http.ResponseWriter, r *http.Request) {
	p, err := app.acquirePlayer(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer p.release()
	if !p.game.SwitchSuspect(r.PathValue("id")) {
		app.notFound(w, r)
		return
	}
	app.respond(w, r, p.game, "")
}

func (app *application) askQuestion(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	p, err := app.acquirePlayer(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer p.release()

	answer, err := p.game.Interrogate(r.Context(), r.PostForm.Get("question"))
	switch {
	case errors.Is(err, game.ErrEmptyQuestion):
		app.respond(w, r, p.game, "Ask a question first.")
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "interrogate"))
	case answer == game.TimeOutMessage || answer == game.CaseClosedMessage:
		app.respond(w, r, p.game, answer)
	default:
		app.respond(w, r, p.game, "")
	}
}

func (app *application) accuse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	p, err := app.acquirePlayer(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer p.release()

	_, err = p.game.MakeAccusation(r.Context(),
		r.PostForm.Get("suspect_id"), r.PostForm.Get("weapon"), r.PostForm.Get("motive"))
	switch {
	case errors.Is(err, game.ErrAccusationMade):
		app.respond(w, r, p.game, "The case is already closed.")
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "make accusation"))
	default:
		app.respond(w, r, p.game, "")
	}
}

func (app *application) reset(w http.ResponseWriter, r *http.Request) {
	p, err := app.acquirePlayer(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer p.release()
	p.game.Reset()
	app.respond(w, r, p.game, "A new investigation has begun.")
}

func (app *application) runAutopilot(w http.ResponseWriter, r *http.Request) {
	p, err := app.acquirePlayer(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	defer p.release()

	report, err := autopilot.New(p.game, app.cfg.Game, app.logger, nil).Run(r.Context())
	switch {
	case errors.Is(err, game.ErrAccusationMade):
		app.respond(w, r, p.game, "The case is already closed.")
	case errors.Is(err, autopilot.ErrDeductionFailed):
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "autopilot could not deduce", errors.SlogError(err))
		app.respond(w, r, p.game, "The detective could not reach a conclusion. Keep asking questions.")
	case err != nil:
		app.serverError(w, r, errors.Wrap(err, "run autopilot"))
	default:
		app.respond(w, r, p.game, fmt.Sprintf("The detective asked %d questions and accused %s.",
			report.Asked, report.Verdict.AccusedName))
	}
}

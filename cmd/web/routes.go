package main

import (
	"io/fs"
	"net/http"

	htmxmiddleware "github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
	"github.com/myrjola/whodunit/ui"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(ui.Files, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", cacheForeverHeaders(http.StripPrefix("/static", http.FileServerFS(static))))

	session := alice.New(app.sessionManager.LoadAndSave, app.noSurf, commonContext, htmxmiddleware.MiddleWare)

	mux.Handle("GET /{$}", session.ThenFunc(app.home))
	mux.Handle("GET /sessions", session.ThenFunc(app.sessions))
	mux.Handle("POST /suspects/{id}", session.ThenFunc(app.switchSuspect))
	mux.Handle("POST /questions", session.ThenFunc(app.askQuestion))
	mux.Handle("POST /accusation", session.ThenFunc(app.accuse))
	mux.Handle("POST /reset", session.ThenFunc(app.reset))
	mux.Handle("POST /autopilot", session.ThenFunc(app.runAutopilot))
	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.Handle("/", session.ThenFunc(app.notFound))

	standard := alice.New(app.recoverPanic, app.logRequest, app.secureHeaders)
	return standard.Then(timeoutHandler(mux, app.cfg.Server.RequestTimeout))
}

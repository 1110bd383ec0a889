package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/myrjola/whodunit/internal/contexthelpers"
	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/ui"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status), slog.Int("status", status))
	http.Error(w, http.StatusText(status), status)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound)
}

// pages holds the parsed page templates keyed by page name.
type pages struct {
	templates map[string]*template.Template
}

// newPages parses every directory in ui/templates/pages into a page. A page has to define "title" and "page".
func newPages() (*pages, error) {
	dirs, err := fs.ReadDir(ui.Files, "templates/pages")
	if err != nil {
		return nil, errors.Wrap(err, "read pages directory")
	}
	p := &pages{templates: make(map[string]*template.Template)}
	for _, dir := range dirs {
		name := dir.Name()
		// The functions are placeholders that render overrides per request.
		t, parseErr := template.New(name).Funcs(template.FuncMap{
			"nonce": func() template.HTMLAttr { panic("not implemented") },
			"csrf":  func() template.HTML { panic("not implemented") },
		}).ParseFS(ui.Files, "templates/base.gohtml", path.Join("templates/pages", name, "*.gohtml"))
		if parseErr != nil {
			return nil, errors.Wrap(parseErr, "parse page", slog.String("page", name))
		}
		p.templates[name] = t
	}
	return p, nil
}

// render executes template name of page with data. Use "base" for full pages and a fragment name for htmx swaps.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page, name string, data any) {
	base, ok := app.pages.templates[page]
	if !ok {
		app.serverError(w, r, errors.New("page not found", slog.String("page", page)))
		return
	}
	t, err := base.Clone()
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "clone template", slog.String("page", page)))
		return
	}

	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>", contexthelpers.CSRFToken(ctx))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // the nonce is not user input.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // the token is not user input.
		},
	})

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template",
			slog.String("page", page), slog.String("template", name)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

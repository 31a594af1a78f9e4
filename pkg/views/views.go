// Package views renders the catalog pages. Every page template defines a
// "body" block that is executed inside the shared layout.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/htmlutil"
	"github.com/shishobooks/catalog/pkg/models"
)

const layoutFile = "layout.html"

//go:embed templates/*.html
var files embed.FS

// Renderer implements echo.Renderer over the embedded templates. Templates are
// looked up by file name without the extension, e.g. "author_list".
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every embedded page against the layout.
func New() (*Renderer, error) {
	layout, err := template.New(layoutFile).Funcs(funcs()).ParseFS(files, "templates/"+layoutFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	pages, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, errors.WithStack(err)
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		base := path.Base(page)
		if base == layoutFile {
			continue
		}
		t, err := layout.Clone()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if _, err := t.ParseFS(files, page); err != nil {
			return nil, errors.Wrapf(err, "parse %s", base)
		}
		templates[strings.TrimSuffix(base, ".html")] = t
	}

	return &Renderer{templates}, nil
}

// Has reports whether a template with the given name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render executes the named page into a buffer first, so a failed render
// never leaves a half-written response behind.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return errors.Wrapf(err, "render %s", name)
	}

	_, err := buf.WriteTo(w)
	return errors.WithStack(err)
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"authorName":       models.AuthorName,
		"authorLifespan":   models.AuthorLifespan,
		"authorURL":        models.AuthorURL,
		"genreURL":         models.GenreURL,
		"bookURL":          models.BookURL,
		"bookInstanceURL":  models.BookInstanceURL,
		"formatISODate":    models.FormatISODate,
		"dueBackFormatted": models.DueBackFormatted,
		"dueBackISO":       models.DueBackISO,
		"escaped":          escaped,
	}
}

// escaped outputs a value that was escaped when it was stored. The escape is
// idempotent, so stored text comes out exactly once escaped.
func escaped(s string) template.HTML {
	return template.HTML(htmlutil.Escape(s)) //nolint:gosec
}

// Package testutils holds helpers shared by the handler and service tests.
package testutils

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/binder"
	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/shishobooks/catalog/pkg/views"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// NewDB returns a migrated in-memory database. A single connection keeps
// every query, including concurrent ones, on the same in-memory database.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// Renderer records the last template a handler rendered and still renders it
// through the real templates, so payloads that don't fit a template fail the
// test.
type Renderer struct {
	views *views.Renderer

	mu     sync.Mutex
	name   string
	data   interface{}
	called int
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.mu.Lock()
	r.name = name
	r.data = data
	r.called++
	r.mu.Unlock()
	return r.views.Render(w, name, data, c)
}

// Last returns the name and payload of the last render.
func (r *Renderer) Last() (string, interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name, r.data
}

// Calls returns how many times Render was called.
func (r *Renderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.called
}

// NewEcho returns an echo instance wired with the real binder and a recording
// renderer.
func NewEcho(t *testing.T) (*echo.Echo, *Renderer) {
	t.Helper()

	b, err := binder.New()
	require.NoError(t, err)
	v, err := views.New()
	require.NoError(t, err)

	r := &Renderer{views: v}
	e := echo.New()
	e.Binder = b
	e.Renderer = r
	return e, r
}

// NewContext builds a context for a request with the given path params set.
func NewContext(e *echo.Echo, req *http.Request, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

// FormRequest builds a urlencoded POST request.
func FormRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

package errcodes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRenderer struct {
	name string
	data interface{}
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	r.name = name
	r.data = data
	_, err := w.Write([]byte("rendered"))
	return err
}

func newContext(accept string, renderer echo.Renderer) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	if renderer != nil {
		e.Renderer = renderer
	}
	req := httptest.NewRequest(http.MethodGet, "/catalog/author/1", nil)
	if accept != "" {
		req.Header.Set(echo.HeaderAccept, accept)
	}
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandle_JSON(t *testing.T) {
	t.Parallel()

	c, rr := newContext(echo.MIMEApplicationJSON, nil)
	NewHandler().Handle(NotFound("Author"), c)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["error"]["code"])
	assert.Equal(t, "Author not found.", body["error"]["message"])
	assert.NotContains(t, body["error"], "error_id")
}

func TestHandle_HTMLRendersErrorTemplate(t *testing.T) {
	t.Parallel()

	r := &recordingRenderer{}
	c, rr := newContext("text/html,application/xhtml+xml", r)
	NewHandler().Handle(errors.WithStack(NotFound("Genre")), c)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorTemplate, r.name)
	page, ok := r.data.(*ErrorPage)
	require.True(t, ok)
	assert.Equal(t, "Genre not found.", page.Message)
	assert.Equal(t, "Not Found", page.Title)
	assert.Empty(t, page.ErrorID)
}

func TestHandle_InternalErrorGetsErrorID(t *testing.T) {
	t.Parallel()

	r := &recordingRenderer{}
	c, rr := newContext("", r)
	NewHandler().Handle(errors.New("disk I/O error"), c)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	page, ok := r.data.(*ErrorPage)
	require.True(t, ok)
	assert.Equal(t, "internal_server_error", page.Code)
	assert.Equal(t, "Internal Server Error", page.Message)
	assert.NotEmpty(t, page.ErrorID)
}

func TestHandle_InternalErrorJSONCarriesErrorID(t *testing.T) {
	t.Parallel()

	c, rr := newContext(echo.MIMEApplicationJSON, nil)
	NewHandler().Handle(errors.WithStack(errors.New("database is locked")), c)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "internal_server_error", body["error"]["code"])
	assert.NotEmpty(t, body["error"]["error_id"])
}

func TestHandle_EchoHTTPError(t *testing.T) {
	t.Parallel()

	c, rr := newContext(echo.MIMEApplicationJSON, nil)
	NewHandler().Handle(echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), c)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "method_not_allowed", body["error"]["code"])
}

func TestAsValidation(t *testing.T) {
	t.Parallel()

	fields := []FieldError{
		{Field: "first_name", Message: `"first_name" is required`},
		{Field: "family_name", Message: `"family_name" is required`},
	}
	err := errors.WithStack(ValidationErrors(fields))

	got, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, fields, got)
	assert.Equal(t, `"first_name" is required`, err.Error())

	typeFields := []FieldError{{Field: "genre", Message: `"genre" should be of type int`}}
	got, ok = AsValidation(errors.WithStack(ValidationTypeErrors(typeFields)))
	require.True(t, ok)
	assert.Equal(t, typeFields, got)

	_, ok = AsValidation(NotFound("Author"))
	assert.False(t, ok)
	_, ok = AsValidation(errors.New("boom"))
	assert.False(t, ok)
}

func TestNotFound_Is(t *testing.T) {
	t.Parallel()

	err := errors.WithStack(NotFound("Book"))
	assert.True(t, errors.Is(err, NotFound("Book")))
	assert.False(t, errors.Is(err, NotFound("Author")))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(errors.WithStack(NotFound("Genre"))))
	assert.False(t, IsNotFound(EmptyRequestBody()))
	assert.False(t, IsNotFound(errors.New("boom")))
}

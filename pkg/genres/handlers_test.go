package genres

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func setupTestHandler(t *testing.T) (*handler, *bun.DB, *echo.Echo, *testutils.Renderer) {
	t.Helper()
	db := testutils.NewDB(t)
	e, r := testutils.NewEcho(t)
	return &handler{genreService: NewService(db)}, db, e, r
}

func countGenres(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*models.Genre)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestHandler_Create(t *testing.T) {
	t.Parallel()
	h, db, e, _ := setupTestHandler(t)

	req := testutils.FormRequest("/catalog/genre/create", url.Values{"name": {"  Science Fiction "}})
	c, rec := testutils.NewContext(e, req, nil)
	require.NoError(t, h.create(c))

	genres, err := h.genreService.ListGenres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Science Fiction", genres[0].Name)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, models.GenreURL(genres[0]), rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, 1, countGenres(t, db))
}

func TestHandler_Create_ExistingGenreRedirectsWithoutInsert(t *testing.T) {
	t.Parallel()
	h, db, e, _ := setupTestHandler(t)

	existing := &models.Genre{Name: "Fiction"}
	require.NoError(t, h.genreService.CreateGenre(context.Background(), existing))

	req := testutils.FormRequest("/catalog/genre/create", url.Values{"name": {"Fiction"}})
	c, rec := testutils.NewContext(e, req, nil)
	require.NoError(t, h.create(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/genre/"+strconv.Itoa(existing.ID), rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, 1, countGenres(t, db))
}

func TestHandler_Create_EscapesName(t *testing.T) {
	t.Parallel()
	h, _, e, _ := setupTestHandler(t)

	req := testutils.FormRequest("/catalog/genre/create", url.Values{"name": {"Science & Nature"}})
	c, _ := testutils.NewContext(e, req, nil)
	require.NoError(t, h.create(c))

	// the same name a second time must match the stored, escaped value
	req = testutils.FormRequest("/catalog/genre/create", url.Values{"name": {"science & nature"}})
	c, _ = testutils.NewContext(e, req, nil)
	require.NoError(t, h.create(c))

	genres, err := h.genreService.ListGenres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Science &amp; Nature", genres[0].Name)
}

func TestHandler_Create_Empty(t *testing.T) {
	t.Parallel()
	h, db, e, r := setupTestHandler(t)

	req := testutils.FormRequest("/catalog/genre/create", url.Values{"name": {"   "}})
	c, rec := testutils.NewContext(e, req, nil)
	require.NoError(t, h.create(c))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	name, data := r.Last()
	assert.Equal(t, "genre_form", name)
	page := data.(formPage)
	require.Len(t, page.Errors, 1)
	assert.Equal(t, `"name" is required`, page.Errors[0].Message)
	assert.Equal(t, 0, countGenres(t, db))
}

func TestHandler_Retrieve(t *testing.T) {
	t.Parallel()
	h, db, e, r := setupTestHandler(t)

	genre := &models.Genre{Name: "Romance"}
	require.NoError(t, h.genreService.CreateGenre(context.Background(), genre))
	createBookInGenre(t, db, genre.ID, "Emma")

	c, rec := testutils.NewContext(e, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": strconv.Itoa(genre.ID)})
	require.NoError(t, h.retrieve(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	_, data := r.Last()
	page := data.(detailPage)
	assert.Equal(t, "Romance", page.Genre.Name)
	require.Len(t, page.Books, 1)
	assert.Equal(t, "Emma", page.Books[0].Title)

	c, _ = testutils.NewContext(e, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "9999"})
	assert.True(t, errcodes.IsNotFound(h.retrieve(c)))
}

func TestHandler_Update(t *testing.T) {
	t.Parallel()
	h, _, e, _ := setupTestHandler(t)
	ctx := context.Background()

	genre := &models.Genre{Name: "Fantsy"}
	require.NoError(t, h.genreService.CreateGenre(ctx, genre))
	id := strconv.Itoa(genre.ID)

	req := testutils.FormRequest("/catalog/genre/"+id+"/update", url.Values{"name": {"Fantasy"}})
	c, rec := testutils.NewContext(e, req, map[string]string{"id": id})
	require.NoError(t, h.update(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/genre/"+id, rec.Header().Get(echo.HeaderLocation))
	got, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &genre.ID})
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", got.Name)
}

func TestHandler_Update_ExistingNameRedirectsWithoutWrite(t *testing.T) {
	t.Parallel()
	h, _, e, _ := setupTestHandler(t)
	ctx := context.Background()

	fiction := &models.Genre{Name: "Fiction"}
	poetry := &models.Genre{Name: "Poetry"}
	require.NoError(t, h.genreService.CreateGenre(ctx, fiction))
	require.NoError(t, h.genreService.CreateGenre(ctx, poetry))
	id := strconv.Itoa(poetry.ID)

	req := testutils.FormRequest("/catalog/genre/"+id+"/update", url.Values{"name": {"FICTION"}})
	c, rec := testutils.NewContext(e, req, map[string]string{"id": id})
	require.NoError(t, h.update(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, models.GenreURL(fiction), rec.Header().Get(echo.HeaderLocation))
	got, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &poetry.ID})
	require.NoError(t, err)
	assert.Equal(t, "Poetry", got.Name)
}

func TestHandler_Update_CaseOnlyRename(t *testing.T) {
	t.Parallel()
	h, _, e, _ := setupTestHandler(t)
	ctx := context.Background()

	genre := &models.Genre{Name: "fiction"}
	require.NoError(t, h.genreService.CreateGenre(ctx, genre))
	id := strconv.Itoa(genre.ID)

	req := testutils.FormRequest("/catalog/genre/"+id+"/update", url.Values{"name": {"Fiction"}})
	c, rec := testutils.NewContext(e, req, map[string]string{"id": id})
	require.NoError(t, h.update(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/catalog/genre/"+id, rec.Header().Get(echo.HeaderLocation))
	got, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &genre.ID})
	require.NoError(t, err)
	assert.Equal(t, "Fiction", got.Name)
}

func TestHandler_UpdateForm_Missing(t *testing.T) {
	t.Parallel()
	h, _, e, _ := setupTestHandler(t)

	c, _ := testutils.NewContext(e, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "9999"})
	assert.True(t, errcodes.IsNotFound(h.updateForm(c)))
}

func TestHandler_Delete_BlockedByBooks(t *testing.T) {
	t.Parallel()
	h, db, e, r := setupTestHandler(t)

	genre := &models.Genre{Name: "Romance"}
	require.NoError(t, h.genreService.CreateGenre(context.Background(), genre))
	createBookInGenre(t, db, genre.ID, "Emma")
	id := strconv.Itoa(genre.ID)

	req := testutils.FormRequest("/catalog/genre/"+id+"/delete", url.Values{"genreid": {id}})
	c, rec := testutils.NewContext(e, req, map[string]string{"id": id})
	require.NoError(t, h.deleteGenre(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	name, data := r.Last()
	assert.Equal(t, "genre_delete", name)
	assert.Len(t, data.(deletePage).Books, 1)
	assert.Equal(t, 1, countGenres(t, db))
}

func TestHandler_Delete(t *testing.T) {
	t.Parallel()
	h, db, e, _ := setupTestHandler(t)

	genre := &models.Genre{Name: "Horror"}
	require.NoError(t, h.genreService.CreateGenre(context.Background(), genre))
	id := strconv.Itoa(genre.ID)

	c, rec := testutils.NewContext(e, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": id})
	require.NoError(t, h.deleteForm(c))
	assert.Contains(t, rec.Body.String(), `name="genreid" value="`+id+`"`)

	req := testutils.FormRequest("/catalog/genre/"+id+"/delete", url.Values{"genreid": {id}})
	c, rec = testutils.NewContext(e, req, map[string]string{"id": id})
	require.NoError(t, h.deleteGenre(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, listURL, rec.Header().Get(echo.HeaderLocation))
	assert.Equal(t, 0, countGenres(t, db))
}

func TestHandler_DeleteForm_MissingRedirects(t *testing.T) {
	t.Parallel()
	h, _, e, _ := setupTestHandler(t)

	c, rec := testutils.NewContext(e, httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "9999"})
	require.NoError(t, h.deleteForm(c))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, listURL, rec.Header().Get(echo.HeaderLocation))
}

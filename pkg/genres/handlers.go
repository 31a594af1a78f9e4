package genres

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/dependents"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
)

const listURL = "/catalog/genres"

type listPage struct {
	Title  string
	Genres []*models.Genre
}

type detailPage struct {
	Title string
	Genre *models.Genre
	Books []*models.Book
}

type formPage struct {
	Title  string
	Form   GenrePayload
	Errors []errcodes.FieldError
}

type deletePage struct {
	Title string
	Genre *models.Genre
	Books []*models.Book
}

type handler struct {
	genreService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	genres, err := h.genreService.ListGenres(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "genre_list", listPage{
		Title:  "Genre List",
		Genres: genres,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	res, err := h.guard(id).Check(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "genre_detail", detailPage{
		Title: "Genre Detail",
		Genre: res.Parent,
		Books: res.Children,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, "Create Genre", GenrePayload{}, nil)
}

// create only inserts when no genre with the same name exists yet. Otherwise
// it sends the user to the existing genre.
func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := GenrePayload{}
	if err := c.Bind(&params); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Create Genre", params, fields)
	}

	genre, created, err := h.genreService.FindOrCreateGenre(ctx, params.Name)
	if err != nil {
		return errors.WithStack(err)
	}
	if !created {
		log.Info("genre already exists", logger.Data{"genre_id": genre.ID})
	}

	return errors.WithStack(c.Redirect(http.StatusFound, models.GenreURL(genre)))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	genre, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, http.StatusOK, "Update Genre", GenrePayload{Name: genre.Name}, nil)
}

// update renames the genre unless another genre already has the name, in
// which case nothing is written and the user lands on that genre. A genre
// matching only itself can still change the case of its name.
func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Genre")
	}

	params := GenrePayload{}
	if err := c.Bind(&params); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Update Genre", params, fields)
	}

	existing, err := h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{Name: &params.Name})
	if err == nil && existing.ID != id {
		return errors.WithStack(c.Redirect(http.StatusFound, models.GenreURL(existing)))
	}
	if err != nil && !errcodes.IsNotFound(err) {
		return errors.WithStack(err)
	}

	genre := &models.Genre{ID: id, Name: params.Name}
	err = h.genreService.UpdateGenre(ctx, genre, UpdateGenreOptions{Columns: []string{"name"}})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Redirect(http.StatusFound, models.GenreURL(genre)))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, listURL))
	}

	res, err := h.guard(id).Check(ctx)
	if errcodes.IsNotFound(err) {
		return errors.WithStack(c.Redirect(http.StatusFound, listURL))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "genre_delete", deletePage{
		Title: "Delete Genre",
		Genre: res.Parent,
		Books: res.Children,
	}))
}

func (h *handler) deleteGenre(c echo.Context) error {
	ctx := c.Request().Context()

	c.Set("disallow_empty_body", false)
	params := DeleteGenrePayload{}
	if err := c.Bind(&params); err != nil {
		if _, ok := errcodes.AsValidation(err); !ok {
			return errors.WithStack(err)
		}
		params = DeleteGenrePayload{}
	}

	id := params.GenreID
	if id == 0 {
		var err error
		id, err = strconv.Atoi(c.Param("id"))
		if err != nil {
			return errors.WithStack(c.Redirect(http.StatusFound, listURL))
		}
	}

	outcome, err := h.guard(id).Delete(ctx)
	if errcodes.IsNotFound(err) {
		return errors.WithStack(c.Redirect(http.StatusFound, listURL))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if outcome.State == dependents.StateBlocked {
		return errors.WithStack(c.Render(http.StatusOK, "genre_delete", deletePage{
			Title: "Delete Genre",
			Genre: outcome.Parent,
			Books: outcome.Children,
		}))
	}

	return errors.WithStack(c.Redirect(http.StatusFound, listURL))
}

func (h *handler) guard(id int) dependents.Guard[models.Genre, models.Book] {
	return dependents.Guard[models.Genre, models.Book]{
		Parent: func(ctx context.Context) (*models.Genre, error) {
			return h.genreService.RetrieveGenre(ctx, RetrieveGenreOptions{ID: &id})
		},
		Children: func(ctx context.Context) ([]*models.Book, error) {
			return h.genreService.GetBooks(ctx, id)
		},
		Remove: func(ctx context.Context) error {
			return h.genreService.DeleteGenre(ctx, id)
		},
	}
}

func (h *handler) renderForm(c echo.Context, status int, title string, form GenrePayload, fields []errcodes.FieldError) error {
	return errors.WithStack(c.Render(status, "genre_form", formPage{
		Title:  title,
		Form:   form,
		Errors: fields,
	}))
}

package authors

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

const listURL = "/catalog/authors"

type listPage struct {
	Title   string
	Authors []*models.Author
}

type detailPage struct {
	Title  string
	Author *models.Author
	Books  []*models.Book
}

type formPage struct {
	Title  string
	Form   AuthorPayload
	Errors []errcodes.FieldError
}

type deletePage struct {
	Title  string
	Author *models.Author
	Books  []*models.Book
}

type handler struct {
	authorService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.authorService.ListAuthors(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "author_list", listPage{
		Title:   "Author List",
		Authors: authors,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	res, err := h.guard(id).Check(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "author_detail", detailPage{
		Title:  "Author Detail",
		Author: res.Parent,
		Books:  res.Children,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, "Create Author", AuthorPayload{}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := AuthorPayload{}
	if err := c.Bind(&params); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Create Author", params, fields)
	}

	author := &models.Author{}
	if err := params.apply(author); err != nil {
		return err
	}
	if err := h.authorService.CreateAuthor(ctx, author); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Redirect(http.StatusFound, models.AuthorURL(author)))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	author, err := h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return h.renderForm(c, http.StatusOK, "Update Author", payloadFromAuthor(author), nil)
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Author")
	}

	params := AuthorPayload{}
	if err := c.Bind(&params); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Update Author", params, fields)
	}

	author := &models.Author{ID: id}
	if err := params.apply(author); err != nil {
		return err
	}
	err = h.authorService.UpdateAuthor(ctx, author, UpdateAuthorOptions{
		Columns: []string{"first_name", "family_name", "date_of_birth", "date_of_death"},
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Redirect(http.StatusFound, models.AuthorURL(author)))
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

	return errors.WithStack(c.Render(http.StatusOK, "author_delete", deletePage{
		Title:  "Delete Author",
		Author: res.Parent,
		Books:  res.Children,
	}))
}

func (h *handler) deleteAuthor(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	c.Set("disallow_empty_body", false)
	params := DeleteAuthorPayload{}
	if err := c.Bind(&params); err != nil {
		if _, ok := errcodes.AsValidation(err); !ok {
			return errors.WithStack(err)
		}
		// an unreadable id falls back to the one in the path
		params = DeleteAuthorPayload{}
	}

	id := params.AuthorID
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
		log.Info("author still has books", logger.Data{"author_id": id, "books": len(outcome.Children)})
		return errors.WithStack(c.Render(http.StatusOK, "author_delete", deletePage{
			Title:  "Delete Author",
			Author: outcome.Parent,
			Books:  outcome.Children,
		}))
	}

	return errors.WithStack(c.Redirect(http.StatusFound, listURL))
}

// guard loads an author with their books, and deletes the author only when
// they have none.
func (h *handler) guard(id int) dependents.Guard[models.Author, models.Book] {
	return dependents.Guard[models.Author, models.Book]{
		Parent: func(ctx context.Context) (*models.Author, error) {
			return h.authorService.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
		},
		Children: func(ctx context.Context) ([]*models.Book, error) {
			return h.authorService.GetBooks(ctx, id)
		},
		Remove: func(ctx context.Context) error {
			return h.authorService.DeleteAuthor(ctx, id)
		},
	}
}

func (h *handler) renderForm(c echo.Context, status int, title string, form AuthorPayload, fields []errcodes.FieldError) error {
	return errors.WithStack(c.Render(status, "author_form", formPage{
		Title:  title,
		Form:   form,
		Errors: fields,
	}))
}

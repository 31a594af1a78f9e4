package bookinstances

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
	"golang.org/x/sync/errgroup"
)

const listURL = "/catalog/bookinstances"

type listPage struct {
	Title     string
	Instances []*models.BookInstance
}

type detailPage struct {
	Title    string
	Instance *models.BookInstance
}

type formPage struct {
	Title    string
	Form     BookInstancePayload
	Books    []*models.Book
	Statuses []string
	Errors   []errcodes.FieldError
}

type deletePage struct {
	Title    string
	Instance *models.BookInstance
}

type handler struct {
	bookInstanceService *Service
	bookService         *books.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBookInstancesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListBookInstancesOptions{}
	if params.Status != "" {
		opts.Status = &params.Status
	}

	instances, err := h.bookInstanceService.ListBookInstances(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_list", listPage{
		Title:     "Book Instance List",
		Instances: instances,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("BookInstance")
	}

	bi, err := h.bookInstanceService.RetrieveBookInstance(ctx, RetrieveBookInstanceOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_detail", detailPage{
		Title:    "Book Instance Detail",
		Instance: bi,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, "Create BookInstance", BookInstancePayload{
		Status: models.BookInstanceStatusMaintenance,
	}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookInstancePayload{}
	if err := c.Bind(&params); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Create BookInstance", params, fields)
	}

	bi := &models.BookInstance{}
	if err := params.apply(bi, time.Now()); err != nil {
		return err
	}
	if err := h.bookInstanceService.CreateBookInstance(ctx, bi); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Create BookInstance", params, fields)
	}

	return errors.WithStack(c.Redirect(http.StatusFound, models.BookInstanceURL(bi)))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("BookInstance")
	}

	var bi *models.BookInstance
	var bookList []*models.Book

	gg, gctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		b, err := h.bookInstanceService.RetrieveBookInstance(gctx, RetrieveBookInstanceOptions{ID: &id})
		if err != nil {
			return err
		}
		bi = b
		return nil
	})
	gg.Go(func() error {
		b, err := h.bookService.ListBooks(gctx)
		if err != nil {
			return err
		}
		bookList = b
		return nil
	})
	if err := gg.Wait(); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_form", formPage{
		Title:    "Update BookInstance",
		Form:     payloadFromBookInstance(bi),
		Books:    bookList,
		Statuses: models.BookInstanceStatuses,
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("BookInstance")
	}

	params := BookInstancePayload{}
	if err := c.Bind(&params); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Update BookInstance", params, fields)
	}

	bi := &models.BookInstance{ID: id}
	if err := params.apply(bi, time.Now()); err != nil {
		return err
	}
	err = h.bookInstanceService.UpdateBookInstance(ctx, bi, UpdateBookInstanceOptions{
		Columns: []string{"book_id", "imprint", "status", "due_back"},
	})
	if err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Update BookInstance", params, fields)
	}

	return errors.WithStack(c.Redirect(http.StatusFound, models.BookInstanceURL(bi)))
}

func (h *handler) deleteForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errors.WithStack(c.Redirect(http.StatusFound, listURL))
	}

	bi, err := h.bookInstanceService.RetrieveBookInstance(ctx, RetrieveBookInstanceOptions{ID: &id})
	if errcodes.IsNotFound(err) {
		return errors.WithStack(c.Redirect(http.StatusFound, listURL))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "bookinstance_delete", deletePage{
		Title:    "Delete BookInstance",
		Instance: bi,
	}))
}

// deleteBookInstance removes the copy directly, since nothing depends on it.
func (h *handler) deleteBookInstance(c echo.Context) error {
	ctx := c.Request().Context()

	c.Set("disallow_empty_body", false)
	params := DeleteBookInstancePayload{}
	if err := c.Bind(&params); err != nil {
		if _, ok := errcodes.AsValidation(err); !ok {
			return errors.WithStack(err)
		}
		params = DeleteBookInstancePayload{}
	}

	id := params.BookInstanceID
	if id == 0 {
		var err error
		id, err = strconv.Atoi(c.Param("id"))
		if err != nil {
			return errors.WithStack(c.Redirect(http.StatusFound, listURL))
		}
	}

	_, err := h.bookInstanceService.RetrieveBookInstance(ctx, RetrieveBookInstanceOptions{ID: &id})
	if errcodes.IsNotFound(err) {
		return errors.WithStack(c.Redirect(http.StatusFound, listURL))
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.bookInstanceService.DeleteBookInstance(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Redirect(http.StatusFound, listURL))
}

func (h *handler) renderForm(c echo.Context, status int, title string, form BookInstancePayload, fields []errcodes.FieldError) error {
	bookList, err := h.bookService.ListBooks(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(status, "bookinstance_form", formPage{
		Title:    title,
		Form:     form,
		Books:    bookList,
		Statuses: models.BookInstanceStatuses,
		Errors:   fields,
	}))
}

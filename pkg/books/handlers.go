package books

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/authors"
	"github.com/shishobooks/catalog/pkg/dependents"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/genres"
	"github.com/shishobooks/catalog/pkg/models"
	"golang.org/x/sync/errgroup"
)

const listURL = "/catalog/books"

type listPage struct {
	Title string
	Books []*models.Book
}

type detailPage struct {
	Title     string
	Book      *models.Book
	Instances []*models.BookInstance
}

type formPage struct {
	Title   string
	Form    BookPayload
	Authors []*models.Author
	Genres  []*models.Genre
	Errors  []errcodes.FieldError
}

type deletePage struct {
	Title     string
	Book      *models.Book
	Instances []*models.BookInstance
}

// formOptions are the choices offered by the book form.
type formOptions struct {
	authors []*models.Author
	genres  []*models.Genre
}

type handler struct {
	bookService   *Service
	authorService *authors.Service
	genreService  *genres.Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.ListBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_list", listPage{
		Title: "Book List",
		Books: books,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	res, err := h.guard(id).Check(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_detail", detailPage{
		Title:     res.Parent.Title,
		Book:      res.Parent,
		Instances: res.Children,
	}))
}

func (h *handler) createForm(c echo.Context) error {
	return h.renderForm(c, http.StatusOK, "Create Book", BookPayload{}, nil)
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := BookPayload{}
	if err := c.Bind(&params); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Create Book", params, fields)
	}

	book := &models.Book{}
	params.apply(book)
	if err := h.bookService.CreateBook(ctx, book, params.Genre); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Create Book", params, fields)
	}

	return errors.WithStack(c.Redirect(http.StatusFound, models.BookURL(book)))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	var book *models.Book
	var opts *formOptions

	gg, gctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		b, err := h.bookService.RetrieveBook(gctx, RetrieveBookOptions{ID: &id})
		if err != nil {
			return err
		}
		book = b
		return nil
	})
	gg.Go(func() error {
		o, err := h.loadFormOptions(gctx)
		if err != nil {
			return err
		}
		opts = o
		return nil
	})
	if err := gg.Wait(); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "book_form", formPage{
		Title:   "Update Book",
		Form:    payloadFromBook(book),
		Authors: opts.authors,
		Genres:  opts.genres,
	}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := BookPayload{}
	if err := c.Bind(&params); err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Update Book", params, fields)
	}

	book := &models.Book{ID: id}
	params.apply(book)
	genreIDs := params.Genre
	err = h.bookService.UpdateBook(ctx, book, UpdateBookOptions{
		Columns:  []string{"title", "author_id", "summary", "isbn"},
		GenreIDs: &genreIDs,
	})
	if err != nil {
		fields, ok := errcodes.AsValidation(err)
		if !ok {
			return errors.WithStack(err)
		}
		return h.renderForm(c, http.StatusUnprocessableEntity, "Update Book", params, fields)
	}

	return errors.WithStack(c.Redirect(http.StatusFound, models.BookURL(book)))
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

	return errors.WithStack(c.Render(http.StatusOK, "book_delete", deletePage{
		Title:     "Delete Book",
		Book:      res.Parent,
		Instances: res.Children,
	}))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	c.Set("disallow_empty_body", false)
	params := DeleteBookPayload{}
	if err := c.Bind(&params); err != nil {
		if _, ok := errcodes.AsValidation(err); !ok {
			return errors.WithStack(err)
		}
		params = DeleteBookPayload{}
	}

	id := params.BookID
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
		log.Info("book still has copies", logger.Data{"book_id": id, "copies": len(outcome.Children)})
		return errors.WithStack(c.Render(http.StatusOK, "book_delete", deletePage{
			Title:     "Delete Book",
			Book:      outcome.Parent,
			Instances: outcome.Children,
		}))
	}

	return errors.WithStack(c.Redirect(http.StatusFound, listURL))
}

func (h *handler) guard(id int) dependents.Guard[models.Book, models.BookInstance] {
	return dependents.Guard[models.Book, models.BookInstance]{
		Parent: func(ctx context.Context) (*models.Book, error) {
			return h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
		},
		Children: func(ctx context.Context) ([]*models.BookInstance, error) {
			return h.bookService.GetInstances(ctx, id)
		},
		Remove: func(ctx context.Context) error {
			return h.bookService.DeleteBook(ctx, id)
		},
	}
}

// loadFormOptions fetches the authors and genres the form offers in
// parallel.
func (h *handler) loadFormOptions(ctx context.Context) (*formOptions, error) {
	opts := &formOptions{}

	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() error {
		a, err := h.authorService.ListAuthors(ctx)
		if err != nil {
			return err
		}
		opts.authors = a
		return nil
	})
	gg.Go(func() error {
		g, err := h.genreService.ListGenres(ctx)
		if err != nil {
			return err
		}
		opts.genres = g
		return nil
	})

	if err := gg.Wait(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (h *handler) renderForm(c echo.Context, status int, title string, form BookPayload, fields []errcodes.FieldError) error {
	opts, err := h.loadFormOptions(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(status, "book_form", formPage{
		Title:   title,
		Form:    form,
		Authors: opts.authors,
		Genres:  opts.genres,
		Errors:  fields,
	}))
}

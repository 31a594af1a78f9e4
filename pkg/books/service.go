package books

import (
	"context"
	"database/sql"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID *int
}

type UpdateBookOptions struct {
	Columns []string
	// GenreIDs replaces the book's genres when set.
	GenreIDs *[]int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook inserts the book together with its genre associations. An author
// or genre that doesn't exist fails with a validation error on that field.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book, genreIDs []int) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := checkReferences(ctx, tx, &book.AuthorID, genreIDs); err != nil {
			return err
		}

		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(insertBookGenres(ctx, tx, book.ID, genreIDs))
	})
}

// RetrieveBook loads a book with its author and genres.
func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Relation("BookGenres.Genre")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ListBooks returns every book sorted by title, with authors loaded.
func (svc *Service) ListBooks(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book

	err := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Order("b.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 && opts.GenreIDs == nil {
		return nil
	}

	now := time.Now()
	book.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.
			NewUpdate().
			Model(book).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Book")
		}

		var authorID *int
		if slices.Contains(opts.Columns, "author_id") {
			authorID = &book.AuthorID
		}
		var genreIDs []int
		if opts.GenreIDs != nil {
			genreIDs = *opts.GenreIDs
		}
		if err := checkReferences(ctx, tx, authorID, genreIDs); err != nil {
			return err
		}

		if opts.GenreIDs == nil {
			return nil
		}

		_, err = tx.NewDelete().
			Model((*models.BookGenre)(nil)).
			Where("book_id = ?", book.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(insertBookGenres(ctx, tx, book.ID, *opts.GenreIDs))
	})
}

// DeleteBook deletes a book and its genre associations.
func (svc *Service) DeleteBook(ctx context.Context, bookID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.BookGenre)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// GetInstances returns the copies of this book.
func (svc *Service) GetInstances(ctx context.Context, bookID int) ([]*models.BookInstance, error) {
	var instances []*models.BookInstance

	err := svc.db.NewSelect().
		Model(&instances).
		Where("bi.book_id = ?", bookID).
		Order("bi.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return instances, nil
}

// checkReferences verifies that the author, when given, and every genre id
// exist. Missing rows are reported as field errors on "author" and "genre".
func checkReferences(ctx context.Context, tx bun.Tx, authorID *int, genreIDs []int) error {
	fields := []errcodes.FieldError{}

	if authorID != nil {
		exists, err := tx.NewSelect().
			Model((*models.Author)(nil)).
			Where("a.id = ?", *authorID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			fields = append(fields, errcodes.FieldError{Field: "author", Message: `"author" doesn't exist`})
		}
	}

	ids := uniqueIDs(genreIDs)
	if len(ids) > 0 {
		n, err := tx.NewSelect().
			Model((*models.Genre)(nil)).
			Where("g.id IN (?)", bun.In(ids)).
			Count(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n != len(ids) {
			fields = append(fields, errcodes.FieldError{Field: "genre", Message: `"genre" includes a genre that doesn't exist`})
		}
	}

	if len(fields) > 0 {
		return errcodes.ValidationErrors(fields)
	}
	return nil
}

// uniqueIDs drops duplicates and non-positive ids, keeping the first
// occurrence order.
func uniqueIDs(ids []int) []int {
	seen := map[int]struct{}{}
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func insertBookGenres(ctx context.Context, tx bun.Tx, bookID int, genreIDs []int) error {
	ids := uniqueIDs(genreIDs)
	if len(ids) == 0 {
		return nil
	}

	bookGenres := make([]*models.BookGenre, 0, len(ids))
	for _, id := range ids {
		bookGenres = append(bookGenres, &models.BookGenre{BookID: bookID, GenreID: id})
	}

	_, err := tx.NewInsert().
		Model(&bookGenres).
		Exec(ctx)
	return errors.WithStack(err)
}

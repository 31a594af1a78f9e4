package bookinstances

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

type RetrieveBookInstanceOptions struct {
	ID *int
}

type ListBookInstancesOptions struct {
	Status *string
}

type UpdateBookInstanceOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBookInstance inserts a copy. A book that doesn't exist fails with a
// validation error on "book".
func (svc *Service) CreateBookInstance(ctx context.Context, bi *models.BookInstance) error {
	now := time.Now()
	if bi.CreatedAt.IsZero() {
		bi.CreatedAt = now
	}
	bi.UpdatedAt = bi.CreatedAt
	if bi.Status == "" {
		bi.Status = models.BookInstanceStatusMaintenance
	}
	if bi.DueBack.IsZero() {
		bi.DueBack = now
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := checkBook(ctx, tx, bi.BookID); err != nil {
			return err
		}

		_, err := tx.
			NewInsert().
			Model(bi).
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// RetrieveBookInstance loads a copy with its book.
func (svc *Service) RetrieveBookInstance(ctx context.Context, opts RetrieveBookInstanceOptions) (*models.BookInstance, error) {
	bi := &models.BookInstance{}

	q := svc.db.
		NewSelect().
		Model(bi).
		Relation("Book")

	if opts.ID != nil {
		q = q.Where("bi.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("BookInstance")
		}
		return nil, errors.WithStack(err)
	}

	return bi, nil
}

// ListBookInstances returns copies with their books loaded.
func (svc *Service) ListBookInstances(ctx context.Context, opts ListBookInstancesOptions) ([]*models.BookInstance, error) {
	var instances []*models.BookInstance

	q := svc.db.
		NewSelect().
		Model(&instances).
		Relation("Book").
		Order("bi.id ASC")

	if opts.Status != nil {
		q = q.Where("bi.status = ?", *opts.Status)
	}

	err := q.Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return instances, nil
}

func (svc *Service) UpdateBookInstance(ctx context.Context, bi *models.BookInstance, opts UpdateBookInstanceOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	bi.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.
			NewUpdate().
			Model(bi).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("BookInstance")
		}

		if !slices.Contains(opts.Columns, "book_id") {
			return nil
		}
		return checkBook(ctx, tx, bi.BookID)
	})
}

func (svc *Service) DeleteBookInstance(ctx context.Context, id int) error {
	_, err := svc.db.NewDelete().
		Model((*models.BookInstance)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

func checkBook(ctx context.Context, tx bun.Tx, bookID int) error {
	exists, err := tx.NewSelect().
		Model((*models.Book)(nil)).
		Where("b.id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.ValidationErrors([]errcodes.FieldError{
			{Field: "book", Message: `"book" doesn't exist`},
		})
	}
	return nil
}

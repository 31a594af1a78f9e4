package catalog

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// Counts are the record totals shown on the catalog home page.
type Counts struct {
	Books              int
	Instances          int
	AvailableInstances int
	Authors            int
	Genres             int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Counts runs every count concurrently and fails if any of them fails.
func (svc *Service) Counts(ctx context.Context) (*Counts, error) {
	counts := &Counts{}

	gg, ctx := errgroup.WithContext(ctx)
	gg.Go(func() (err error) {
		counts.Books, err = svc.db.NewSelect().Model((*models.Book)(nil)).Count(ctx)
		return errors.WithStack(err)
	})
	gg.Go(func() (err error) {
		counts.Instances, err = svc.db.NewSelect().Model((*models.BookInstance)(nil)).Count(ctx)
		return errors.WithStack(err)
	})
	gg.Go(func() (err error) {
		counts.AvailableInstances, err = svc.db.NewSelect().
			Model((*models.BookInstance)(nil)).
			Where("bi.status = ?", models.BookInstanceStatusAvailable).
			Count(ctx)
		return errors.WithStack(err)
	})
	gg.Go(func() (err error) {
		counts.Authors, err = svc.db.NewSelect().Model((*models.Author)(nil)).Count(ctx)
		return errors.WithStack(err)
	})
	gg.Go(func() (err error) {
		counts.Genres, err = svc.db.NewSelect().Model((*models.Genre)(nil)).Count(ctx)
		return errors.WithStack(err)
	})

	if err := gg.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

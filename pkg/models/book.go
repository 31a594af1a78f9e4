package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID         int          `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Title      string       `bun:",notnull" json:"title"`
	AuthorID   int          `bun:",notnull" json:"author_id"`
	Author     *Author      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	Summary    string       `bun:",notnull" json:"summary"`
	ISBN       string       `bun:"isbn,notnull" json:"isbn"`
	BookGenres []*BookGenre `bun:"rel:has-many,join:id=book_id" json:"book_genres,omitempty"`
}

// Genres flattens the loaded genre associations.
func (b *Book) Genres() []*Genre {
	genres := make([]*Genre, 0, len(b.BookGenres))
	for _, bg := range b.BookGenres {
		if bg.Genre != nil {
			genres = append(genres, bg.Genre)
		}
	}
	return genres
}

// HasGenre reports whether the book is associated with the given genre. Used
// to pre-check boxes on the book form.
func (b *Book) HasGenre(genreID int) bool {
	for _, bg := range b.BookGenres {
		if bg.GenreID == genreID {
			return true
		}
	}
	return false
}

func BookURL(b *Book) string {
	return fmt.Sprintf("/catalog/book/%d", b.ID)
}

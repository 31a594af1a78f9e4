package books

import (
	"strconv"

	"github.com/shishobooks/catalog/pkg/models"
)

type BookPayload struct {
	Title   string `form:"title" mod:"trim,escape" validate:"required,max=300"`
	Author  string `form:"author" mod:"trim" validate:"required,number"`
	Summary string `form:"summary" mod:"striptags,escape" validate:"required,max=5000"`
	ISBN    string `form:"isbn" mod:"trim,escape" validate:"required,max=20"`
	Genre   []int  `form:"genre"`
}

type DeleteBookPayload struct {
	BookID int `form:"bookid" validate:"min=0"`
}

// AuthorID is the selected author. It's only meaningful after validation.
func (p BookPayload) AuthorID() int {
	id, _ := strconv.Atoi(p.Author)
	return id
}

// IsAuthor reports whether the given author is selected.
func (p BookPayload) IsAuthor(id int) bool {
	return p.Author != "" && p.AuthorID() == id
}

// HasGenre reports whether the given genre is checked.
func (p BookPayload) HasGenre(id int) bool {
	for _, g := range p.Genre {
		if g == id {
			return true
		}
	}
	return false
}

func payloadFromBook(b *models.Book) BookPayload {
	genres := make([]int, 0, len(b.BookGenres))
	for _, bg := range b.BookGenres {
		genres = append(genres, bg.GenreID)
	}
	return BookPayload{
		Title:   b.Title,
		Author:  strconv.Itoa(b.AuthorID),
		Summary: b.Summary,
		ISBN:    b.ISBN,
		Genre:   genres,
	}
}

func (p BookPayload) apply(b *models.Book) {
	b.Title = p.Title
	b.AuthorID = p.AuthorID()
	b.Summary = p.Summary
	b.ISBN = p.ISBN
}

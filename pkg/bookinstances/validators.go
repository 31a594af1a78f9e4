package bookinstances

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/binder"
	"github.com/shishobooks/catalog/pkg/models"
)

type BookInstancePayload struct {
	Book    string `form:"book" mod:"trim" validate:"required,number"`
	Imprint string `form:"imprint" mod:"trim,escape" validate:"required,max=200"`
	Status  string `form:"status" mod:"trim" default:"Maintenance" validate:"required,oneof=Available Maintenance Loaned Reserved"`
	DueBack string `form:"due_back" mod:"trim" validate:"omitempty,iso8601"`
}

type DeleteBookInstancePayload struct {
	BookInstanceID int `form:"bookinstanceid" validate:"min=0"`
}

// BookID is the selected book. It's only meaningful after validation.
func (p BookInstancePayload) BookID() int {
	id, _ := strconv.Atoi(p.Book)
	return id
}

// IsBook reports whether the given book is selected.
func (p BookInstancePayload) IsBook(id int) bool {
	return p.Book != "" && p.BookID() == id
}

func payloadFromBookInstance(bi *models.BookInstance) BookInstancePayload {
	return BookInstancePayload{
		Book:    strconv.Itoa(bi.BookID),
		Imprint: bi.Imprint,
		Status:  bi.Status,
		DueBack: models.DueBackISO(bi),
	}
}

// apply copies a validated payload onto the copy. A missing due date means
// the copy is due now.
func (p BookInstancePayload) apply(bi *models.BookInstance, now time.Time) error {
	dueBack, err := binder.ParseDate(p.DueBack)
	if err != nil {
		return errors.WithStack(err)
	}
	if dueBack == nil {
		dueBack = &now
	}

	bi.BookID = p.BookID()
	bi.Imprint = p.Imprint
	bi.Status = p.Status
	bi.DueBack = *dueBack
	return nil
}

type ListBookInstancesQuery struct {
	Status string `query:"status" mod:"trim" validate:"omitempty,oneof=Available Maintenance Loaned Reserved"`
}

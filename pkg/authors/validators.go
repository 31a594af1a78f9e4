package authors

import (
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/binder"
	"github.com/shishobooks/catalog/pkg/models"
)

type AuthorPayload struct {
	FirstName   string `form:"first_name" mod:"trim,escape" validate:"required,max=100,alphanum"`
	FamilyName  string `form:"family_name" mod:"trim,escape" validate:"required,max=100,alphanum"`
	DateOfBirth string `form:"date_of_birth" mod:"trim" validate:"omitempty,iso8601"`
	DateOfDeath string `form:"date_of_death" mod:"trim" validate:"omitempty,iso8601"`
}

type DeleteAuthorPayload struct {
	AuthorID int `form:"authorid" validate:"min=0"`
}

// payloadFromAuthor fills the form with the stored values.
func payloadFromAuthor(a *models.Author) AuthorPayload {
	return AuthorPayload{
		FirstName:   a.FirstName,
		FamilyName:  a.FamilyName,
		DateOfBirth: models.FormatISODate(a.DateOfBirth),
		DateOfDeath: models.FormatISODate(a.DateOfDeath),
	}
}

// apply copies a validated payload onto the author.
func (p AuthorPayload) apply(a *models.Author) error {
	dob, err := binder.ParseDate(p.DateOfBirth)
	if err != nil {
		return errors.WithStack(err)
	}
	dod, err := binder.ParseDate(p.DateOfDeath)
	if err != nil {
		return errors.WithStack(err)
	}

	a.FirstName = p.FirstName
	a.FamilyName = p.FamilyName
	a.DateOfBirth = dob
	a.DateOfDeath = dod
	return nil
}

package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID          int        `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	FirstName   string     `bun:",notnull" json:"first_name"`
	FamilyName  string     `bun:",notnull" json:"family_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	DateOfDeath *time.Time `json:"date_of_death"`
}

// AuthorName is the display name, "family_name, first_name".
func AuthorName(a *Author) string {
	return a.FamilyName + ", " + a.FirstName
}

// AuthorLifespan returns the number of years between birth and death. It's
// empty unless both dates are known.
func AuthorLifespan(a *Author) string {
	if a.DateOfBirth == nil || a.DateOfDeath == nil {
		return ""
	}
	return strconv.Itoa(a.DateOfDeath.UTC().Year() - a.DateOfBirth.UTC().Year())
}

func AuthorURL(a *Author) string {
	return fmt.Sprintf("/catalog/author/%d", a.ID)
}

package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

const (
	BookInstanceStatusAvailable   = "Available"
	BookInstanceStatusMaintenance = "Maintenance"
	BookInstanceStatusLoaned      = "Loaned"
	BookInstanceStatusReserved    = "Reserved"
)

// BookInstanceStatuses lists the valid statuses in form display order.
var BookInstanceStatuses = []string{
	BookInstanceStatusMaintenance,
	BookInstanceStatusAvailable,
	BookInstanceStatusLoaned,
	BookInstanceStatusReserved,
}

type BookInstance struct {
	bun.BaseModel `bun:"table:book_instances,alias:bi"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",notnull" json:"book_id"`
	Book      *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	Imprint   string    `bun:",notnull" json:"imprint"`
	Status    string    `bun:",notnull" json:"status"`
	DueBack   time.Time `bun:",notnull" json:"due_back"`
}

func BookInstanceURL(bi *BookInstance) string {
	return fmt.Sprintf("/catalog/bookinstance/%d", bi.ID)
}

// DueBackFormatted renders the due date for display, e.g. "March 3rd, 2024".
func DueBackFormatted(bi *BookInstance) string {
	d := bi.DueBack
	return fmt.Sprintf("%s %s, %d", d.Month(), ordinal(d.Day()), d.Year())
}

// DueBackISO renders the due date as YYYY-MM-DD for date inputs.
func DueBackISO(bi *BookInstance) string {
	return FormatISODate(&bi.DueBack)
}

// FormatISODate renders t as YYYY-MM-DD in UTC, or the empty string for nil.
func FormatISODate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

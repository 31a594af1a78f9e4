package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type indexPage struct {
	Title  string
	Counts *Counts
}

type handler struct {
	catalogService *Service
}

func (h *handler) index(c echo.Context) error {
	counts, err := h.catalogService.Counts(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.Render(http.StatusOK, "index", indexPage{
		Title:  "Local Library Home",
		Counts: counts,
	}))
}

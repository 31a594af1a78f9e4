package bookinstances

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book instance routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		bookInstanceService: NewService(db),
		bookService:         books.NewService(db),
	}

	g.GET("/bookinstances", h.list)
	g.GET("/bookinstance/create", h.createForm)
	g.POST("/bookinstance/create", h.create)
	g.GET("/bookinstance/:id", h.retrieve)
	g.GET("/bookinstance/:id/update", h.updateForm)
	g.POST("/bookinstance/:id/update", h.update)
	g.GET("/bookinstance/:id/delete", h.deleteForm)
	g.POST("/bookinstance/:id/delete", h.deleteBookInstance)
}

package genres

type GenrePayload struct {
	Name string `form:"name" mod:"trim,escape" validate:"required,max=100"`
}

type DeleteGenrePayload struct {
	GenreID int `form:"genreid" validate:"min=0"`
}

package models

type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id" redis:"id"`
	Title string `gorm:"not null;uniqueIndex" json:"title" redis:"title"`
	Canon bool   `gorm:"not null;default:false" json:"canon" redis:"canon"`
}

// CategoryWithCount is a category row annotated with the number of clues filed under it.
type CategoryWithCount struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Canon    bool   `json:"canon"`
	NumClues int64  `json:"num_clues"`
}

type CategoryPage struct {
	PageCount  int                 `json:"page_count"`
	Categories []CategoryWithCount `json:"categories"`
}

// CategoryInput - used to create or rename a category
type CategoryInput struct {
	Title string `json:"title" validate:"required,max=255"`
}

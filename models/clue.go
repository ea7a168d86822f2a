package models

type Clue struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Question     string   `gorm:"type:text;not null" json:"question"`
	Answer       string   `gorm:"type:text;not null" json:"answer"`
	Value        int      `gorm:"not null;default:0" json:"value"`
	InvalidCount int      `gorm:"not null;default:0" json:"invalid_count"`
	Canon        bool     `gorm:"not null;default:false;index" json:"canon"`
	CategoryID   uint     `gorm:"not null;index" json:"category_id"`
	Category     Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
	GameID       *uint    `gorm:"index" json:"game_id"`
	Game         *Game    `gorm:"foreignKey:GameID;constraint:OnDelete:SET NULL" json:"-"`
}

// ClueOut is a clue joined with the category it belongs to.
type ClueOut struct {
	ID           uint     `json:"id"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Value        int      `json:"value"`
	InvalidCount int      `json:"invalid_count"`
	Canon        bool     `json:"canon"`
	Category     Category `json:"category"`
}

type CluePage struct {
	PageCount int       `json:"page_count"`
	Clues     []ClueOut `json:"clues"`
}

// ClueInput - used to file a new clue under an existing category
type ClueInput struct {
	Question   string `json:"question" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
	Value      int    `json:"value" validate:"gte=0"`
	CategoryID uint   `json:"category_id" validate:"required,gte=1"`
	GameID     *uint  `json:"game_id" validate:"omitempty,gte=1"`
}

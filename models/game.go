package models

import "time"

type Game struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	EpisodeID int    `gorm:"not null" json:"episode_id"`
	Aired     string `json:"aired"`
	Canon     bool   `gorm:"not null;default:false" json:"canon"`
}

// GameWithTotal carries the sum of clue values won in a game.
// TotalAmountWon is nil when the game has no clues.
type GameWithTotal struct {
	ID             uint   `json:"id"`
	EpisodeID      int    `json:"episode_id"`
	Aired          string `json:"aired"`
	Canon          bool   `json:"canon"`
	TotalAmountWon *int64 `json:"total_amount_won"`
}

type GamePage struct {
	PageCount int             `json:"page_count"`
	Games     []GameWithTotal `json:"games"`
}

// GameDefinition is a user generated game built from a random set of canonical clues.
type GameDefinition struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedOn time.Time `gorm:"not null" json:"created_on"`
}

// GameDefinitionClue links a custom game definition to one of its clues.
type GameDefinitionClue struct {
	GameDefinitionID uint           `gorm:"primaryKey;autoIncrement:false"`
	ClueID           uint           `gorm:"primaryKey;autoIncrement:false;index"`
	GameDefinition   GameDefinition `gorm:"foreignKey:GameDefinitionID;constraint:OnDelete:CASCADE"`
	Clue             Clue           `gorm:"foreignKey:ClueID;constraint:OnDelete:RESTRICT"`
}

type CustomGame struct {
	ID        uint      `json:"id"`
	CreatedOn time.Time `json:"created_on"`
	Clues     []ClueOut `json:"clues"`
}

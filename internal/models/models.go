package models

import "time"

// LevelDefinition is the raw, unvalidated level document read from a level
// source. Only the level factory turns it into a playable level.
type LevelDefinition struct {
	ID         string                    `yaml:"id" json:"id"`
	Name       string                    `yaml:"name" json:"name"`
	Difficulty string                    `yaml:"difficulty" json:"difficulty"` // "easy", "medium" or "hard"
	StartRoom  string                    `yaml:"start_room" json:"start_room"`
	Rooms      map[string]RoomDefinition `yaml:"rooms" json:"rooms"`   // Keyed by room name
	Coords     map[string][]int          `yaml:"coords" json:"coords"` // room name -> [x, y]
	Rules      *RulesDefinition          `yaml:"rules" json:"rules"`
	Version    int                       `yaml:"version,omitempty" json:"version,omitempty"`
}

// RoomDefinition describes one room of a raw level.
type RoomDefinition struct {
	Exits map[string]string `yaml:"exits" json:"exits"` // direction -> room name
	Item  *ItemDefinition   `yaml:"item,omitempty" json:"item,omitempty"`
}

// ItemDefinition describes the item placed in a room.
type ItemDefinition struct {
	Type string `yaml:"type" json:"type"` // "relic" or "villain"
	Name string `yaml:"name" json:"name"`
}

// RulesDefinition holds the win condition of a raw level.
type RulesDefinition struct {
	RequiredItems []string `yaml:"required_items" json:"required_items"`
}

// ActiveSession is the single resumable snapshot of a user's in-progress run.
type ActiveSession struct {
	UserID    string     `yaml:"user_id" json:"user_id"`
	LevelID   string     `yaml:"level_id" json:"level_id"`
	State     *GameState `yaml:"state" json:"state"`
	CreatedAt time.Time  `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time  `yaml:"updated_at" json:"updated_at"`
}

// RunSnapshot summarises the final state of a finished run.
type RunSnapshot struct {
	FinalRoom          string   `yaml:"final_room" json:"final_room"`
	Inventory          []string `yaml:"inventory" json:"inventory"`
	EncounteredVillain bool     `yaml:"encountered_villain" json:"encountered_villain"`
	OptimalMoves       int      `yaml:"optimal_moves" json:"optimal_moves"`
	LevelVersion       int      `yaml:"level_version" json:"level_version"`
}

// CompletedRun is the immutable history record of a finished run.
type CompletedRun struct {
	ID             string      `yaml:"id" json:"id"`
	UserID         string      `yaml:"user_id" json:"user_id"`
	LevelID        string      `yaml:"level_id" json:"level_id"`
	Status         Status      `yaml:"status" json:"status"`
	Score          int         `yaml:"score" json:"score"`
	Moves          int         `yaml:"moves" json:"moves"`
	ItemsCollected int         `yaml:"items_collected" json:"items_collected"`
	FinishedAt     time.Time   `yaml:"finished_at" json:"finished_at"`
	Snapshot       RunSnapshot `yaml:"snapshot" json:"snapshot"`
}

// Won reports whether the run ended with the villain defeated.
func (r CompletedRun) Won() bool {
	return r.Status == StatusCompleted
}

// Account is a registered player. Email is the player's identity key for
// sessions and history.
type Account struct {
	Email        string    `yaml:"email" json:"email"`
	DisplayName  string    `yaml:"display_name" json:"display_name"`
	PasswordHash string    `yaml:"password_hash" json:"-"`
	CreatedAt    time.Time `yaml:"created_at" json:"created_at"`
}

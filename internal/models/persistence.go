package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// stateRecord is the wire form of GameState shared by the JSON and YAML
// codecs. Sets are written as sorted lists; the event log keeps its order.
type stateRecord struct {
	Player             playerRecord `yaml:"player" json:"player"`
	VisitedRooms       []string     `yaml:"visited_rooms" json:"visited_rooms"`
	CollectedItems     []string     `yaml:"collected_items" json:"collected_items"`
	MoveCount          int          `yaml:"move_count" json:"move_count"`
	Status             Status       `yaml:"status" json:"status"`
	Message            string       `yaml:"message,omitempty" json:"message,omitempty"`
	EventLog           []string     `yaml:"event_log" json:"event_log"`
	EncounteredVillain bool         `yaml:"encountered_villain" json:"encountered_villain"`
	StartedAt          time.Time    `yaml:"started_at" json:"started_at"`
	UpdatedAt          time.Time    `yaml:"updated_at" json:"updated_at"`
}

type playerRecord struct {
	Location  string   `yaml:"location" json:"location"`
	Inventory []string `yaml:"inventory" json:"inventory"`
}

func (s GameState) record() stateRecord {
	r := stateRecord{
		VisitedRooms:       sortedSet(s.VisitedRooms),
		CollectedItems:     sortedSet(s.CollectedItems),
		MoveCount:          s.MoveCount,
		Status:             s.Status,
		Message:            s.Message,
		EventLog:           append([]string{}, s.EventLog...),
		EncounteredVillain: s.EncounteredVillain,
		StartedAt:          s.StartedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.Player != nil {
		r.Player = playerRecord{
			Location:  s.Player.Location,
			Inventory: sortedSet(s.Player.Inventory),
		}
	}
	return r
}

func (s *GameState) restore(r stateRecord) error {
	if r.Player.Location == "" {
		return fmt.Errorf("game state: player location is required")
	}
	if r.Status == "" {
		r.Status = StatusInProgress
	}
	if !r.Status.Valid() {
		return fmt.Errorf("game state: unknown status %q", r.Status)
	}
	if r.MoveCount < 0 {
		return fmt.Errorf("game state: negative move count %d", r.MoveCount)
	}
	*s = GameState{
		Player: &Player{
			Location:  r.Player.Location,
			Inventory: setOf(r.Player.Inventory),
		},
		VisitedRooms:       setOf(r.VisitedRooms),
		CollectedItems:     setOf(r.CollectedItems),
		MoveCount:          r.MoveCount,
		Status:             r.Status,
		Message:            r.Message,
		EventLog:           r.EventLog,
		EncounteredVillain: r.EncounteredVillain,
		StartedAt:          r.StartedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	s.VisitedRooms.Put(r.Player.Location)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s GameState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.record())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *GameState) UnmarshalJSON(data []byte) error {
	var r stateRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	return s.restore(r)
}

// MarshalYAML implements yaml.Marshaler.
func (s GameState) MarshalYAML() (interface{}, error) {
	return s.record(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *GameState) UnmarshalYAML(value *yaml.Node) error {
	var r stateRecord
	if err := value.Decode(&r); err != nil {
		return err
	}
	return s.restore(r)
}

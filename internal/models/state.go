package models

import (
	"slices"
	"time"

	"github.com/zyedidia/generic/mapset"
)

// MaxEventLog bounds the event log; older entries are dropped first.
const MaxEventLog = 50

// Status is the lifecycle status of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusGameOver   Status = "game_over"
)

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusGameOver
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusGameOver:
		return true
	default:
		return false
	}
}

// Player is the player's position and carried items.
type Player struct {
	Location  string
	Inventory mapset.Set[string]
}

// NewPlayer places a player with an empty inventory in location.
func NewPlayer(location string) *Player {
	return &Player{
		Location:  location,
		Inventory: mapset.New[string](),
	}
}

// GameState is the mutable progress of one session.
type GameState struct {
	Player             *Player
	VisitedRooms       mapset.Set[string]
	CollectedItems     mapset.Set[string]
	MoveCount          int
	Status             Status
	Message            string
	EventLog           []string
	EncounteredVillain bool
	StartedAt          time.Time
	UpdatedAt          time.Time
}

// NewGameState starts a session in startRoom.
func NewGameState(startRoom string, now time.Time) *GameState {
	s := &GameState{
		Player:         NewPlayer(startRoom),
		VisitedRooms:   mapset.New[string](),
		CollectedItems: mapset.New[string](),
		Status:         StatusInProgress,
		StartedAt:      now,
		UpdatedAt:      now,
	}
	s.VisitedRooms.Put(startRoom)
	return s
}

// Visit marks room as visited.
func (s *GameState) Visit(room string) {
	s.VisitedRooms.Put(room)
}

// Log appends an event, keeping at most MaxEventLog entries.
func (s *GameState) Log(event string) {
	s.EventLog = append(s.EventLog, event)
	if over := len(s.EventLog) - MaxEventLog; over > 0 {
		s.EventLog = slices.Clone(s.EventLog[over:])
	}
}

// Touch records a mutation time.
func (s *GameState) Touch(now time.Time) {
	s.UpdatedAt = now
}

// HasAll reports whether every required item has been collected.
func (s *GameState) HasAll(required []string) bool {
	for _, name := range required {
		if !s.CollectedItems.Has(name) {
			return false
		}
	}
	return true
}

// CountCollected returns how many of the named items have been collected.
func (s *GameState) CountCollected(names []string) int {
	n := 0
	for _, name := range names {
		if s.CollectedItems.Has(name) {
			n++
		}
	}
	return n
}

// Collected returns the collected item names in sorted order.
func (s *GameState) Collected() []string {
	return sortedSet(s.CollectedItems)
}

// Visited returns the visited room names in sorted order.
func (s *GameState) Visited() []string {
	return sortedSet(s.VisitedRooms)
}

// Inventory returns the player's items in sorted order.
func (s *GameState) Inventory() []string {
	return sortedSet(s.Player.Inventory)
}

// RecentEvents returns up to n of the newest events, oldest first.
func (s *GameState) RecentEvents(n int) []string {
	if n <= 0 || len(s.EventLog) <= n {
		return slices.Clone(s.EventLog)
	}
	return slices.Clone(s.EventLog[len(s.EventLog)-n:])
}

// Clone returns a deep copy sharing nothing with s.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Player = &Player{
		Location:  s.Player.Location,
		Inventory: copySet(s.Player.Inventory),
	}
	c.VisitedRooms = copySet(s.VisitedRooms)
	c.CollectedItems = copySet(s.CollectedItems)
	c.EventLog = slices.Clone(s.EventLog)
	return &c
}

func copySet(src mapset.Set[string]) mapset.Set[string] {
	dst := mapset.New[string]()
	src.Each(func(key string) {
		dst.Put(key)
	})
	return dst
}

func sortedSet(set mapset.Set[string]) []string {
	keys := make([]string, 0, set.Size())
	set.Each(func(key string) {
		keys = append(keys, key)
	})
	slices.Sort(keys)
	return keys
}

func setOf(keys []string) mapset.Set[string] {
	set := mapset.New[string]()
	for _, k := range keys {
		set.Put(k)
	}
	return set
}

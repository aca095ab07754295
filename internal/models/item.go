package models

import "fmt"

// ItemKind tags the item variants.
type ItemKind string

const (
	ItemRelic   ItemKind = "relic"
	ItemVillain ItemKind = "villain"
)

// ParseItemKind maps a raw item type to its kind.
func ParseItemKind(raw string) (ItemKind, bool) {
	switch kind := ItemKind(raw); kind {
	case ItemRelic, ItemVillain:
		return kind, true
	default:
		return "", false
	}
}

// Item is an immutable, stateless item. Its behaviour lives in the entry
// hook table and only ever mutates the session state.
type Item struct {
	Kind ItemKind
	Name string
}

type enterHook func(item Item, state *GameState)

var enterHooks = map[ItemKind]enterHook{
	ItemRelic:   collectRelic,
	ItemVillain: confrontVillain,
}

// OnEnter applies the item's effect to state. Unknown kinds do nothing.
func (i Item) OnEnter(state *GameState) {
	if hook, ok := enterHooks[i.Kind]; ok {
		hook(i, state)
	}
}

// collectRelic logs on every entry; the sets keep the relic only once.
func collectRelic(item Item, state *GameState) {
	state.CollectedItems.Put(item.Name)
	state.Player.Inventory.Put(item.Name)
	state.Log(fmt.Sprintf("Collected %s", item.Name))
}

func confrontVillain(item Item, state *GameState) {
	state.EncounteredVillain = true
	state.Log("Encountered the villain")
}

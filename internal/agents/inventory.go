package agents

import (
	"encoding/json"
)

// Inventory holds item counts in order of first acquisition.
// Counts are always >= 1; an item is dropped when it reaches zero.
type Inventory struct {
	order  []string
	counts map[string]int
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{counts: make(map[string]int)}
}

// Add adds qty units of item. Non-positive quantities are ignored.
func (inv *Inventory) Add(item string, qty int) {
	if qty <= 0 {
		return
	}
	if _, ok := inv.counts[item]; !ok {
		inv.order = append(inv.order, item)
	}
	inv.counts[item] += qty
}

// Consume removes qty units of item. It returns false, leaving the
// inventory untouched, when fewer than qty units are held.
func (inv *Inventory) Consume(item string, qty int) bool {
	have, ok := inv.counts[item]
	if !ok || qty <= 0 || have < qty {
		return false
	}
	if have == qty {
		delete(inv.counts, item)
		for i, name := range inv.order {
			if name == item {
				inv.order = append(inv.order[:i], inv.order[i+1:]...)
				break
			}
		}
		return true
	}
	inv.counts[item] = have - qty
	return true
}

// Count returns how many units of item are held.
func (inv *Inventory) Count(item string) int {
	return inv.counts[item]
}

// First returns the earliest acquired item still held.
func (inv *Inventory) First() (string, bool) {
	if len(inv.order) == 0 {
		return "", false
	}
	return inv.order[0], true
}

// Len returns the number of distinct items.
func (inv *Inventory) Len() int {
	return len(inv.order)
}

// Total returns the number of units across all items.
func (inv *Inventory) Total() int {
	n := 0
	for _, c := range inv.counts {
		n += c
	}
	return n
}

// ItemCount is one inventory line.
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// Items returns the inventory lines in acquisition order.
func (inv *Inventory) Items() []ItemCount {
	out := make([]ItemCount, 0, len(inv.order))
	for _, name := range inv.order {
		out = append(out, ItemCount{Item: name, Count: inv.counts[name]})
	}
	return out
}

// MarshalJSON encodes the inventory as an ordered list of lines.
func (inv *Inventory) MarshalJSON() ([]byte, error) {
	return json.Marshal(inv.Items())
}

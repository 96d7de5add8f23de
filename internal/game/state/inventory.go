package state

// Item types carried in inventories and catalogs.
const (
	ItemTypeMaterial = "material"
	ItemTypePill     = "pill"
	ItemTypeWeapon   = "weapon"
	ItemTypeArmor    = "armor"
	ItemTypeSpecial  = "special"
)

// ItemEffect describes what a consumable does when used.
type ItemEffect struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

// EquipStats are the combat-relevant numbers on a forged weapon or armor.
type EquipStats struct {
	Attack  int `json:"attack,omitempty"`
	Defense int `json:"defense,omitempty"`
}

// InventoryItem is one entry in a player's bag. Quantity is always positive;
// entries are pruned the moment they hit zero.
type InventoryItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Quantity int         `json:"quantity"`
	Effect   *ItemEffect `json:"effect,omitempty"`
	Stats    *EquipStats `json:"stats,omitempty"`
	Value    int         `json:"value,omitempty"`
}

// Stackable reports whether multiple units share one entry. Forged equipment
// never stacks: each piece keeps its own entry.
func (it InventoryItem) Stackable() bool {
	return it.Type != ItemTypeWeapon && it.Type != ItemTypeArmor
}

// Inventory is an ordered bag of items. Order is insertion order; identity is
// the item id.
type Inventory []InventoryItem

// Count returns the total quantity held across entries with the given id.
func (inv Inventory) Count(id string) int {
	total := 0
	for i := range inv {
		if inv[i].ID == id {
			total += inv[i].Quantity
		}
	}
	return total
}

// Find returns a pointer to the first entry with the given id, or nil.
func (inv Inventory) Find(id string) *InventoryItem {
	for i := range inv {
		if inv[i].ID == id {
			return &inv[i]
		}
	}
	return nil
}

// Has reports whether at least qty units of id are held.
func (inv Inventory) Has(id string, qty int) bool {
	return inv.Count(id) >= qty
}

// Add puts an item into the bag. Stackable items merge onto an existing entry
// with the same id; equipment is always appended as its own entry.
func (inv *Inventory) Add(item InventoryItem) {
	if item.Quantity <= 0 {
		return
	}
	if item.Stackable() {
		if existing := inv.Find(item.ID); existing != nil {
			existing.Quantity += item.Quantity
			return
		}
	}
	*inv = append(*inv, item)
}

// Remove deducts qty units of id, pruning entries that reach zero. Returns
// false (and mutates nothing) when the bag holds fewer than qty units.
func (inv *Inventory) Remove(id string, qty int) bool {
	if qty <= 0 {
		return true
	}
	if !inv.Has(id, qty) {
		return false
	}
	remaining := qty
	out := (*inv)[:0]
	for _, entry := range *inv {
		if remaining > 0 && entry.ID == id {
			take := entry.Quantity
			if take > remaining {
				take = remaining
			}
			entry.Quantity -= take
			remaining -= take
			if entry.Quantity == 0 {
				continue
			}
		}
		out = append(out, entry)
	}
	*inv = out
	return true
}

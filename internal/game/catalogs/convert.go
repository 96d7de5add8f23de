package catalogs

import "shudao.quest/internal/game/state"

// InventoryItem materializes qty units of a catalog item for a player bag.
func (d ItemDef) InventoryItem(qty int) state.InventoryItem {
	item := state.InventoryItem{
		ID:       d.ID,
		Name:     d.Name,
		Type:     d.Type,
		Quantity: qty,
		Value:    d.Value,
	}
	if d.Effect != nil {
		item.Effect = &state.ItemEffect{Type: d.Effect.Type, Value: d.Effect.Value}
	}
	return item
}

package shop

import (
	"fmt"

	"shudao.quest/internal/game/catalogs"
	"shudao.quest/internal/game/state"
	"shudao.quest/internal/game/tuning"
	"shudao.quest/internal/protocol"
)

// CategoryAll returns the whole stock list from Items.
const CategoryAll = "all"

// SkillPointSink receives skill points bought through the shop instead of
// the points entering the bag as an item.
type SkillPointSink interface {
	GainPoints(p *state.Player, amount int)
}

// System runs the barter shop: goods are priced in other items, stock is
// tracked per system instance, and the catalog stays immutable.
type System struct {
	items   catalogs.ItemCatalog
	catalog catalogs.ShopCatalog

	// Live stock by shop slot id; -1 means unlimited.
	stock map[string]int

	currency    string
	sellDivisor int

	skillSink SkillPointSink
}

func NewSystem(cats *catalogs.Catalogs, tune tuning.Tuning, sink SkillPointSink) *System {
	stock := make(map[string]int, len(cats.Shop.Ordered))
	for _, s := range cats.Shop.Ordered {
		stock[s.ID] = s.Stock
	}
	return &System{
		items:       cats.Items,
		catalog:     cats.Shop,
		stock:       stock,
		currency:    tune.Shop.CurrencyItem,
		sellDivisor: tune.Shop.SellDivisor,
		skillSink:   sink,
	}
}

// Buy purchases one unit of a shop slot. Checks run before any mutation:
// slot exists, stock remains, the player holds enough of the priced item.
func (s *System) Buy(shopItemID string, p *state.Player) protocol.Result {
	def, ok := s.catalog.ByID[shopItemID]
	if !ok {
		return protocol.Fail(protocol.ErrItemNotFound, fmt.Sprintf("没有这件商品: %s", shopItemID))
	}
	if s.stock[shopItemID] == 0 {
		return protocol.Fail(protocol.ErrOutOfStock, fmt.Sprintf("%s 已售罄", def.Name))
	}
	priceName := def.Price.Type
	if priceDef, ok := s.items.ByID[def.Price.Type]; ok {
		priceName = priceDef.Name
	}
	if !p.Inventory.Has(def.Price.Type, def.Price.Amount) {
		return protocol.Fail(protocol.ErrInsufficientFunds, fmt.Sprintf("%s不足，需要 %d 个", priceName, def.Price.Amount))
	}

	p.Inventory.Remove(def.Price.Type, def.Price.Amount)

	item := s.items.ByID[def.ItemID]
	if item.Type == state.ItemTypeSpecial && item.Effect != nil && item.Effect.Type == "skill_point" {
		// Skill point crystals convert straight into points.
		s.skillSink.GainPoints(p, item.Effect.Value)
	} else {
		p.Inventory.Add(item.InventoryItem(1))
	}

	if s.stock[shopItemID] > 0 {
		s.stock[shopItemID]--
	}
	return protocol.Ok(fmt.Sprintf("购得 %s", def.Name))
}

// Sell trades qty units of an item back for the base currency at half the
// shop's asking price per unit, rounded down. Only items the shop stocks
// (slot id "shop_"+itemID) are sellable.
func (s *System) Sell(itemID string, qty int, p *state.Player) protocol.Result {
	if qty <= 0 {
		return protocol.Fail(protocol.ErrBadRequest, "出售数量无效")
	}
	if !p.Inventory.Has(itemID, qty) {
		return protocol.Fail(protocol.ErrInsufficientQuantity, "持有数量不足")
	}
	def, ok := s.catalog.ByID["shop_"+itemID]
	if !ok {
		return protocol.Fail(protocol.ErrNotSellable, "商店不收购此物")
	}

	unit := def.Price.Amount / s.sellDivisor
	total := unit * qty

	p.Inventory.Remove(itemID, qty)
	if total > 0 {
		p.Inventory.Add(s.items.ByID[s.currency].InventoryItem(total))
	}
	return protocol.Ok(fmt.Sprintf("售出 %s ×%d，获得 %d", def.Name, qty, total))
}

// Entry is one shop slot with its live stock.
type Entry struct {
	ID       string            `json:"id"`
	ItemID   string            `json:"itemId"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Price    catalogs.PriceDef `json:"price"`
	Category string            `json:"category"`
	Stock    int               `json:"stock"`
}

// Items lists the stock in catalog order, filtered by category.
func (s *System) Items(category string) []Entry {
	out := make([]Entry, 0, len(s.catalog.Ordered))
	for _, def := range s.catalog.Ordered {
		if category != CategoryAll && def.Category != category {
			continue
		}
		out = append(out, Entry{
			ID:       def.ID,
			ItemID:   def.ItemID,
			Name:     def.Name,
			Type:     def.Type,
			Price:    def.Price,
			Category: def.Category,
			Stock:    s.stock[def.ID],
		})
	}
	return out
}

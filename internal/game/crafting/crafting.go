package crafting

import (
	"fmt"

	"shudao.quest/internal/game/catalogs"
	"shudao.quest/internal/game/state"
	"shudao.quest/internal/protocol"
)

// Pill effect kinds understood by UsePill.
const (
	EffectExpBoost      = "exp_boost"
	EffectHeal          = "heal"
	EffectManaRestore   = "mana_restore"
	EffectAccuracyBoost = "accuracy_boost"
)

// CategoryAll unions every recipe category in AvailableRecipes.
const CategoryAll = "all"

// System turns ingredients into forged equipment and pills according to the
// recipe catalog.
type System struct {
	recipes catalogs.RecipeCatalog
}

func NewSystem(cats *catalogs.Catalogs) *System {
	return &System{recipes: cats.Recipes}
}

// Recipe looks up a catalog recipe by id.
func (s *System) Recipe(id string) (catalogs.RecipeDef, bool) {
	r, ok := s.recipes.ByID[id]
	return r, ok
}

// CanCraft reports whether the bag covers every ingredient.
func (s *System) CanCraft(recipe catalogs.RecipeDef, inv state.Inventory) bool {
	for _, ing := range recipe.Ingredients {
		if !inv.Has(ing.ID, ing.Quantity) {
			return false
		}
	}
	return true
}

// CraftResult reports a craft attempt; Item is set on success.
type CraftResult struct {
	protocol.Result
	Item *state.InventoryItem `json:"item,omitempty"`
}

// Craft consumes the ingredients and produces one unit of the result. The
// feasibility check runs first; a failed craft mutates nothing. Crafted
// equipment is appended as its own entry, everything else stacks under the
// recipe id.
func (s *System) Craft(recipe catalogs.RecipeDef, inv *state.Inventory) CraftResult {
	if !s.CanCraft(recipe, *inv) {
		return CraftResult{Result: protocol.Fail(protocol.ErrInsufficientMaterial, fmt.Sprintf("炼制 %s 的材料不足", recipe.Name))}
	}
	for _, ing := range recipe.Ingredients {
		inv.Remove(ing.ID, ing.Quantity)
	}

	item := state.InventoryItem{
		ID:       recipe.ID,
		Name:     recipe.Result.Name,
		Type:     recipe.Result.Type,
		Quantity: 1,
		Value:    recipe.Result.Value,
	}
	if recipe.Result.Effect != nil {
		item.Effect = &state.ItemEffect{Type: recipe.Result.Effect.Type, Value: recipe.Result.Effect.Value}
	}
	if recipe.Result.Stats != nil {
		item.Stats = &state.EquipStats{Attack: recipe.Result.Stats.Attack, Defense: recipe.Result.Stats.Defense}
	}
	inv.Add(item)

	return CraftResult{
		Result: protocol.Ok(fmt.Sprintf("炼制成功：%s", recipe.Result.Name)),
		Item:   &item,
	}
}

// RecipeView is a recipe annotated with live feasibility for the UI.
type RecipeView struct {
	catalogs.RecipeDef
	CanCraft bool `json:"canCraft"`
}

// AvailableRecipes lists recipes in catalog order, filtered by category
// (CategoryAll unions all), each flagged with whether the bag can cover it
// right now.
func (s *System) AvailableRecipes(inv state.Inventory, category string) []RecipeView {
	out := make([]RecipeView, 0, len(s.recipes.Ordered))
	for _, r := range s.recipes.Ordered {
		if category != CategoryAll && r.Category != category {
			continue
		}
		out = append(out, RecipeView{RecipeDef: r, CanCraft: s.CanCraft(r, inv)})
	}
	return out
}

// UsePill applies a pill's effect to the player and consumes one unit from
// the bag. An unrecognized effect kind fails before anything is touched.
func (s *System) UsePill(pill state.InventoryItem, p *state.Player) protocol.Result {
	if pill.Effect == nil {
		return protocol.Fail(protocol.ErrUnknownEffect, fmt.Sprintf("%s 无法服用", pill.Name))
	}
	switch pill.Effect.Type {
	case EffectExpBoost:
		p.GainExp(int64(pill.Effect.Value))
	case EffectHeal:
		p.AddHealth(pill.Effect.Value)
	case EffectManaRestore:
		p.AddMana(pill.Effect.Value)
	case EffectAccuracyBoost:
		p.AccuracyBoost += pill.Effect.Value
	default:
		return protocol.Fail(protocol.ErrUnknownEffect, fmt.Sprintf("未知药效: %s", pill.Effect.Type))
	}
	p.Inventory.Remove(pill.ID, 1)
	return protocol.Ok(fmt.Sprintf("服用 %s", pill.Name))
}

package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Catalogs bundles every static rule table: item definitions, crafting
// recipes, the skill tree and the shop stock seeds. Loaded once at startup
// and read-only afterwards; mutable progression lives on the player.
type Catalogs struct {
	Items   ItemCatalog
	Recipes RecipeCatalog
	Skills  SkillCatalog
	Shop    ShopCatalog
}

type EffectDef struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type StatsDef struct {
	Attack  int `json:"attack,omitempty"`
	Defense int `json:"defense,omitempty"`
}

type ItemCatalog struct {
	ByID   map[string]ItemDef
	Digest string
}

type ItemDef struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Effect *EffectDef `json:"effect,omitempty"`
	Value  int        `json:"value,omitempty"`
}

type RecipeCatalog struct {
	Ordered []RecipeDef
	ByID    map[string]RecipeDef
	Digest  string
}

type RecipeDef struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Ingredients []Ingredient `json:"ingredients"`
	Result      RecipeResult `json:"result"`
	Difficulty  int          `json:"difficulty"`
}

type Ingredient struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type RecipeResult struct {
	Type   string     `json:"type"`
	Name   string     `json:"name"`
	Effect *EffectDef `json:"effect,omitempty"`
	Stats  *StatsDef  `json:"stats,omitempty"`
	Value  int        `json:"value,omitempty"`
}

type SkillCatalog struct {
	Ordered []SkillDef
	ByID    map[string]SkillDef
	Digest  string
}

type SkillDef struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Kind         string         `json:"kind"` // "passive" or "active"
	Cost         int            `json:"cost"`
	MaxLevel     int            `json:"maxLevel"`
	Effect       SkillEffectDef `json:"effect"`
	Requirements []string       `json:"requirements,omitempty"`
}

type SkillEffectDef struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type ShopCatalog struct {
	Ordered []ShopItemDef
	ByID    map[string]ShopItemDef
	Digest  string
}

// ShopItemDef seeds one shop slot. Stock -1 means unlimited; the live stock
// counter belongs to the shop system, not the catalog.
type ShopItemDef struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Price    PriceDef `json:"price"`
	Stock    int      `json:"stock"`
	Category string   `json:"category"`
	// ItemID is the inventory item granted on purchase; shop slot ids are
	// the item id prefixed with "shop_".
	ItemID string `json:"itemId"`
}

// PriceDef is a barter price: Amount units of the item with id Type.
type PriceDef struct {
	Type   string `json:"type"`
	Amount int    `json:"amount"`
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadItems(filepath.Join(configDir, "items.json"), &c.Items); err != nil {
		return nil, err
	}
	if err := loadRecipes(filepath.Join(configDir, "recipes.json"), &c.Recipes); err != nil {
		return nil, err
	}
	if err := loadSkills(filepath.Join(configDir, "skills.json"), &c.Skills); err != nil {
		return nil, err
	}
	if err := loadShop(filepath.Join(configDir, "shop.json"), &c.Shop); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func loadItems(path string, out *ItemCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.ByID = map[string]ItemDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("items.json: empty id")
		}
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("items.json: duplicate id %q", d.ID)
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadRecipes(path string, out *RecipeCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []RecipeDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("recipes.json: %w", err)
	}
	out.Ordered = defs
	out.ByID = map[string]RecipeDef{}
	for _, r := range defs {
		if r.ID == "" {
			return fmt.Errorf("recipes.json: empty id")
		}
		if len(r.Ingredients) == 0 {
			return fmt.Errorf("recipes.json: %s has no ingredients", r.ID)
		}
		if _, dup := out.ByID[r.ID]; dup {
			return fmt.Errorf("recipes.json: duplicate id %q", r.ID)
		}
		out.ByID[r.ID] = r
	}
	return nil
}

func loadSkills(path string, out *SkillCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []SkillDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("skills.json: %w", err)
	}
	out.Ordered = defs
	out.ByID = map[string]SkillDef{}
	for _, s := range defs {
		if s.ID == "" {
			return fmt.Errorf("skills.json: empty id")
		}
		if s.MaxLevel < 1 {
			return fmt.Errorf("skills.json: %s maxLevel < 1", s.ID)
		}
		if _, dup := out.ByID[s.ID]; dup {
			return fmt.Errorf("skills.json: duplicate id %q", s.ID)
		}
		out.ByID[s.ID] = s
	}
	return nil
}

func loadShop(path string, out *ShopCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ShopItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("shop.json: %w", err)
	}
	out.Ordered = defs
	out.ByID = map[string]ShopItemDef{}
	for _, s := range defs {
		if s.ID == "" {
			return fmt.Errorf("shop.json: empty id")
		}
		if s.Price.Type == "" || s.Price.Amount <= 0 {
			return fmt.Errorf("shop.json: %s has no price", s.ID)
		}
		if _, dup := out.ByID[s.ID]; dup {
			return fmt.Errorf("shop.json: duplicate id %q", s.ID)
		}
		out.ByID[s.ID] = s
	}
	return nil
}

// validate checks cross-catalog references so a bad config fails at startup
// instead of mid-session.
func (c *Catalogs) validate() error {
	for _, r := range c.Recipes.Ordered {
		for _, ing := range r.Ingredients {
			if _, ok := c.Items.ByID[ing.ID]; !ok {
				return fmt.Errorf("recipe %s: unknown ingredient %q", r.ID, ing.ID)
			}
			if ing.Quantity < 1 {
				return fmt.Errorf("recipe %s: ingredient %q quantity < 1", r.ID, ing.ID)
			}
		}
	}
	for _, s := range c.Skills.Ordered {
		for _, req := range s.Requirements {
			if _, ok := c.Skills.ByID[req]; !ok {
				return fmt.Errorf("skill %s: unknown requirement %q", s.ID, req)
			}
		}
	}
	for _, s := range c.Shop.Ordered {
		if _, ok := c.Items.ByID[s.Price.Type]; !ok {
			return fmt.Errorf("shop item %s: unknown price item %q", s.ID, s.Price.Type)
		}
		if _, ok := c.Items.ByID[s.ItemID]; !ok {
			return fmt.Errorf("shop item %s: unknown item %q", s.ID, s.ItemID)
		}
		if s.ID != "shop_"+s.ItemID {
			return fmt.Errorf("shop item %s: id must be shop_%s", s.ID, s.ItemID)
		}
	}
	return nil
}

package shop

import (
	"path/filepath"
	"testing"

	"shudao.quest/internal/game/catalogs"
	"shudao.quest/internal/game/skills"
	"shudao.quest/internal/game/state"
	"shudao.quest/internal/game/tuning"
	"shudao.quest/internal/protocol"
)

func newTestShop(t *testing.T) (*System, *skills.System, *state.Player) {
	t.Helper()
	cats, err := catalogs.Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	tune := tuning.Defaults()
	sk := skills.NewSystem(cats)
	sys := NewSystem(cats, tune, sk)

	p := state.NewPlayer("p1", "测试者")
	p.Inventory.Add(state.InventoryItem{ID: "ore_001", Name: "灵矿石", Type: state.ItemTypeMaterial, Quantity: 490})
	return sys, sk, p
}

func TestBuy_DeductsPriceAndGrantsItem(t *testing.T) {
	sys, _, p := newTestShop(t)
	start := p.Inventory.Count("ore_001")

	res := sys.Buy("shop_herb_001", p)
	if !res.OK {
		t.Fatalf("Buy failed: %s", res.Message)
	}
	if got := p.Inventory.Count("ore_001"); got != start-3 {
		t.Fatalf("ore_001 = %d, want %d", got, start-3)
	}
	if got := p.Inventory.Count("herb_001"); got != 1 {
		t.Fatalf("herb_001 = %d, want 1", got)
	}
}

func TestBuy_UnknownItem(t *testing.T) {
	sys, _, p := newTestShop(t)
	res := sys.Buy("shop_nothing", p)
	if res.OK || res.Code != protocol.ErrItemNotFound {
		t.Fatalf("expected %s, got %+v", protocol.ErrItemNotFound, res)
	}
}

func TestBuy_InsufficientFundsMutatesNothing(t *testing.T) {
	sys, _, _ := newTestShop(t)
	pauper := state.NewPlayer("p2", "穷修士")
	pauper.Inventory = state.Inventory{{ID: "ore_001", Type: state.ItemTypeMaterial, Quantity: 2}}

	res := sys.Buy("shop_herb_001", pauper)
	if res.OK || res.Code != protocol.ErrInsufficientFunds {
		t.Fatalf("expected %s, got %+v", protocol.ErrInsufficientFunds, res)
	}
	if pauper.Inventory.Count("ore_001") != 2 || pauper.Inventory.Count("herb_001") != 0 {
		t.Fatalf("failed buy must not mutate: %+v", pauper.Inventory)
	}
}

func TestBuy_FiniteStockRunsOut(t *testing.T) {
	sys, _, p := newTestShop(t)

	// shop_treasure_001 has stock 1.
	if res := sys.Buy("shop_treasure_001", p); !res.OK {
		t.Fatalf("first buy failed: %s", res.Message)
	}
	res := sys.Buy("shop_treasure_001", p)
	if res.OK || res.Code != protocol.ErrOutOfStock {
		t.Fatalf("expected %s, got %+v", protocol.ErrOutOfStock, res)
	}

	for _, e := range sys.Items("special") {
		if e.ID == "shop_treasure_001" && e.Stock != 0 {
			t.Fatalf("stock = %d, want 0", e.Stock)
		}
	}
}

func TestBuy_UnlimitedStockNeverRunsOut(t *testing.T) {
	sys, _, p := newTestShop(t)
	for i := 0; i < 20; i++ {
		if res := sys.Buy("shop_herb_001", p); !res.OK {
			t.Fatalf("buy %d failed: %+v", i, res)
		}
	}
	if got := p.Inventory.Count("herb_001"); got != 20 {
		t.Fatalf("herb_001 = %d, want 20", got)
	}
}

func TestBuy_SkillPointCrystalCreditsPoints(t *testing.T) {
	sys, _, p := newTestShop(t)

	res := sys.Buy("shop_special_001", p)
	if !res.OK {
		t.Fatalf("Buy failed: %s", res.Message)
	}
	if p.SkillPoints != 1 {
		t.Fatalf("SkillPoints = %d, want 1", p.SkillPoints)
	}
	if p.Inventory.Count("special_001") != 0 {
		t.Fatalf("crystal must not enter the bag")
	}
}

func TestSell_HalfPriceFloorInCurrency(t *testing.T) {
	sys, _, p := newTestShop(t)
	p.Inventory.Add(state.InventoryItem{ID: "herb_001", Type: state.ItemTypeMaterial, Quantity: 4})
	start := p.Inventory.Count("ore_001")

	// herb_001 sells at floor(3/2)=1 each.
	res := sys.Sell("herb_001", 4, p)
	if !res.OK {
		t.Fatalf("Sell failed: %s", res.Message)
	}
	if got := p.Inventory.Count("ore_001"); got != start+4 {
		t.Fatalf("ore_001 = %d, want %d", got, start+4)
	}
	if p.Inventory.Count("herb_001") != 0 {
		t.Fatalf("sold herbs should be gone")
	}
}

func TestSell_InsufficientQuantity(t *testing.T) {
	sys, _, p := newTestShop(t)
	p.Inventory.Add(state.InventoryItem{ID: "herb_001", Type: state.ItemTypeMaterial, Quantity: 1})

	res := sys.Sell("herb_001", 2, p)
	if res.OK || res.Code != protocol.ErrInsufficientQuantity {
		t.Fatalf("expected %s, got %+v", protocol.ErrInsufficientQuantity, res)
	}
	if p.Inventory.Count("herb_001") != 1 {
		t.Fatalf("failed sell must not mutate")
	}
}

func TestSell_NotStockedIsNotSellable(t *testing.T) {
	sys, _, p := newTestShop(t)
	p.Inventory.Add(state.InventoryItem{ID: "pill_002", Type: state.ItemTypePill, Quantity: 1})

	res := sys.Sell("pill_002", 1, p)
	if res.OK || res.Code != protocol.ErrNotSellable {
		t.Fatalf("expected %s, got %+v", protocol.ErrNotSellable, res)
	}
}

func TestSellThenBuyBack_NeverProfits(t *testing.T) {
	sys, _, p := newTestShop(t)
	p.Inventory = state.Inventory{{ID: "herb_002", Type: state.ItemTypeMaterial, Quantity: 6}}

	if res := sys.Sell("herb_002", 6, p); !res.OK {
		t.Fatalf("Sell failed: %s", res.Message)
	}
	// Proceeds: 6 × floor(8/2) = 24 ore; a buy-back costs 8 each.
	bought := 0
	for {
		res := sys.Buy("shop_herb_002", p)
		if !res.OK {
			if res.Code != protocol.ErrInsufficientFunds {
				t.Fatalf("unexpected failure: %+v", res)
			}
			break
		}
		bought++
	}
	if bought >= 6 {
		t.Fatalf("bought back %d, must be fewer than 6", bought)
	}
}

func TestItems_CategoryFilter(t *testing.T) {
	sys, _, _ := newTestShop(t)

	if got := len(sys.Items(CategoryAll)); got != 8 {
		t.Fatalf("all = %d entries, want 8", got)
	}
	for _, e := range sys.Items("pills") {
		if e.Category != "pills" {
			t.Fatalf("category filter leaked %s", e.ID)
		}
	}
	if got := len(sys.Items("materials")); got != 4 {
		t.Fatalf("materials = %d entries, want 4", got)
	}
}

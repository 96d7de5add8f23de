package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"shudao.quest/internal/game/catalogs"
	"shudao.quest/internal/game/challenge"
	"shudao.quest/internal/game/crafting"
	"shudao.quest/internal/game/power"
	"shudao.quest/internal/game/shop"
	"shudao.quest/internal/game/skills"
	"shudao.quest/internal/game/state"
	"shudao.quest/internal/game/tuning"
)

// Headless smoke run of the progression core: stock up, craft, challenge,
// spend skill points, report combat power. Useful for eyeballing balance
// changes without a client.
func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[simulate] ", log.LstdFlags)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	tp := *tuningPath
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	sk := skills.NewSystem(cats)
	sh := shop.NewSystem(cats, tune, sk)
	cr := crafting.NewSystem(cats)
	ch := challenge.NewSystem(cats, tune, sk)
	pw := power.NewSystem(tune)

	p := state.NewPlayer(uuid.NewString(), "游历散修")
	// Fatten the pouch so the script can afford the market run.
	p.Inventory.Add(cats.Items.ByID["ore_001"].InventoryItem(200))

	for _, id := range []string{"shop_ore_002", "shop_ore_002", "shop_ore_002", "shop_essence_001", "shop_herb_001", "shop_herb_001", "shop_special_001"} {
		res := sh.Buy(id, p)
		logger.Printf("buy %-18s ok=%v %s", id, res.OK, res.Message)
	}

	if recipe, ok := cr.Recipe("recipe_sword"); ok {
		res := cr.Craft(recipe, &p.Inventory)
		logger.Printf("craft %-16s ok=%v %s", recipe.ID, res.OK, res.Message)
		if res.OK {
			p.Equip(recipe.ID)
		}
	}

	if res := sk.Unlock("skill_body", p); !res.OK {
		logger.Printf("unlock skill_body: %s", res.Message)
	}

	if res := ch.Start(p, 2, 0); !res.OK {
		logger.Fatalf("start challenge: %s", res.Message)
	}
	for i := 0; i < 12; i++ {
		ch.RecordAnswer(p, i%6 != 5) // ten right, two wrong
	}
	out := ch.Complete(p)
	logger.Printf("challenge ok=%v accuracy=%.0f%% exp=%d items=%v", out.OK, out.Accuracy, out.ExpGained, out.Items)

	score := pw.CombatPower(p)
	band := power.Level(score)
	logger.Printf("combat power %s (%s, tier %d)", power.Format(score), band.Name, band.Tier)

	spirit := power.Spirit{Name: "算术小妖", Topic: "两位数乘法", Difficulty: 2}
	logger.Printf("spirit %s power %d", spirit.Name, pw.SpiritPower(spirit))
}

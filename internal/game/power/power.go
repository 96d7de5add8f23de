package power

import (
	"fmt"
	"strings"

	"shudao.quest/internal/game/state"
	"shudao.quest/internal/game/tuning"
)

// System computes display power scores. Everything here is a pure read of a
// player or spirit snapshot; nothing is stored.
type System struct {
	tune tuning.Power
}

func NewSystem(tune tuning.Tuning) *System {
	return &System{tune: tune.Power}
}

// CombatPower folds a player's progression into one scalar: realm, lifetime
// experience, answer accuracy, best combo, held treasures and equipped gear.
func (s *System) CombatPower(p *state.Player) int {
	power := s.tune.Base
	power += p.Realm * s.tune.RealmWeight
	power += int(p.Exp / int64(s.tune.ExpDivisor))
	power += int(p.Accuracy / float64(s.tune.AccuracyDivisor))
	power += p.MaxCombo / s.tune.ComboDivisor

	for id, bonus := range s.tune.TreasureBonuses {
		if p.Inventory.Count(id) > 0 {
			power += bonus
		}
	}

	if w := p.Equipment.Weapon; w != nil && w.Stats != nil {
		power += w.Stats.Attack
	}
	if a := p.Equipment.Armor; a != nil && a.Stats != nil {
		power += a.Stats.Defense
	}
	return power
}

// Spirit is the scored view of a problem encounter.
type Spirit struct {
	Name       string `json:"name"`
	Topic      string `json:"topic"`
	Difficulty int    `json:"difficulty"`
}

// Topic keywords ordered most specific first; the first containment match
// sets the bonus.
var topicBonuses = []struct {
	keyword string
	bonus   int
}{
	{"函数", 100},
	{"几何", 80},
	{"方程", 60},
	{"不等式", 60},
	{"乘", 40},
	{"除", 40},
	{"加", 20},
	{"减", 20},
}

// SpiritPower scores an encounter from its difficulty and math topic.
func (s *System) SpiritPower(sp Spirit) int {
	power := s.tune.SpiritBase + sp.Difficulty*s.tune.SpiritDifficultyWeight
	for _, tb := range topicBonuses {
		if strings.Contains(sp.Topic, tb.keyword) {
			power += tb.bonus
			break
		}
	}
	return power
}

// Band is a named display tier for a power score.
type Band struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Tier  int    `json:"tier"`
}

// Bands are half-open [Min, next.Min); the last band is unbounded above.
var bands = []struct {
	min  int
	band Band
}{
	{0, Band{Name: "凡人", Color: "#9e9e9e", Tier: 1}},
	{200, Band{Name: "练气", Color: "#8bc34a", Tier: 2}},
	{500, Band{Name: "筑基", Color: "#03a9f4", Tier: 3}},
	{1000, Band{Name: "金丹", Color: "#ffc107", Tier: 4}},
	{2000, Band{Name: "元婴", Color: "#ff9800", Tier: 5}},
	{5000, Band{Name: "化神", Color: "#f44336", Tier: 6}},
	{10000, Band{Name: "渡劫", Color: "#9c27b0", Tier: 7}},
	{20000, Band{Name: "大乘", Color: "#ffd700", Tier: 8}},
}

// Level maps a power score onto its display band.
func Level(power int) Band {
	out := bands[0].band
	for _, b := range bands {
		if power >= b.min {
			out = b.band
		}
	}
	return out
}

// Format renders a score the way the UI shows it: 万 above ten thousand,
// 千 above one thousand, plain digits below.
func Format(power int) string {
	switch {
	case power >= 10000:
		return fmt.Sprintf("%.1f万", float64(power)/10000)
	case power >= 1000:
		return fmt.Sprintf("%.1f千", float64(power)/1000)
	default:
		return fmt.Sprintf("%d", power)
	}
}

package skills

import (
	"fmt"

	"shudao.quest/internal/game/catalogs"
	"shudao.quest/internal/game/state"
	"shudao.quest/internal/protocol"
)

// Skill effect kinds. max_health and max_mana are applied to the player the
// moment a level is bought; everything else is aggregated on demand through
// Effect.
const (
	EffectMaxHealth     = "max_health"
	EffectMaxMana       = "max_mana"
	EffectExpMultiplier = "exp_multiplier"
	EffectComboBonus    = "combo_bonus"
	EffectManaRegen     = "mana_regen"
	EffectAccuracyBoost = "accuracy_boost"
)

// System gates skill unlocks behind skill points and prerequisites. The
// catalog is fixed at construction; all progression lives on the player.
type System struct {
	catalog catalogs.SkillCatalog
}

func NewSystem(cats *catalogs.Catalogs) *System {
	return &System{catalog: cats.Skills}
}

// Unlock spends points to buy the next level of a skill. Check order: skill
// exists, below max level, points cover the cost, prerequisites unlocked.
// Nothing is mutated on failure.
func (s *System) Unlock(skillID string, p *state.Player) protocol.Result {
	def, ok := s.catalog.ByID[skillID]
	if !ok {
		return protocol.Fail(protocol.ErrSkillNotFound, fmt.Sprintf("未知技能: %s", skillID))
	}
	level := p.SkillLevel(skillID)
	if level >= def.MaxLevel {
		return protocol.Fail(protocol.ErrMaxLevelReached, fmt.Sprintf("%s 已达最高等级", def.Name))
	}
	if p.SkillPoints < def.Cost {
		return protocol.Fail(protocol.ErrNoSkillPoints, fmt.Sprintf("技能点不足，需要 %d 点", def.Cost))
	}
	for _, req := range def.Requirements {
		if p.SkillLevel(req) == 0 {
			reqName := req
			if reqDef, ok := s.catalog.ByID[req]; ok {
				reqName = reqDef.Name
			}
			return protocol.Fail(protocol.ErrPrereqsNotMet, fmt.Sprintf("需要先修习 %s", reqName))
		}
	}

	p.SkillPoints -= def.Cost
	raised := false
	for i := range p.UnlockedSkills {
		if p.UnlockedSkills[i].ID == skillID {
			p.UnlockedSkills[i].Level++
			raised = true
			break
		}
	}
	if !raised {
		p.UnlockedSkills = append(p.UnlockedSkills, state.UnlockedSkill{ID: skillID, Level: 1})
	}

	// Stat skills take effect immediately; one level's worth per unlock.
	switch def.Effect.Type {
	case EffectMaxHealth:
		p.MaxHealth += int(def.Effect.Value)
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
	case EffectMaxMana:
		p.MaxMana += int(def.Effect.Value)
		if p.Mana > p.MaxMana {
			p.Mana = p.MaxMana
		}
	}

	return protocol.Ok(fmt.Sprintf("%s 升至 %d 级", def.Name, level+1))
}

// Effect sums value×level over every unlocked skill whose effect kind
// matches. This is the aggregation contract the reward and power paths query.
func (s *System) Effect(effectType string, p *state.Player) float64 {
	total := 0.0
	for _, us := range p.UnlockedSkills {
		def, ok := s.catalog.ByID[us.ID]
		if !ok || def.Effect.Type != effectType {
			continue
		}
		total += def.Effect.Value * float64(us.Level)
	}
	return total
}

// GainPoints credits skill points. There is no ceiling.
func (s *System) GainPoints(p *state.Player, amount int) {
	if amount > 0 {
		p.SkillPoints += amount
	}
}

// Progress is the persisted slice of skill state. The catalog is re-seeded
// from config on load and never serialized.
type Progress struct {
	UnlockedSkills []state.UnlockedSkill `json:"unlockedSkills"`
	SkillPoints    int                   `json:"skillPoints"`
}

func Snapshot(p *state.Player) Progress {
	out := Progress{SkillPoints: p.SkillPoints}
	out.UnlockedSkills = append(out.UnlockedSkills, p.UnlockedSkills...)
	return out
}

func Restore(p *state.Player, prog Progress) {
	p.SkillPoints = prog.SkillPoints
	p.UnlockedSkills = append([]state.UnlockedSkill(nil), prog.UnlockedSkills...)
}

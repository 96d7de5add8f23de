package skills

import (
	"path/filepath"
	"testing"

	"shudao.quest/internal/game/catalogs"
	"shudao.quest/internal/game/state"
	"shudao.quest/internal/protocol"
)

func newTestSystem(t *testing.T) *System {
	t.Helper()
	cats, err := catalogs.Load(filepath.Join("..", "..", "..", "configs"))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return NewSystem(cats)
}

func TestUnlock_SpendsPointsAndRaisesLevel(t *testing.T) {
	sys := newTestSystem(t)
	p := state.NewPlayer("p1", "测试者")
	sys.GainPoints(p, 3)

	if res := sys.Unlock("skill_body", p); !res.OK {
		t.Fatalf("Unlock failed: %s", res.Message)
	}
	if p.SkillPoints != 2 {
		t.Fatalf("SkillPoints = %d, want 2", p.SkillPoints)
	}
	if got := p.SkillLevel("skill_body"); got != 1 {
		t.Fatalf("level = %d, want 1", got)
	}

	if res := sys.Unlock("skill_body", p); !res.OK {
		t.Fatalf("second Unlock failed: %s", res.Message)
	}
	if got := p.SkillLevel("skill_body"); got != 2 {
		t.Fatalf("level = %d, want 2", got)
	}
}

func TestUnlock_StatSkillsApplyEagerly(t *testing.T) {
	sys := newTestSystem(t)
	p := state.NewPlayer("p1", "测试者")
	sys.GainPoints(p, 2)

	baseMaxHealth := p.MaxHealth
	if res := sys.Unlock("skill_body", p); !res.OK {
		t.Fatalf("Unlock failed: %s", res.Message)
	}
	if p.MaxHealth != baseMaxHealth+20 {
		t.Fatalf("MaxHealth = %d, want %d", p.MaxHealth, baseMaxHealth+20)
	}

	baseMaxMana := p.MaxMana
	if res := sys.Unlock("skill_spirit", p); !res.OK {
		t.Fatalf("Unlock failed: %s", res.Message)
	}
	if p.MaxMana != baseMaxMana+15 {
		t.Fatalf("MaxMana = %d, want %d", p.MaxMana, baseMaxMana+15)
	}
}

func TestUnlock_FailureModes(t *testing.T) {
	sys := newTestSystem(t)
	p := state.NewPlayer("p1", "测试者")

	if res := sys.Unlock("skill_nothing", p); res.Code != protocol.ErrSkillNotFound {
		t.Fatalf("expected %s, got %+v", protocol.ErrSkillNotFound, res)
	}

	// No points at all.
	if res := sys.Unlock("skill_body", p); res.Code != protocol.ErrNoSkillPoints {
		t.Fatalf("expected %s, got %+v", protocol.ErrNoSkillPoints, res)
	}

	// Prerequisite (skill_insight requires skill_spirit).
	sys.GainPoints(p, 10)
	if res := sys.Unlock("skill_insight", p); res.Code != protocol.ErrPrereqsNotMet {
		t.Fatalf("expected %s, got %+v", protocol.ErrPrereqsNotMet, res)
	}
	if p.SkillPoints != 10 {
		t.Fatalf("failed unlock must not spend points, have %d", p.SkillPoints)
	}
}

func TestUnlock_MaxLevelBound(t *testing.T) {
	sys := newTestSystem(t)
	p := state.NewPlayer("p1", "测试者")
	sys.GainPoints(p, 100)

	// skill_focus maxes at level 1 and requires the insight chain.
	for _, id := range []string{"skill_spirit", "skill_insight", "skill_focus"} {
		if res := sys.Unlock(id, p); !res.OK {
			t.Fatalf("Unlock %s failed: %s", id, res.Message)
		}
	}
	res := sys.Unlock("skill_focus", p)
	if res.OK || res.Code != protocol.ErrMaxLevelReached {
		t.Fatalf("expected %s, got %+v", protocol.ErrMaxLevelReached, res)
	}
	if got := p.SkillLevel("skill_focus"); got != 1 {
		t.Fatalf("level = %d, must never exceed maxLevel 1", got)
	}
}

func TestUnlock_PointsNeverNegative(t *testing.T) {
	sys := newTestSystem(t)
	p := state.NewPlayer("p1", "测试者")
	sys.GainPoints(p, 1)

	// skill_insight costs 2.
	sys.Unlock("skill_spirit", p) // spends the single point
	if res := sys.Unlock("skill_insight", p); res.OK {
		t.Fatalf("unlock without points must fail")
	}
	if p.SkillPoints < 0 {
		t.Fatalf("SkillPoints = %d, must never go negative", p.SkillPoints)
	}
}

func TestEffect_SumsValueTimesLevel(t *testing.T) {
	sys := newTestSystem(t)
	p := state.NewPlayer("p1", "测试者")
	sys.GainPoints(p, 20)

	for i := 0; i < 3; i++ {
		if res := sys.Unlock("skill_body", p); !res.OK {
			t.Fatalf("Unlock failed: %s", res.Message)
		}
	}
	if got := sys.Effect(EffectMaxHealth, p); got != 60 {
		t.Fatalf("Effect(max_health) = %v, want 60", got)
	}

	sys.Unlock("skill_spirit", p)
	sys.Unlock("skill_insight", p)
	sys.Unlock("skill_insight", p)
	if got := sys.Effect(EffectExpMultiplier, p); got < 0.199 || got > 0.201 {
		t.Fatalf("Effect(exp_multiplier) = %v, want 0.2", got)
	}

	if got := sys.Effect("no_such_effect", p); got != 0 {
		t.Fatalf("Effect(unknown) = %v, want 0", got)
	}
}

func TestSnapshotRestore_RoundTrip(t *testing.T) {
	sys := newTestSystem(t)
	p := state.NewPlayer("p1", "测试者")
	sys.GainPoints(p, 5)
	sys.Unlock("skill_body", p)
	sys.Unlock("skill_spirit", p)

	prog := Snapshot(p)

	fresh := state.NewPlayer("p1", "测试者")
	Restore(fresh, prog)

	if fresh.SkillPoints != p.SkillPoints {
		t.Fatalf("SkillPoints = %d, want %d", fresh.SkillPoints, p.SkillPoints)
	}
	if fresh.SkillLevel("skill_body") != 1 || fresh.SkillLevel("skill_spirit") != 1 {
		t.Fatalf("restored levels wrong: %+v", fresh.UnlockedSkills)
	}
	if got := sys.Effect(EffectMaxHealth, fresh); got != 20 {
		t.Fatalf("Effect after restore = %v, want 20", got)
	}
}

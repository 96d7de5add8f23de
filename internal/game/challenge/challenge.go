package challenge

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"shudao.quest/internal/game/catalogs"
	"shudao.quest/internal/game/skills"
	"shudao.quest/internal/game/state"
	"shudao.quest/internal/game/tuning"
	"shudao.quest/internal/protocol"
)

// System runs timed answer sessions. The active session lives on the player
// (so a save can carry it); the system itself holds only catalogs, tuning
// and the clock.
type System struct {
	items  catalogs.ItemCatalog
	tune   tuning.Challenge
	skills *skills.System

	now func() time.Time
}

func NewSystem(cats *catalogs.Catalogs, tune tuning.Tuning, sk *skills.System) *System {
	return &System{
		items:  cats.Items,
		tune:   tune.Challenge,
		skills: sk,
		now:    time.Now,
	}
}

// Start opens a session. A player with a session already running must
// complete or cancel it first; there is no silent overwrite.
func (s *System) Start(p *state.Player, difficulty, timeLimitSec int) protocol.Result {
	if p.ActiveChallenge != nil {
		return protocol.Fail(protocol.ErrChallengeActive, "已有进行中的挑战")
	}
	if timeLimitSec <= 0 {
		timeLimitSec = s.tune.DefaultTimeLimitSec
	}
	p.ActiveChallenge = &state.Challenge{
		ID:           uuid.NewString(),
		Difficulty:   difficulty,
		TimeLimitSec: timeLimitSec,
		StartTime:    s.now(),
	}
	return protocol.Ok(fmt.Sprintf("挑战开始，限时 %d 秒", timeLimitSec))
}

// RecordAnswer tallies one answer. No-op outside a session. A correct answer
// counts as one solved problem.
func (s *System) RecordAnswer(p *state.Player, correct bool) {
	c := p.ActiveChallenge
	if c == nil {
		return
	}
	c.TotalAnswers++
	if correct {
		c.CorrectAnswers++
		c.ProblemsSolved++
	}
}

// Remaining returns the time left in the session, clamped at zero.
func (s *System) Remaining(p *state.Player) time.Duration {
	c := p.ActiveChallenge
	if c == nil {
		return 0
	}
	limit := time.Duration(c.TimeLimitSec) * time.Second
	left := limit - s.now().Sub(c.StartTime)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the session's clock has run out. The session stays
// open; completion after expiry simply earns no time bonus.
func (s *System) Expired(p *state.Player) bool {
	return p.ActiveChallenge != nil && s.Remaining(p) <= 0
}

// Outcome reports a completed session.
type Outcome struct {
	protocol.Result
	Accuracy       float64  `json:"accuracy"`
	ProblemsSolved int      `json:"problemsSolved"`
	ExpGained      int      `json:"expGained"`
	Items          []string `json:"items,omitempty"`
}

// Complete settles the session: exp from solved problems, an accuracy share,
// a time bonus, threshold-gated item drops, then a history entry. The session
// slot is cleared whatever the score.
func (s *System) Complete(p *state.Player) Outcome {
	c := p.ActiveChallenge
	if c == nil {
		return Outcome{Result: protocol.Fail(protocol.ErrNoActiveChallenge, "没有进行中的挑战")}
	}

	accuracy := 0.0
	if c.TotalAnswers > 0 {
		accuracy = float64(c.CorrectAnswers) / float64(c.TotalAnswers) * 100
	}

	baseExp := c.ProblemsSolved * s.tune.ExpPerProblem
	accuracyBonus := int(math.Floor(float64(baseExp) * accuracy / 100))

	remaining := s.Remaining(p)
	limit := time.Duration(c.TimeLimitSec) * time.Second
	timeBonus := 0
	switch {
	case remaining*2 > limit:
		timeBonus = s.tune.TimeBonusFast
	case remaining > 0:
		timeBonus = s.tune.TimeBonusAny
	}

	exp := baseExp + accuracyBonus + timeBonus
	if mult := s.skills.Effect(skills.EffectExpMultiplier, p); mult > 0 {
		exp += int(math.Floor(float64(exp) * mult))
	}

	var items []string
	if accuracy >= s.tune.AccuracyItemThreshold && c.ProblemsSolved >= s.tune.AccuracyItemMinSolved {
		items = append(items, s.tune.AccuracyItemID)
	}
	if c.ProblemsSolved >= s.tune.VolumeItemThreshold {
		items = append(items, s.tune.VolumeItemID)
	}

	p.GainExp(int64(exp))
	for _, id := range items {
		if def, ok := s.items.ByID[id]; ok {
			p.Inventory.Add(def.InventoryItem(1))
		}
	}

	record := state.ChallengeRecord{
		ID:             c.ID,
		Difficulty:     c.Difficulty,
		Accuracy:       accuracy,
		ProblemsSolved: c.ProblemsSolved,
		ExpGained:      exp,
		Items:          items,
		CompletedAt:    s.now(),
	}
	p.ChallengeHistory = append(p.ChallengeHistory, record)
	if over := len(p.ChallengeHistory) - s.tune.HistoryPersist; over > 0 {
		p.ChallengeHistory = p.ChallengeHistory[over:]
	}
	p.ActiveChallenge = nil

	return Outcome{
		Result:         protocol.Ok(fmt.Sprintf("挑战完成，获得 %d 修为", exp)),
		Accuracy:       accuracy,
		ProblemsSolved: record.ProblemsSolved,
		ExpGained:      exp,
		Items:          items,
	}
}

// Cancel discards any session in progress. Nothing is recorded.
func (s *System) Cancel(p *state.Player) {
	p.ActiveChallenge = nil
}

// History returns the most recent records, newest last, capped for display.
func (s *System) History(p *state.Player) []state.ChallengeRecord {
	h := p.ChallengeHistory
	if len(h) > s.tune.HistoryDisplay {
		h = h[len(h)-s.tune.HistoryDisplay:]
	}
	return append([]state.ChallengeRecord(nil), h...)
}

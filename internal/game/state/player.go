package state

import "time"

// UnlockedSkill records a skill the player has invested points into.
type UnlockedSkill struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// Equipment holds the currently worn weapon and armor. Entries here are
// copies of the forged items, removed from the bag while equipped.
type Equipment struct {
	Weapon *InventoryItem `json:"weapon,omitempty"`
	Armor  *InventoryItem `json:"armor,omitempty"`
}

// Challenge is an in-flight timed session. It lives on the player so that an
// interrupted save can resume it.
type Challenge struct {
	ID             string    `json:"id"`
	Difficulty     int       `json:"difficulty"`
	TimeLimitSec   int       `json:"timeLimit"`
	StartTime      time.Time `json:"startTime"`
	ProblemsSolved int       `json:"problemsSolved"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalAnswers   int       `json:"totalAnswers"`
}

// ChallengeRecord is the retained snapshot of a completed session.
type ChallengeRecord struct {
	ID             string    `json:"id"`
	Difficulty     int       `json:"difficulty"`
	Accuracy       float64   `json:"accuracy"`
	ProblemsSolved int       `json:"problemsSolved"`
	ExpGained      int       `json:"expGained"`
	Items          []string  `json:"items,omitempty"`
	CompletedAt    time.Time `json:"completedAt"`
}

// Player is the mutable session state every system operates on. Systems never
// own a Player; they receive a reference and mutate it in place.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	Realm int   `json:"realm"`
	Exp   int64 `json:"exp"`

	Health    int `json:"health"`
	MaxHealth int `json:"maxHealth"`
	Mana      int `json:"mana"`
	MaxMana   int `json:"maxMana"`

	// Lifetime answer accuracy percentage and best combo, fed by the combat
	// scenes and read by the power score.
	Accuracy float64 `json:"accuracy"`
	MaxCombo int     `json:"maxCombo"`

	// Temporary accuracy bonus from pills or the active skill; consumed by
	// the problem scenes.
	AccuracyBoost int `json:"accuracyBoost,omitempty"`

	Inventory Inventory `json:"inventory"`
	Equipment Equipment `json:"equipment"`

	UnlockedSkills []UnlockedSkill `json:"unlockedSkills"`
	SkillPoints    int             `json:"skillPoints"`

	ActiveChallenge  *Challenge        `json:"activeChallenge,omitempty"`
	ChallengeHistory []ChallengeRecord `json:"challengeHistory,omitempty"`
}

// NewPlayer returns a fresh level-one cultivator with the starter pouch.
func NewPlayer(id, name string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Realm:     1,
		Health:    100,
		MaxHealth: 100,
		Mana:      50,
		MaxMana:   50,
		Accuracy:  0,
		Inventory: Inventory{
			{ID: "ore_001", Name: "灵矿石", Type: ItemTypeMaterial, Quantity: 10, Value: 1},
		},
		// Empty, not nil: the save contract serializes these as arrays.
		UnlockedSkills: []UnlockedSkill{},
	}
}

// GainExp adds experience. Realm advancement is driven by the zone scenes,
// not here.
func (p *Player) GainExp(amount int64) {
	if amount > 0 {
		p.Exp += amount
	}
}

// AddHealth adjusts current health, clamped to [0, MaxHealth].
func (p *Player) AddHealth(delta int) {
	p.Health += delta
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	if p.Health < 0 {
		p.Health = 0
	}
}

// AddMana adjusts current mana, clamped to [0, MaxMana].
func (p *Player) AddMana(delta int) {
	p.Mana += delta
	if p.Mana > p.MaxMana {
		p.Mana = p.MaxMana
	}
	if p.Mana < 0 {
		p.Mana = 0
	}
}

// Equip moves one forged piece from the bag into its slot. A previously
// equipped piece goes back into the bag. Returns false when the bag has no
// such item or it is not equippable.
func (p *Player) Equip(itemID string) bool {
	entry := p.Inventory.Find(itemID)
	if entry == nil {
		return false
	}
	if entry.Type != ItemTypeWeapon && entry.Type != ItemTypeArmor {
		return false
	}
	piece := *entry
	piece.Quantity = 1
	p.Inventory.Remove(itemID, 1)

	var slot **InventoryItem
	if piece.Type == ItemTypeWeapon {
		slot = &p.Equipment.Weapon
	} else {
		slot = &p.Equipment.Armor
	}
	if prev := *slot; prev != nil {
		p.Inventory.Add(*prev)
	}
	*slot = &piece
	return true
}

// SkillLevel returns the unlocked level of a skill, 0 when locked.
func (p *Player) SkillLevel(skillID string) int {
	for _, s := range p.UnlockedSkills {
		if s.ID == skillID {
			return s.Level
		}
	}
	return 0
}

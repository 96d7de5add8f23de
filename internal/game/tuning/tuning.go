package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries every balance constant read by the gameplay systems. The
// zero value is unusable; start from Defaults or a loaded file.
type Tuning struct {
	Challenge Challenge `yaml:"challenge"`
	Shop      Shop      `yaml:"shop"`
	Power     Power     `yaml:"power"`
}

type Challenge struct {
	DefaultTimeLimitSec int `yaml:"default_time_limit_sec"`
	ExpPerProblem       int `yaml:"exp_per_problem"`
	TimeBonusFast       int `yaml:"time_bonus_fast"`
	TimeBonusAny        int `yaml:"time_bonus_any"`

	AccuracyItemThreshold float64 `yaml:"accuracy_item_threshold"`
	AccuracyItemMinSolved int     `yaml:"accuracy_item_min_solved"`
	AccuracyItemID        string  `yaml:"accuracy_item_id"`
	VolumeItemThreshold   int     `yaml:"volume_item_threshold"`
	VolumeItemID          string  `yaml:"volume_item_id"`

	HistoryDisplay int `yaml:"history_display"`
	HistoryPersist int `yaml:"history_persist"`
}

type Shop struct {
	CurrencyItem string `yaml:"currency_item"`
	SellDivisor  int    `yaml:"sell_divisor"`
}

type Power struct {
	Base            int `yaml:"base"`
	RealmWeight     int `yaml:"realm_weight"`
	ExpDivisor      int `yaml:"exp_divisor"`
	AccuracyDivisor int `yaml:"accuracy_divisor"`
	ComboDivisor    int `yaml:"combo_divisor"`

	SpiritBase             int `yaml:"spirit_base"`
	SpiritDifficultyWeight int `yaml:"spirit_difficulty_weight"`

	TreasureBonuses map[string]int `yaml:"treasure_bonuses"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func Defaults() Tuning {
	return Tuning{
		Challenge: Challenge{
			DefaultTimeLimitSec:   60,
			ExpPerProblem:         15,
			TimeBonusFast:         50,
			TimeBonusAny:          20,
			AccuracyItemThreshold: 90,
			AccuracyItemMinSolved: 5,
			AccuracyItemID:        "herb_002",
			VolumeItemThreshold:   10,
			VolumeItemID:          "pill_001",
			HistoryDisplay:        10,
			HistoryPersist:        20,
		},
		Shop: Shop{
			CurrencyItem: "ore_001",
			SellDivisor:  2,
		},
		Power: Power{
			Base:                   100,
			RealmWeight:            50,
			ExpDivisor:             10,
			AccuracyDivisor:        2,
			ComboDivisor:           5,
			SpiritBase:             50,
			SpiritDifficultyWeight: 30,
			TreasureBonuses: map[string]int{
				"treasure_001": 30,
				"treasure_002": 25,
				"treasure_003": 20,
			},
		},
	}
}

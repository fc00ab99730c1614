package domain

import "time"

// Rules 数值规则，运行时从配置热更新。
type Rules struct {
	WallBonusPerLevel float64
	LossExponent      float64

	DefaultLoyaltyDecrement float64
	// LoyaltyDecrement 按 chief 兵种覆盖每名 chief 扣的忠诚度。
	LoyaltyDecrement     map[UnitType]float64
	LoyaltyAfterConquest float64
	LoyaltyRegenPerHour  float64

	ScoutDegradeRatio float64
	ScoutBlockRatio   float64

	SettlersRequired int
	SettleResources  Resources

	StarvationMaxKillRatio float64
	AttackLoots            bool
	WallDamagePerSiege     float64
	MinTravel              time.Duration
	DefaultUpgradeSlots    int
}

func DefaultRules() Rules {
	return Rules{
		WallBonusPerLevel:       0.03,
		LossExponent:            1.5,
		DefaultLoyaltyDecrement: 30,
		LoyaltyAfterConquest:    25,
		LoyaltyRegenPerHour:     1,
		ScoutDegradeRatio:       0.5,
		ScoutBlockRatio:         1.0,
		SettlersRequired:        3,
		SettleResources:         Resources{Wood: 750, Clay: 750, Iron: 750, Crop: 750},
		StarvationMaxKillRatio:  0.25,
		WallDamagePerSiege:      0.1,
		MinTravel:               time.Second,
		DefaultUpgradeSlots:     1,
	}
}

// LoyaltyDecrementFor 某 chief 兵种每名扣减的忠诚度。
func (r Rules) LoyaltyDecrementFor(t UnitType) float64 {
	if v, ok := r.LoyaltyDecrement[t]; ok {
		return v
	}
	return r.DefaultLoyaltyDecrement
}

// Bonus 英雄/部族加成倍率，1 表示无加成。
type Bonus struct {
	Attack  float64
	Defense float64
	Speed   float64
}

func NoBonus() Bonus {
	return Bonus{Attack: 1, Defense: 1, Speed: 1}
}

// Normalize 未配置的倍率按 1 处理。
func (b Bonus) Normalize() Bonus {
	if b.Attack <= 0 {
		b.Attack = 1
	}
	if b.Defense <= 0 {
		b.Defense = 1
	}
	if b.Speed <= 0 {
		b.Speed = 1
	}
	return b
}

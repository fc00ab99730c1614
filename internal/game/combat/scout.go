package combat

import (
	"math/rand"

	"Hegemony/internal/game/domain"
)

type ScoutResult struct {
	Level domain.ScoutLevel
	// Ratio 反侦察力 / 侦察力。
	Ratio    float64
	Attacker domain.Participant
}

// ScoutingPower 侦察力，按 Scouting 属性计算。
func (r *Resolver) ScoutingPower(g Group, defending bool) float64 {
	b := g.Bonus.Normalize()
	mul := b.Attack
	if defending {
		mul = b.Defense
	}
	total := 0.0
	for _, t := range g.Troops.Types() {
		if s, ok := r.stats.Unit(t); ok {
			total += float64(g.Troops[t]) * s.Scouting * mul
		}
	}
	return total
}

// Scout 侦察结算：比值达到 block 阈值时全灭且一无所获；达到 degrade 阈值只看到驻军；否则完整情报。
// 未被拦截时侦察兵按 ratio^exp 的比例损失。
func (r *Resolver) Scout(attacker Group, defenders []Group, seed int64) ScoutResult {
	power := r.ScoutingPower(attacker, false)
	counter := 0.0
	for _, g := range defenders {
		counter += r.ScoutingPower(g, true)
	}

	res := ScoutResult{}
	switch {
	case power <= 0:
		res.Level = domain.ScoutBlocked
	case counter <= 0:
		res.Level = domain.ScoutFull
	default:
		res.Ratio = counter / power
		switch {
		case res.Ratio >= r.rules.ScoutBlockRatio:
			res.Level = domain.ScoutBlocked
		case res.Ratio >= r.rules.ScoutDegradeRatio:
			res.Level = domain.ScoutDegraded
		default:
			res.Level = domain.ScoutFull
		}
	}

	ratio := 1.0
	if res.Level != domain.ScoutBlocked {
		ratio = lossRatio(counter, power, r.rules.LossExponent)
	}
	res.Attacker = applyLosses(attacker, ratio, rand.New(rand.NewSource(seed)))
	return res
}

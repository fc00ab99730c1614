// Package combat 战斗、掠夺、侦察的纯计算。
//
// 不读全局状态，不做 IO；同样的输入（含 seed）永远得到同样的结果。
package combat

import (
	"math"
	"math/rand"
	"time"

	"Hegemony/internal/game/domain"
)

// Group 一个参战分组：进攻方、守军驻军、或某支驻防军队，各自带所属玩家的加成。
type Group struct {
	Role         domain.ParticipantRole
	OwnerID      domain.PlayerID
	SettlementID domain.SettlementID
	ArmyID       domain.ArmyID
	Troops       domain.Troops
	Bonus        domain.Bonus
}

// Battle 一次战斗的输入快照。Defenders 的顺序就是伤亡结算顺序：驻军在前，驻防军队按 id 升序。
type Battle struct {
	Attacker  Group
	Defenders []Group
	WallLevel int
	Seed      int64
}

type Result struct {
	AttackerWon  bool
	AttackPower  float64
	DefensePower float64
	// WinnerLossRatio 胜方按比例损失的系数，败方恒为 1。
	WinnerLossRatio float64
	Attacker        domain.Participant
	Defenders       []domain.Participant
}

// Resolver 持有兵种表和规则，本身无状态，可并发使用。
type Resolver struct {
	stats domain.StatsLookup
	rules domain.Rules
}

func NewResolver(stats domain.StatsLookup, rules domain.Rules) *Resolver {
	return &Resolver{stats: stats, rules: rules}
}

// Seed 由军队 id 和到达时间派生随机种子，重放同一次到达得到同一个结果。
func Seed(army domain.ArmyID, arrivesAt time.Time) int64 {
	return int64(army)*1_000_003 ^ arrivesAt.UnixMilli()
}

// AttackPower 返回步兵口径和骑兵口径的攻击力。
func (r *Resolver) AttackPower(g Group) (infantry, cavalry float64) {
	b := g.Bonus.Normalize()
	for _, t := range g.Troops.Types() {
		s, ok := r.stats.Unit(t)
		if !ok {
			continue
		}
		p := float64(g.Troops[t]) * s.Attack * b.Attack
		if s.AttacksAsCavalry() {
			cavalry += p
		} else {
			infantry += p
		}
	}
	return infantry, cavalry
}

// DefensePower 按进攻方步/骑攻击占比加权两种防御，再乘城墙加成。
func (r *Resolver) DefensePower(defenders []Group, wallLevel int, infShare, cavShare float64) float64 {
	total := 0.0
	for _, g := range defenders {
		b := g.Bonus.Normalize()
		for _, t := range g.Troops.Types() {
			s, ok := r.stats.Unit(t)
			if !ok {
				continue
			}
			per := s.DefenseInfantry*infShare + s.DefenseCavalry*cavShare
			total += float64(g.Troops[t]) * per * b.Defense
		}
	}
	if wallLevel > 0 {
		total *= math.Pow(1+r.rules.WallBonusPerLevel, float64(wallLevel))
	}
	return total
}

// Fight 结算一场战斗。进攻力严格大于防御力、或防御力为 0 时进攻方胜。
func (r *Resolver) Fight(b Battle) Result {
	inf, cav := r.AttackPower(b.Attacker)
	attack := inf + cav
	infShare, cavShare := 1.0, 0.0
	if attack > 0 {
		infShare, cavShare = inf/attack, cav/attack
	}
	defense := r.DefensePower(b.Defenders, b.WallLevel, infShare, cavShare)

	res := Result{AttackPower: attack, DefensePower: defense}
	res.AttackerWon = attack > defense || defense == 0

	var winner, loser float64
	if res.AttackerWon {
		winner, loser = attack, defense
	} else {
		winner, loser = defense, attack
	}
	res.WinnerLossRatio = lossRatio(loser, winner, r.rules.LossExponent)

	attackerRatio, defenderRatio := 1.0, res.WinnerLossRatio
	if res.AttackerWon {
		attackerRatio, defenderRatio = res.WinnerLossRatio, 1.0
	}

	rng := rand.New(rand.NewSource(b.Seed))
	res.Attacker = applyLosses(b.Attacker, attackerRatio, rng)
	res.Defenders = make([]domain.Participant, 0, len(b.Defenders))
	for _, g := range b.Defenders {
		res.Defenders = append(res.Defenders, applyLosses(g, defenderRatio, rng))
	}
	return res
}

func lossRatio(loser, winner, exp float64) float64 {
	if winner <= 0 || loser <= 0 {
		return 0
	}
	if exp <= 0 {
		exp = 1
	}
	return clamp01(math.Pow(loser/winner, exp))
}

// applyLosses 按比例扣兵，小数部分按概率取整，期望值等于公式值。
func applyLosses(g Group, ratio float64, rng *rand.Rand) domain.Participant {
	p := domain.Participant{
		Role:         g.Role,
		OwnerID:      g.OwnerID,
		SettlementID: g.SettlementID,
		ArmyID:       g.ArmyID,
		Committed:    g.Troops.Clone(),
		Lost:         domain.Troops{},
		Survived:     domain.Troops{},
	}
	for _, t := range g.Troops.Types() {
		n := g.Troops[t]
		lost := roundLoss(n, ratio, rng)
		if lost > 0 {
			p.Lost[t] = lost
		}
		if n-lost > 0 {
			p.Survived[t] = n - lost
		}
	}
	return p
}

func roundLoss(n int, ratio float64, rng *rand.Rand) int {
	switch {
	case ratio <= 0 || n <= 0:
		return 0
	case ratio >= 1:
		return n
	}
	exact := float64(n) * ratio
	lost := int(math.Floor(exact))
	if frac := exact - float64(lost); frac > 0 && rng.Float64() < frac {
		lost++
	}
	if lost > n {
		lost = n
	}
	return lost
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

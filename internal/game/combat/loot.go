package combat

import (
	"math"

	"Hegemony/internal/game/domain"
)

// Loot 掠夺量 = min(幸存部队负重, 可掠夺库存总量)，按各资源可掠夺量的比例分摊并向下取整。
// 每种资源分到的量都不超过它的可掠夺量。
func (r *Resolver) Loot(survivors domain.Troops, unprotected domain.Resources) domain.Resources {
	unprotected = unprotected.Floor0()
	capacity := survivors.Carry(r.stats)
	available := unprotected.Total()
	if capacity <= 0 || available <= 0 {
		return domain.Resources{}
	}
	total := math.Min(capacity, available)
	var out domain.Resources
	for _, k := range domain.ResourceKinds {
		u := unprotected.Get(k)
		share := math.Floor(u * total / available)
		out.Set(k, math.Min(share, u))
	}
	return out
}

// WallDamage 胜利后幸存攻城器械拆掉的城墙等级。
func (r *Resolver) WallDamage(survivors domain.Troops) int {
	siege := survivors.CountClass(r.stats, domain.ClassSiege)
	if siege <= 0 || r.rules.WallDamagePerSiege <= 0 {
		return 0
	}
	return int(math.Floor(float64(siege) * r.rules.WallDamagePerSiege))
}

// LoyaltyDamage 幸存 chief 造成的忠诚度扣减，同时返回被消耗掉的 chief。
func (r *Resolver) LoyaltyDamage(survivors domain.Troops) (float64, domain.Troops) {
	chiefs := domain.Troops{}
	total := 0.0
	for _, t := range survivors.Types() {
		s, ok := r.stats.Unit(t)
		if !ok || s.Class != domain.ClassChief {
			continue
		}
		chiefs[t] = survivors[t]
		total += float64(survivors[t]) * r.rules.LoyaltyDecrementFor(t)
	}
	return total, chiefs
}

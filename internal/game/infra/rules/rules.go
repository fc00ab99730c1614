// Package rules 把 serverconfig 的 rules 段转换成 domain.Rules，未配置的项取默认值。
package rules

import (
	"time"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/shared/serverconfig"
)

// Source 每次 Rules() 都重新读配置，配置文件热更新后立即生效。
type Source struct {
	current func() serverconfig.RulesConfig
}

var _ port.RulesSource = (*Source)(nil)

func NewSource(current func() serverconfig.RulesConfig) *Source {
	if current == nil {
		current = serverconfig.CurrentRules
	}
	return &Source{current: current}
}

func (s *Source) Rules() domain.Rules {
	return FromConfig(s.current())
}

func FromConfig(c serverconfig.RulesConfig) domain.Rules {
	r := domain.DefaultRules()
	setPositive(&r.WallBonusPerLevel, c.WallBonusPerLevel)
	setPositive(&r.LossExponent, c.LossExponent)
	setPositive(&r.DefaultLoyaltyDecrement, c.DefaultLoyaltyDecrement)
	setPositive(&r.LoyaltyAfterConquest, c.LoyaltyAfterConquest)
	setPositive(&r.ScoutDegradeRatio, c.ScoutDegradeRatio)
	setPositive(&r.ScoutBlockRatio, c.ScoutBlockRatio)
	setPositive(&r.StarvationMaxKillRatio, c.StarvationMaxKillRatio)
	setPositive(&r.WallDamagePerSiege, c.WallDamagePerSiege)
	// 0 是合法值（关闭忠诚度恢复），只忽略负数
	if c.LoyaltyRegenPerHour >= 0 {
		r.LoyaltyRegenPerHour = c.LoyaltyRegenPerHour
	}
	if c.SettlersRequired > 0 {
		r.SettlersRequired = c.SettlersRequired
	}
	if c.MinTravelSec > 0 {
		r.MinTravel = time.Duration(c.MinTravelSec) * time.Second
	}
	if c.DefaultUpgradeSlots > 0 {
		r.DefaultUpgradeSlots = c.DefaultUpgradeSlots
	}
	r.AttackLoots = c.AttackLoots
	if len(c.LoyaltyDecrement) > 0 {
		r.LoyaltyDecrement = make(map[domain.UnitType]float64, len(c.LoyaltyDecrement))
		for k, v := range c.LoyaltyDecrement {
			r.LoyaltyDecrement[domain.UnitType(k)] = v
		}
	}
	if len(c.SettleResources) > 0 {
		var res domain.Resources
		for _, k := range domain.ResourceKinds {
			res.Set(k, c.SettleResources[string(k)])
		}
		r.SettleResources = res
	}
	// 拦截阈值不能低于降级阈值
	if r.ScoutBlockRatio < r.ScoutDegradeRatio {
		r.ScoutBlockRatio = r.ScoutDegradeRatio
	}
	if r.StarvationMaxKillRatio > 1 {
		r.StarvationMaxKillRatio = 1
	}
	return r
}

func setPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

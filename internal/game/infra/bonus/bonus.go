// Package bonus 英雄/部族加成。当前来源是 rules.bonus 配置段，按玩家 id 覆盖。
package bonus

import (
	"context"
	"strconv"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/shared/serverconfig"
)

// ConfigProvider 每次调用都读最新一次热更新后的配置。
type ConfigProvider struct {
	current func() serverconfig.RulesConfig
}

var _ port.BonusProvider = (*ConfigProvider)(nil)

func NewConfigProvider(current func() serverconfig.RulesConfig) *ConfigProvider {
	if current == nil {
		current = serverconfig.CurrentRules
	}
	return &ConfigProvider{current: current}
}

func (p *ConfigProvider) Bonus(ctx context.Context, player domain.PlayerID) domain.Bonus {
	cfg, ok := p.current().Bonus[strconv.FormatInt(int64(player), 10)]
	if !ok {
		return domain.NoBonus()
	}
	return domain.Bonus{Attack: cfg.Attack, Defense: cfg.Defense, Speed: cfg.Speed}.Normalize()
}

package port

import (
	"context"
	"time"

	"Hegemony/internal/game/domain"
)

// Catalog 静态兵种表 + 建筑表，只读。
type Catalog interface {
	domain.StatsLookup
	domain.BuildingLookup
}

// BonusProvider 英雄/部族加成。
type BonusProvider interface {
	Bonus(ctx context.Context, player domain.PlayerID) domain.Bonus
}

// TerrainProvider 地图：边界 + 按地形加权的路程。
type TerrainProvider interface {
	InBounds(p domain.Point) bool
	// TravelCost 两点间按经过格子的地形速度惩罚加权后的等效格数。
	TravelCost(from, to domain.Point) float64
}

// RulesSource 返回当前生效的规则，每次使用时读取以支持热更新。
type RulesSource interface {
	Rules() domain.Rules
}

type IDGenerator interface {
	NextID() (int64, error)
	NextToken() (string, error)
}

type Clock interface {
	Now() time.Time
}

// Notifier 实时通知，发送即忘，不返回错误。
type Notifier interface {
	Publish(events ...domain.Event)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

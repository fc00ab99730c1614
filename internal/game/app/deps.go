package app

import (
	"context"
	"math"
	"time"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/combat"
	"Hegemony/internal/game/domain"
	"Hegemony/modules/kit/logx"
)

// Deps 各用例共用的协作者，main 里构造一次。
type Deps struct {
	Store    port.Store
	Catalog  port.Catalog
	Terrain  port.TerrainProvider
	Bonus    port.BonusProvider
	Rules    port.RulesSource
	IDs      port.IDGenerator
	Clock    port.Clock
	Notifier port.Notifier
	Log      logx.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = port.SystemClock{}
	}
	if d.Log == nil {
		d.Log = logx.Nop()
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	return d
}

func (d Deps) rules() domain.Rules {
	if d.Rules == nil {
		return domain.DefaultRules()
	}
	return d.Rules.Rules()
}

func (d Deps) bonus(ctx context.Context, p domain.PlayerID) domain.Bonus {
	if d.Bonus == nil || p == 0 {
		return domain.NoBonus()
	}
	return d.Bonus.Bonus(ctx, p).Normalize()
}

func (d Deps) resolver() *combat.Resolver {
	return combat.NewResolver(d.Catalog, d.rules())
}

// publish 事务提交后再发事件。
func (d Deps) publish(events domain.Events) {
	if len(events) == 0 {
		return
	}
	d.Notifier.Publish(events...)
}

type nopNotifier struct{}

func (nopNotifier) Publish(...domain.Event) {}

// upkeep 在营驻军与驻防军队的每小时耗粮，训练中的不计。
func (d Deps) upkeep(ctx context.Context, tx port.Tx, s *domain.Settlement) (float64, error) {
	g, err := tx.LoadGarrison(ctx, s.ID)
	if err != nil {
		return 0, wrapInfra("load_garrison", err)
	}
	stationed, err := tx.StationedAt(ctx, s.ID)
	if err != nil {
		return 0, wrapInfra("stationed_at", err)
	}
	return garrisonUpkeep(g, stationed, d.Catalog), nil
}

func garrisonUpkeep(g domain.Garrison, stationed []domain.Army, stats domain.StatsLookup) float64 {
	total := 0.0
	for t, e := range g {
		if s, ok := stats.Unit(t); ok {
			total += float64(e.Count) * s.Upkeep
		}
	}
	for i := range stationed {
		total += stationed[i].Troops.Upkeep(stats)
	}
	return total
}

// accrueLocked 先按当前驻军重算耗粮，再把资源结算到 at。村庄必须已在 tx 里加锁。
func (d Deps) accrueLocked(ctx context.Context, tx port.Tx, s *domain.Settlement, at time.Time) error {
	up, err := d.upkeep(ctx, tx, s)
	if err != nil {
		return err
	}
	s.CropUpkeep = up
	s.Accrue(at, d.rules().LoyaltyRegenPerHour)
	return nil
}

// refreshUpkeep 驻军变动写入之后刷新耗粮并保存村庄。
func (d Deps) refreshUpkeep(ctx context.Context, tx port.Tx, s *domain.Settlement) error {
	up, err := d.upkeep(ctx, tx, s)
	if err != nil {
		return err
	}
	s.CropUpkeep = up
	return wrapInfra("save_settlement", tx.SaveSettlement(ctx, s))
}

// travelTime 地形加权路程 / (最慢兵种速度 × 速度加成)，不少于 MinTravel，按毫秒截断。
func (d Deps) travelTime(ctx context.Context, owner domain.PlayerID, from, to domain.Point, troops domain.Troops) (time.Duration, error) {
	speed, ok := troops.SlowestSpeed(d.Catalog)
	if !ok {
		return 0, domain.ErrInvalidCommand.WithReason(ReasonNoSpeed)
	}
	speed *= d.bonus(ctx, owner).Speed
	dist := euclid(from, to)
	if d.Terrain != nil {
		dist = d.Terrain.TravelCost(from, to)
	}
	travel := time.Duration(dist / speed * float64(time.Hour)).Truncate(time.Millisecond)
	if minTravel := d.rules().MinTravel; travel < minTravel {
		travel = minTravel
	}
	return travel, nil
}

func euclid(a, b domain.Point) float64 {
	dx, dy := float64(a.X-b.X), float64(a.Y-b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func ownerCheck(s *domain.Settlement, player domain.PlayerID) error {
	if s.OwnerID != player {
		return domain.ErrNotOwner.WithReason(ReasonNotOwner).WithData("settlement_id", int64(s.ID))
	}
	return nil
}

func lockSettlement(ctx context.Context, tx port.Tx, id domain.SettlementID) (*domain.Settlement, error) {
	s, err := tx.LockSettlement(ctx, id)
	if err != nil {
		return nil, wrapInfra("lock_settlement", err)
	}
	return s, nil
}

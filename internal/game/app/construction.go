package app

import (
	"context"
	"time"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
)

// Construction 训练与建筑升级：下单、取消、到期完成。
type Construction struct {
	Deps
}

func NewConstruction(d Deps) *Construction {
	return &Construction{Deps: d.withDefaults()}
}

// StartTraining 扣资源入队。队列里没有进行中的条目时立即开始。
func (c *Construction) StartTraining(ctx context.Context, player domain.PlayerID, sid domain.SettlementID, unit domain.UnitType, count int) (*domain.TrainingItem, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidCommand.WithReason(ReasonBadCount)
	}
	stats, ok := c.Catalog.Unit(unit)
	if !ok {
		return nil, domain.ErrInvalidCommand.WithReason(ReasonUnknownUnit).WithData("unit", string(unit))
	}
	if stats.TrainSeconds <= 0 {
		return nil, domain.ErrInvalidCommand.WithReason(ReasonNotTrainable).WithData("unit", string(unit))
	}
	now := c.Clock.Now()
	id, err := c.IDs.NextID()
	if err != nil {
		return nil, wrapInfra("next_id", err)
	}

	var out *domain.TrainingItem
	err = c.Store.InTx(ctx, func(tx port.Tx) error {
		s, err := lockSettlement(ctx, tx, sid)
		if err != nil {
			return err
		}
		if err := ownerCheck(s, player); err != nil {
			return err
		}
		if err := c.accrueLocked(ctx, tx, s, now); err != nil {
			return err
		}
		it := &domain.TrainingItem{
			ID:           domain.QueueItemID(id),
			SettlementID: s.ID,
			Unit:         unit,
			Count:        count,
			Cost:         stats.Cost.Scale(float64(count)),
			Duration:     time.Duration(stats.TrainSeconds*count) * time.Second,
			Seq:          id,
			Status:       domain.QueueQueued,
		}
		if err := s.Withdraw(it.Cost); err != nil {
			return err
		}
		queue, err := tx.TrainingQueue(ctx, s.ID)
		if err != nil {
			return wrapInfra("training_queue", err)
		}
		if !hasActiveTraining(queue) {
			it.Activate(now)
		}
		g, err := tx.LoadGarrison(ctx, s.ID)
		if err != nil {
			return wrapInfra("load_garrison", err)
		}
		g.StartTraining(unit, count)
		if err := tx.SaveGarrison(ctx, s.ID, g); err != nil {
			return wrapInfra("save_garrison", err)
		}
		if err := tx.CreateTraining(ctx, it); err != nil {
			return wrapInfra("create_training", err)
		}
		if err := tx.SaveSettlement(ctx, s); err != nil {
			return wrapInfra("save_settlement", err)
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelTraining 只能取消还没开始的条目，费用退回仓库（超出容量的部分丢弃），后面的排队不受影响。
func (c *Construction) CancelTraining(ctx context.Context, player domain.PlayerID, itemID domain.QueueItemID) error {
	now := c.Clock.Now()
	return c.Store.InTx(ctx, func(tx port.Tx) error {
		it, err := tx.LockTraining(ctx, itemID)
		if err != nil {
			return wrapInfra("lock_training", err)
		}
		s, err := lockSettlement(ctx, tx, it.SettlementID)
		if err != nil {
			return err
		}
		if err := ownerCheck(s, player); err != nil {
			return err
		}
		if !it.Cancellable() {
			return domain.ErrAlreadyClaimed.WithReason(ReasonTrainingStarted).WithData("item_id", int64(it.ID))
		}
		if err := c.accrueLocked(ctx, tx, s, now); err != nil {
			return err
		}
		s.Deposit(it.Cost)
		g, err := tx.LoadGarrison(ctx, s.ID)
		if err != nil {
			return wrapInfra("load_garrison", err)
		}
		g.CancelTraining(it.Unit, it.Count)
		if err := tx.SaveGarrison(ctx, s.ID, g); err != nil {
			return wrapInfra("save_garrison", err)
		}
		if err := tx.DeleteTraining(ctx, it.ID); err != nil {
			return wrapInfra("delete_training", err)
		}
		return wrapInfra("save_settlement", tx.SaveSettlement(ctx, s))
	})
}

// CompleteTraining 处理一个已认领的训练条目。下一个排队条目从本条结束时刻开始计时，
// 如果它也已经到期就在同一轮里一并完成。返回完成的条目数；条目已不属于该 token 时什么也不做。
func (c *Construction) CompleteTraining(ctx context.Context, claimed domain.TrainingItem, token string, now time.Time) (int, error) {
	var (
		done   int
		events domain.Events
	)
	err := c.Store.InTx(ctx, func(tx port.Tx) error {
		done, events = 0, nil
		it, err := tx.LockTraining(ctx, claimed.ID)
		if err != nil {
			if isCode(err, domain.ErrQueueItemNotFound) {
				return nil
			}
			return wrapInfra("lock_training", err)
		}
		if it.ClaimToken != token || it.Status != domain.QueueActive {
			return nil
		}
		s, err := lockSettlement(ctx, tx, it.SettlementID)
		if err != nil {
			return err
		}
		g, err := tx.LoadGarrison(ctx, s.ID)
		if err != nil {
			return wrapInfra("load_garrison", err)
		}
		for it != nil {
			if err := c.accrueLocked(ctx, tx, s, it.EndsAt); err != nil {
				return err
			}
			g.CompleteTraining(it.Unit, it.Count)
			if err := tx.SaveGarrison(ctx, s.ID, g); err != nil {
				return wrapInfra("save_garrison", err)
			}
			it.Status = domain.QueueDone
			it.ClaimToken = ""
			if err := tx.SaveTraining(ctx, it); err != nil {
				return wrapInfra("save_training", err)
			}
			done++
			events.Add(domain.EventTrainingCompleted, s.ID, 0, it.EndsAt, map[string]any{
				"item_id": int64(it.ID),
				"unit":    string(it.Unit),
				"count":   it.Count,
			}, s.OwnerID)

			queue, err := tx.TrainingQueue(ctx, s.ID)
			if err != nil {
				return wrapInfra("training_queue", err)
			}
			idx, ok := domain.NextQueuedTraining(queue)
			if !ok {
				break
			}
			next := queue[idx]
			next.Activate(it.EndsAt)
			if err := tx.SaveTraining(ctx, &next); err != nil {
				return wrapInfra("save_training", err)
			}
			if !next.Due(now) {
				break
			}
			it = &next
		}
		return c.refreshUpkeep(ctx, tx, s)
	})
	if err != nil {
		return 0, err
	}
	c.publish(events)
	return done, nil
}

// StartUpgrade 升级到 当前等级 + 队列中同建筑条目数 + 1。进行中的数量未满 upgrade_slots 时立即开始。
func (c *Construction) StartUpgrade(ctx context.Context, player domain.PlayerID, sid domain.SettlementID, building domain.BuildingType) (*domain.UpgradeItem, error) {
	def, ok := c.Catalog.Building(building)
	if !ok {
		return nil, domain.ErrInvalidCommand.WithReason(ReasonUnknownBuilding).WithData("building", string(building))
	}
	now := c.Clock.Now()
	id, err := c.IDs.NextID()
	if err != nil {
		return nil, wrapInfra("next_id", err)
	}

	var out *domain.UpgradeItem
	err = c.Store.InTx(ctx, func(tx port.Tx) error {
		s, err := lockSettlement(ctx, tx, sid)
		if err != nil {
			return err
		}
		if err := ownerCheck(s, player); err != nil {
			return err
		}
		if err := c.accrueLocked(ctx, tx, s, now); err != nil {
			return err
		}
		queue, err := tx.UpgradeQueue(ctx, s.ID)
		if err != nil {
			return wrapInfra("upgrade_queue", err)
		}
		target := s.BuildingLevel(building) + domain.PendingLevels(queue, building) + 1
		lvl, ok := def.Level(target)
		if !ok {
			return domain.ErrInvalidCommand.WithReason(ReasonMaxLevel).WithData("building", string(building)).WithData("level", target)
		}
		if err := s.Withdraw(lvl.Cost); err != nil {
			return err
		}
		it := &domain.UpgradeItem{
			ID:           domain.QueueItemID(id),
			SettlementID: s.ID,
			Building:     building,
			TargetLevel:  target,
			Cost:         lvl.Cost,
			Duration:     time.Duration(lvl.BuildSeconds) * time.Second,
			Seq:          id,
			Status:       domain.QueueQueued,
		}
		if domain.ActiveUpgrades(queue) < c.slots(s) {
			it.Activate(now)
		}
		if err := tx.CreateUpgrade(ctx, it); err != nil {
			return wrapInfra("create_upgrade", err)
		}
		if err := tx.SaveSettlement(ctx, s); err != nil {
			return wrapInfra("save_settlement", err)
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CompleteUpgrade 处理一个已认领的升级条目：升级并重算产量/容量/城墙/地窖，再按空出的槽位启动排队条目。
func (c *Construction) CompleteUpgrade(ctx context.Context, claimed domain.UpgradeItem, token string, now time.Time) (int, error) {
	var (
		done   int
		events domain.Events
	)
	err := c.Store.InTx(ctx, func(tx port.Tx) error {
		done, events = 0, nil
		it, err := tx.LockUpgrade(ctx, claimed.ID)
		if err != nil {
			if isCode(err, domain.ErrQueueItemNotFound) {
				return nil
			}
			return wrapInfra("lock_upgrade", err)
		}
		if it.ClaimToken != token || it.Status != domain.QueueActive {
			return nil
		}
		s, err := lockSettlement(ctx, tx, it.SettlementID)
		if err != nil {
			return err
		}
		for it != nil {
			if _, ok := c.Catalog.Building(it.Building); !ok {
				return integrity("complete_upgrade", ReasonBuildingMissing, nil)
			}
			if err := c.accrueLocked(ctx, tx, s, it.EndsAt); err != nil {
				return err
			}
			if s.Buildings == nil {
				s.Buildings = map[domain.BuildingType]int{}
			}
			if it.TargetLevel > s.Buildings[it.Building] {
				s.Buildings[it.Building] = it.TargetLevel
			}
			s.RecomputeDerived(c.Catalog)
			it.Status = domain.QueueDone
			it.ClaimToken = ""
			if err := tx.SaveUpgrade(ctx, it); err != nil {
				return wrapInfra("save_upgrade", err)
			}
			done++
			events.Add(domain.EventConstructionCompleted, s.ID, 0, it.EndsAt, map[string]any{
				"item_id":  int64(it.ID),
				"building": string(it.Building),
				"level":    s.Buildings[it.Building],
			}, s.OwnerID)

			queue, err := tx.UpgradeQueue(ctx, s.ID)
			if err != nil {
				return wrapInfra("upgrade_queue", err)
			}
			if domain.ActiveUpgrades(queue) >= c.slots(s) {
				break
			}
			idx, ok := domain.NextQueuedUpgrade(queue)
			if !ok {
				break
			}
			next := queue[idx]
			next.Activate(it.EndsAt)
			if err := tx.SaveUpgrade(ctx, &next); err != nil {
				return wrapInfra("save_upgrade", err)
			}
			if !next.Due(now) {
				break
			}
			it = &next
		}
		return wrapInfra("save_settlement", tx.SaveSettlement(ctx, s))
	})
	if err != nil {
		return 0, err
	}
	c.publish(events)
	return done, nil
}

func (c *Construction) slots(s *domain.Settlement) int {
	n := s.UpgradeSlots
	if n <= 0 {
		n = c.rules().DefaultUpgradeSlots
	}
	if n <= 0 {
		n = 1
	}
	return n
}

func hasActiveTraining(queue []domain.TrainingItem) bool {
	for i := range queue {
		if queue[i].Status == domain.QueueActive {
			return true
		}
	}
	return false
}

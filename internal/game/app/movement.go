package app

import (
	"context"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
)

// DispatchCommand 派兵指令。
type DispatchCommand struct {
	PlayerID domain.PlayerID
	OriginID domain.SettlementID
	Dest     domain.Point
	Mission  domain.MissionKind
	Troops   domain.Troops
}

// Movement 派兵、召回、撤回支援。指令同步校验并立即扣兵，到达由调度器异步处理。
type Movement struct {
	Deps
}

func NewMovement(d Deps) *Movement {
	return &Movement{Deps: d.withDefaults()}
}

func (m *Movement) Dispatch(ctx context.Context, cmd DispatchCommand) (*domain.Army, error) {
	mission, err := domain.ParseMission(cmd.Mission)
	if err != nil {
		return nil, err
	}
	rules := m.rules()
	if err := domain.ValidateComposition(mission, cmd.Troops, m.Catalog, rules.SettlersRequired); err != nil {
		return nil, err
	}
	if m.Terrain != nil && !m.Terrain.InBounds(cmd.Dest) {
		return nil, domain.ErrInvalidCommand.WithReason(ReasonOutOfBounds).WithData("x", cmd.Dest.X).WithData("y", cmd.Dest.Y)
	}
	now := m.Clock.Now()
	id, err := m.IDs.NextID()
	if err != nil {
		return nil, wrapInfra("next_id", err)
	}

	var (
		out    *domain.Army
		events domain.Events
	)
	err = m.Store.InTx(ctx, func(tx port.Tx) error {
		events = nil
		origin, err := lockSettlement(ctx, tx, cmd.OriginID)
		if err != nil {
			return err
		}
		if err := ownerCheck(origin, cmd.PlayerID); err != nil {
			return err
		}
		if origin.Point() == cmd.Dest {
			return domain.ErrInvalidCommand.WithReason(ReasonSameTile)
		}
		target, found, err := tx.FindSettlementAt(ctx, cmd.Dest)
		if err != nil {
			return wrapInfra("find_settlement_at", err)
		}
		if err := m.accrueLocked(ctx, tx, origin, now); err != nil {
			return err
		}

		var cargo domain.Resources
		switch mission.(type) {
		case domain.Settle:
			if found {
				return domain.ErrTargetUnavailable.WithReason(ReasonTileOccupied)
			}
			if err := origin.Withdraw(rules.SettleResources); err != nil {
				return err
			}
			cargo = rules.SettleResources
		default:
			if !found {
				return domain.ErrTargetUnavailable.WithReason(ReasonNoTarget)
			}
			if mission.Hostile() && target.OwnerID == cmd.PlayerID {
				return domain.ErrInvalidMission.WithReason(ReasonHostileOwn)
			}
		}

		g, err := tx.LoadGarrison(ctx, origin.ID)
		if err != nil {
			return wrapInfra("load_garrison", err)
		}
		if err := g.Deduct(cmd.Troops); err != nil {
			return err
		}
		travel, err := m.travelTime(ctx, cmd.PlayerID, origin.Point(), cmd.Dest, cmd.Troops)
		if err != nil {
			return err
		}
		army := &domain.Army{
			ID:         domain.ArmyID(id),
			OwnerID:    cmd.PlayerID,
			OriginID:   origin.ID,
			OriginX:    origin.X,
			OriginY:    origin.Y,
			DestX:      cmd.Dest.X,
			DestY:      cmd.Dest.Y,
			Mission:    mission.Kind(),
			Troops:     cmd.Troops.Clone(),
			Resources:  cargo,
			DepartedAt: now,
			ArrivesAt:  now.Add(travel),
			Status:     domain.ArmyDispatched,
		}
		if found {
			army.DestSettlementID = target.ID
		}
		if err := tx.SaveGarrison(ctx, origin.ID, g); err != nil {
			return wrapInfra("save_garrison", err)
		}
		if err := tx.CreateArmy(ctx, army); err != nil {
			return wrapInfra("create_army", err)
		}
		if err := m.refreshUpkeep(ctx, tx, origin); err != nil {
			return err
		}
		if mission.Hostile() {
			events.Add(domain.EventUnderAttack, target.ID, army.ID, now, map[string]any{
				"mission":    string(army.Mission),
				"arrives_at": army.ArrivesAt,
				"from":       origin.Point(),
			}, target.OwnerID)
		}
		out = army
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.publish(events)
	return out, nil
}

// Recall 召回驻扎在外的支援部队，按距离和最慢兵种重新计算回程。
func (m *Movement) Recall(ctx context.Context, player domain.PlayerID, id domain.ArmyID) (*domain.Army, error) {
	now := m.Clock.Now()
	var out *domain.Army
	err := m.Store.InTx(ctx, func(tx port.Tx) error {
		army, err := m.lockOwnArmy(ctx, tx, player, id)
		if err != nil {
			return err
		}
		if army.Status != domain.ArmyStationed {
			return domain.ErrInvalidCommand.WithData("status", string(army.Status))
		}
		host, err := lockSettlement(ctx, tx, army.DestSettlementID)
		if err != nil {
			return err
		}
		// 驻防部队离开前按旧耗粮结算驻地
		if err := m.accrueLocked(ctx, tx, host, now); err != nil {
			return err
		}
		travel, err := m.travelTime(ctx, player, army.Dest(), army.Origin(), army.Troops)
		if err != nil {
			return err
		}
		if err := army.Recall(now, travel); err != nil {
			return err
		}
		if err := tx.SaveArmy(ctx, army); err != nil {
			return wrapInfra("save_army", err)
		}
		if err := m.refreshUpkeep(ctx, tx, host); err != nil {
			return err
		}
		out = army
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelSupport 撤回还在路上的支援。到达时间已过或已被认领时返回 ErrAlreadyClaimed。
func (m *Movement) CancelSupport(ctx context.Context, player domain.PlayerID, id domain.ArmyID) (*domain.Army, error) {
	now := m.Clock.Now()
	var out *domain.Army
	err := m.Store.InTx(ctx, func(tx port.Tx) error {
		army, err := m.lockOwnArmy(ctx, tx, player, id)
		if err != nil {
			return err
		}
		if err := army.CancelEnRoute(now); err != nil {
			return err
		}
		if err := tx.SaveArmy(ctx, army); err != nil {
			return wrapInfra("save_army", err)
		}
		out = army
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Movement) lockOwnArmy(ctx context.Context, tx port.Tx, player domain.PlayerID, id domain.ArmyID) (*domain.Army, error) {
	army, err := tx.LockArmy(ctx, id)
	if err != nil {
		return nil, wrapInfra("lock_army", err)
	}
	if army.OwnerID != player {
		return nil, domain.ErrNotOwner.WithReason(ReasonNotArmyOwner).WithData("army_id", int64(id))
	}
	return army, nil
}

package app

import (
	"context"
	"math"
	"time"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
)

// Accrual 资源结算与饥荒处理。
type Accrual struct {
	Deps
}

func NewAccrual(d Deps) *Accrual {
	return &Accrual{Deps: d.withDefaults()}
}

// Accrue 把一个村庄结算到 now 并发出 ResourceUpdated。
func (a *Accrual) Accrue(ctx context.Context, id domain.SettlementID, now time.Time) error {
	var events domain.Events
	err := a.Store.InTx(ctx, func(tx port.Tx) error {
		s, err := lockSettlement(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := a.accrueLocked(ctx, tx, s, now); err != nil {
			return err
		}
		if err := tx.SaveSettlement(ctx, s); err != nil {
			return wrapInfra("save_settlement", err)
		}
		events.Add(domain.EventResourceUpdated, s.ID, 0, now, map[string]any{
			"stock":       s.Stock.Round(),
			"crop_upkeep": s.CropUpkeep,
		}, s.OwnerID)
		return nil
	})
	if err != nil {
		return err
	}
	a.publish(events)
	return nil
}

// StarveResult 一次饥荒处理的结果。
type StarveResult struct {
	Killed   domain.Troops
	Resolved bool // 耗粮已不超过产量，负粮已清零
}

// Starve 对粮食为负的村庄按兵种数量等比例饿死部队，驻军和驻防军队都算。
// 每个分组每轮最多死 StarvationMaxKillRatio，没降到产量以内就留给下一轮。
func (a *Accrual) Starve(ctx context.Context, id domain.SettlementID, now time.Time) (StarveResult, error) {
	var (
		res    StarveResult
		events domain.Events
	)
	rules := a.rules()
	err := a.Store.InTx(ctx, func(tx port.Tx) error {
		res = StarveResult{Killed: domain.Troops{}}
		s, err := lockSettlement(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := a.accrueLocked(ctx, tx, s, now); err != nil {
			return err
		}
		if !s.Starving() {
			res.Resolved = true
			return wrapInfra("save_settlement", tx.SaveSettlement(ctx, s))
		}
		production := s.Production.Crop
		if s.CropUpkeep <= production {
			s.Stock.Crop = 0
			res.Resolved = true
			return wrapInfra("save_settlement", tx.SaveSettlement(ctx, s))
		}

		ratio := (s.CropUpkeep - production) / s.CropUpkeep
		if limit := rules.StarvationMaxKillRatio; limit > 0 {
			ratio = math.Min(ratio, limit)
		}

		g, err := tx.LoadGarrison(ctx, s.ID)
		if err != nil {
			return wrapInfra("load_garrison", err)
		}
		gk := starvationKills(g.Available(), ratio)
		g.Kill(gk)
		if err := tx.SaveGarrison(ctx, s.ID, g); err != nil {
			return wrapInfra("save_garrison", err)
		}
		res.Killed = res.Killed.Add(gk)
		recipients := []domain.PlayerID{s.OwnerID}

		stationed, err := tx.StationedAt(ctx, s.ID)
		if err != nil {
			return wrapInfra("stationed_at", err)
		}
		for i := range stationed {
			army := &stationed[i]
			k := starvationKills(army.Troops, ratio)
			if k.IsEmpty() {
				continue
			}
			left, err := army.Troops.Sub(k)
			if err != nil {
				return integrity("starve", ReasonStateMismatch, err)
			}
			army.Troops = left
			if left.IsEmpty() {
				if err := army.Terminate(); err != nil {
					return err
				}
			}
			if err := tx.SaveArmy(ctx, army); err != nil {
				return wrapInfra("save_army", err)
			}
			res.Killed = res.Killed.Add(k)
			recipients = append(recipients, army.OwnerID)
		}

		if err := a.refreshUpkeep(ctx, tx, s); err != nil {
			return err
		}
		if s.CropUpkeep <= production {
			s.Stock.Crop = 0
			res.Resolved = true
			if err := tx.SaveSettlement(ctx, s); err != nil {
				return wrapInfra("save_settlement", err)
			}
		}
		events.Add(domain.EventTroopsStarved, s.ID, 0, now, map[string]any{
			"killed":   res.Killed,
			"resolved": res.Resolved,
		}, recipients...)
		return nil
	})
	if err != nil {
		return StarveResult{}, err
	}
	a.publish(events)
	return res, nil
}

// starvationKills 每个兵种死 ceil(ratio × 数量)，保证每轮至少有进展。
func starvationKills(t domain.Troops, ratio float64) domain.Troops {
	out := domain.Troops{}
	if ratio <= 0 {
		return out
	}
	for _, ut := range t.Types() {
		n := t[ut]
		k := int(math.Ceil(ratio*float64(n) - 1e-9))
		if k > n {
			k = n
		}
		if k > 0 {
			out[ut] = k
		}
	}
	return out
}

package app

import (
	"context"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
)

// SettlementView 村庄对主人展示的状态，资源按读取时刻推算，不落库。
type SettlementView struct {
	Settlement domain.Settlement
	Garrison   domain.Garrison
	Training   []domain.TrainingItem
	Upgrades   []domain.UpgradeItem
	Stationed  []domain.Army
}

type Views struct {
	Deps
}

func NewViews(d Deps) *Views {
	return &Views{Deps: d.withDefaults()}
}

func (v *Views) Settlement(ctx context.Context, player domain.PlayerID, id domain.SettlementID) (*SettlementView, error) {
	now := v.Clock.Now()
	var out *SettlementView
	err := v.Store.InTx(ctx, func(tx port.Tx) error {
		s, err := lockSettlement(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := ownerCheck(s, player); err != nil {
			return err
		}
		g, err := tx.LoadGarrison(ctx, id)
		if err != nil {
			return wrapInfra("load_garrison", err)
		}
		stationed, err := tx.StationedAt(ctx, id)
		if err != nil {
			return wrapInfra("stationed_at", err)
		}
		training, err := tx.TrainingQueue(ctx, id)
		if err != nil {
			return wrapInfra("training_queue", err)
		}
		upgrades, err := tx.UpgradeQueue(ctx, id)
		if err != nil {
			return wrapInfra("upgrade_queue", err)
		}
		projected := *s
		projected.CropUpkeep = garrisonUpkeep(g, stationed, v.Catalog)
		projected.Accrue(now, v.rules().LoyaltyRegenPerHour)
		out = &SettlementView{
			Settlement: projected,
			Garrison:   g,
			Training:   training,
			Upgrades:   upgrades,
			Stationed:  stationed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Armies 玩家所有未终结的军队。
func (v *Views) Armies(ctx context.Context, player domain.PlayerID) ([]domain.Army, error) {
	var out []domain.Army
	err := v.Store.InTx(ctx, func(tx port.Tx) error {
		armies, err := tx.ArmiesOwnedBy(ctx, player)
		if err != nil {
			return wrapInfra("armies_owned_by", err)
		}
		out = armies
		return nil
	})
	return out, err
}

package app

import (
	"context"
	"fmt"
	"time"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/combat"
	"Hegemony/internal/game/domain"

	"go.uber.org/zap"
)

// Arrival 处理已认领军队的到达。每支军队一个事务，同一村庄的并发到达靠行锁串行，
// 结算顺序靠 ArrivalAhead 保证按 (arrives_at, id)。
type Arrival struct {
	Deps
}

func NewArrival(d Deps) *Arrival {
	return &Arrival{Deps: d.withDefaults()}
}

// arrivalRun 一次到达处理的上下文。
type arrivalRun struct {
	tx       port.Tx
	army     *domain.Army
	at       time.Time
	rules    domain.Rules
	resolver *combat.Resolver
	events   domain.Events
	report   *domain.Report
}

// Process 处理一支已被 token 认领的军队。军队已不处于该 token 的认领状态时直接返回（重复投递）。
// 同一落点还有排在前面的到达未结算（多实例各认领了一支）时让出认领，返回 domain.ErrArrivalDeferred。
// 其余错误都视为完整性问题，由调度器标记失败，不会重试。
func (a *Arrival) Process(ctx context.Context, claimed domain.Army, token string) error {
	var (
		run      *arrivalRun
		deferred bool
	)
	err := a.Store.InTx(ctx, func(tx port.Tx) error {
		run, deferred = nil, false
		army, err := tx.LockArmy(ctx, claimed.ID)
		if err != nil {
			return wrapInfra("lock_army", err)
		}
		if !army.ClaimedBy(token) {
			a.Log.WithContext(ctx).Debug("arrival skipped, claim not held",
				zap.Int64("army_id", int64(army.ID)), zap.String("status", string(army.Status)))
			return nil
		}
		ahead, err := tx.ArrivalAhead(ctx, army)
		if err != nil {
			return wrapInfra("arrival_ahead", err)
		}
		if ahead {
			if err := army.Yield(token); err != nil {
				return err
			}
			deferred = true
			return wrapInfra("save_army", tx.SaveArmy(ctx, army))
		}
		mission, err := army.MissionVariant()
		if err != nil {
			return integrity("arrival", ReasonUnknownMission, err)
		}
		r := &arrivalRun{
			tx:       tx,
			army:     army,
			at:       army.ArrivesAt,
			rules:    a.rules(),
			resolver: a.resolver(),
		}
		switch mission.(type) {
		case domain.Raid, domain.Attack, domain.Conquer:
			err = a.battle(ctx, r, mission)
		case domain.Support:
			err = a.support(ctx, r)
		case domain.Scout:
			err = a.scout(ctx, r)
		case domain.Settle:
			err = a.settle(ctx, r)
		case domain.Return:
			err = a.returnHome(ctx, r)
		default:
			err = integrity("arrival", ReasonUnknownMission, fmt.Errorf("mission %s", mission.Kind()))
		}
		if err != nil {
			return err
		}
		if r.report != nil {
			if err := tx.AppendReport(ctx, r.report); err != nil {
				return wrapInfra("append_report", err)
			}
		}
		run = r
		return nil
	})
	if err != nil {
		return err
	}
	if deferred {
		a.Log.WithContext(ctx).Debug("arrival deferred, earlier arrival pending",
			zap.Int64("army_id", int64(claimed.ID)), zap.Time("arrives_at", claimed.ArrivesAt))
		return domain.ErrArrivalDeferred.WithData("army_id", int64(claimed.ID))
	}
	if run != nil {
		a.publish(run.events)
	}
	return nil
}

func (a *Arrival) lockTarget(ctx context.Context, r *arrivalRun) (*domain.Settlement, error) {
	if r.army.DestSettlementID == 0 {
		return nil, integrity("arrival", ReasonTargetMissing, nil)
	}
	s, err := r.tx.LockSettlement(ctx, r.army.DestSettlementID)
	if err != nil {
		if isCode(err, domain.ErrSettlementNotFound) {
			return nil, integrity("arrival", ReasonTargetMissing, err)
		}
		return nil, wrapInfra("lock_settlement", err)
	}
	return s, nil
}

// defenders 驻军在前，驻防军队按 id 升序，顺序决定伤亡结算顺序。
func (a *Arrival) defenders(ctx context.Context, r *arrivalRun, target *domain.Settlement) (domain.Garrison, []domain.Army, []combat.Group, error) {
	g, err := r.tx.LoadGarrison(ctx, target.ID)
	if err != nil {
		return nil, nil, nil, wrapInfra("load_garrison", err)
	}
	stationed, err := r.tx.StationedAt(ctx, target.ID)
	if err != nil {
		return nil, nil, nil, wrapInfra("stationed_at", err)
	}
	groups := make([]combat.Group, 0, 1+len(stationed))
	groups = append(groups, combat.Group{
		Role:         domain.RoleGarrison,
		OwnerID:      target.OwnerID,
		SettlementID: target.ID,
		Troops:       g.Available(),
		Bonus:        a.bonus(ctx, target.OwnerID),
	})
	for i := range stationed {
		groups = append(groups, combat.Group{
			Role:         domain.RoleStationed,
			OwnerID:      stationed[i].OwnerID,
			SettlementID: stationed[i].OriginID,
			ArmyID:       stationed[i].ID,
			Troops:       stationed[i].Troops.Clone(),
			Bonus:        a.bonus(ctx, stationed[i].OwnerID),
		})
	}
	return g, stationed, groups, nil
}

func (a *Arrival) attackerGroup(ctx context.Context, army *domain.Army) combat.Group {
	return combat.Group{
		Role:         domain.RoleAttacker,
		OwnerID:      army.OwnerID,
		SettlementID: army.OriginID,
		ArmyID:       army.ID,
		Troops:       army.Troops.Clone(),
		Bonus:        a.bonus(ctx, army.OwnerID),
	}
}

func (a *Arrival) newReport(r *arrivalRun, kind domain.ReportKind, target *domain.Settlement) *domain.Report {
	rep := &domain.Report{
		ID:         domain.ReportID(r.army.ID, r.at),
		Kind:       kind,
		Mission:    r.army.Mission,
		ArmyID:     r.army.ID,
		OccurredAt: r.at,
		AttackerID: r.army.OwnerID,
		OriginID:   r.army.OriginID,
		Target:     r.army.Dest(),
		ReadBy:     []domain.PlayerID{},
	}
	rep.AddRecipient(r.army.OwnerID)
	if target != nil {
		rep.DefenderID = target.OwnerID
		rep.TargetID = target.ID
		rep.WallBefore, rep.WallAfter = target.WallLevel, target.WallLevel
		rep.LoyaltyBefore, rep.LoyaltyAfter = target.Loyalty, target.Loyalty
	}
	return rep
}

// sendBack 幸存部队带着资源从目标返回出发地；全军覆没则终结。
func (a *Arrival) sendBack(ctx context.Context, r *arrivalRun, survivors domain.Troops, cargo domain.Resources) error {
	army := r.army
	if survivors.IsEmpty() {
		if err := army.Terminate(); err != nil {
			return err
		}
		return wrapInfra("save_army", r.tx.SaveArmy(ctx, army))
	}
	travel, err := a.travelTime(ctx, army.OwnerID, army.Dest(), army.Origin(), survivors)
	if err != nil {
		return err
	}
	if err := army.StartReturn(survivors, cargo, r.at, travel); err != nil {
		return err
	}
	return wrapInfra("save_army", r.tx.SaveArmy(ctx, army))
}

func (a *Arrival) arrived(r *arrivalRun, sid domain.SettlementID, data map[string]any, recipients ...domain.PlayerID) {
	r.events.Add(domain.EventArmyArrived, sid, r.army.ID, r.at, data, append([]domain.PlayerID{r.army.OwnerID}, recipients...)...)
}

// battle raid / attack / conquer：战斗，然后按任务掠夺、拆墙、扣忠诚度。
func (a *Arrival) battle(ctx context.Context, r *arrivalRun, mission domain.Mission) error {
	target, err := a.lockTarget(ctx, r)
	if err != nil {
		return err
	}
	if err := a.accrueLocked(ctx, r.tx, target, r.at); err != nil {
		return err
	}
	mission = retarget(mission, target, r.army)
	if _, ok := mission.(domain.Support); ok {
		// 目标在行军途中变成了自己的村庄，不开战直接回城
		a.arrived(r, target.ID, map[string]any{"mission": string(r.army.Mission), "outcome": "own_settlement"})
		return a.sendBack(ctx, r, r.army.Troops, r.army.Resources)
	}

	g, stationed, groups, err := a.defenders(ctx, r, target)
	if err != nil {
		return err
	}
	res := r.resolver.Fight(combat.Battle{
		Attacker:  a.attackerGroup(ctx, r.army),
		Defenders: groups,
		WallLevel: target.WallLevel,
		Seed:      combat.Seed(r.army.ID, r.at),
	})

	rep := a.newReport(r, domain.ReportBattle, target)
	rep.Participants = append([]domain.Participant{res.Attacker}, res.Defenders...)
	rep.Outcome = domain.OutcomeDefenderWon
	if res.AttackerWon {
		rep.Outcome = domain.OutcomeAttackerWon
	}

	// 守方伤亡
	g.Kill(res.Defenders[0].Lost)
	if err := r.tx.SaveGarrison(ctx, target.ID, g); err != nil {
		return wrapInfra("save_garrison", err)
	}
	recipients := []domain.PlayerID{target.OwnerID}
	for i := range stationed {
		st := &stationed[i]
		p := res.Defenders[i+1]
		rep.AddRecipient(st.OwnerID)
		recipients = append(recipients, st.OwnerID)
		if p.Lost.IsEmpty() {
			continue
		}
		st.Troops = p.Survived.Clone()
		if st.Troops.IsEmpty() {
			if err := st.Terminate(); err != nil {
				return err
			}
		}
		if err := r.tx.SaveArmy(ctx, st); err != nil {
			return wrapInfra("save_army", err)
		}
	}
	rep.AddRecipient(target.OwnerID)

	survivors := res.Attacker.Survived.Clone()
	var loot domain.Resources
	if res.AttackerWon {
		_, isRaid := mission.(domain.Raid)
		_, isAttack := mission.(domain.Attack)
		if isRaid || (isAttack && r.rules.AttackLoots) {
			loot = r.resolver.Loot(survivors, target.Unprotected())
			target.Plunder(loot)
			rep.Loot = loot
		}
		if !isRaid {
			if levels := r.resolver.WallDamage(survivors); levels > 0 {
				rep.WallBefore, rep.WallAfter = target.DamageWall(levels, a.Catalog)
			}
		}
	}

	stay := false
	if _, ok := mission.(domain.Conquer); ok && res.AttackerWon {
		stay, survivors, err = a.conquer(ctx, r, target, survivors, rep, recipients)
		if err != nil {
			return err
		}
	}
	if stay {
		return a.refreshUpkeep(ctx, r.tx, target)
	}
	if err := a.sendBack(ctx, r, survivors, loot); err != nil {
		return err
	}
	a.arrived(r, target.ID, map[string]any{
		"mission": string(r.army.Mission),
		"outcome": string(rep.Outcome),
		"report":  rep.ID,
	}, recipients...)
	r.report = rep
	return a.refreshUpkeep(ctx, r.tx, target)
}

// conquer 幸存 chief 扣忠诚度后被消耗；忠诚度归零则易主，训练队列作废，剩余部队驻扎。
// 返回 stay=true 表示军队已驻扎在被占领的村庄。
func (a *Arrival) conquer(ctx context.Context, r *arrivalRun, target *domain.Settlement, survivors domain.Troops, rep *domain.Report, recipients []domain.PlayerID) (bool, domain.Troops, error) {
	dmg, chiefs := r.resolver.LoyaltyDamage(survivors)
	if chiefs.IsEmpty() {
		return false, survivors, nil
	}
	rest, err := survivors.Sub(chiefs)
	if err != nil {
		return false, survivors, integrity("conquer", ReasonStateMismatch, err)
	}
	before := target.Loyalty
	after, zeroed := target.ReduceLoyalty(dmg)
	rep.LoyaltyBefore, rep.LoyaltyAfter = before, after
	if !zeroed {
		return false, rest, nil
	}

	prevOwner := target.OwnerID
	target.TransferTo(r.army.OwnerID, r.rules.LoyaltyAfterConquest)
	rep.Conquered = true
	rep.LoyaltyAfter = target.Loyalty
	if err := a.dropTraining(ctx, r.tx, target.ID); err != nil {
		return false, rest, err
	}

	army := r.army
	if rest.IsEmpty() {
		if err := army.Terminate(); err != nil {
			return false, rest, err
		}
	} else {
		army.Troops = rest
		if err := army.Station(); err != nil {
			return false, rest, err
		}
	}
	if err := r.tx.SaveArmy(ctx, army); err != nil {
		return false, rest, wrapInfra("save_army", err)
	}
	r.events.Add(domain.EventSettlementConquered, target.ID, army.ID, r.at, map[string]any{
		"previous_owner": int64(prevOwner),
		"new_owner":      int64(army.OwnerID),
	}, army.OwnerID, prevOwner)
	a.arrived(r, target.ID, map[string]any{
		"mission": string(army.Mission),
		"outcome": string(rep.Outcome),
		"report":  rep.ID,
	}, recipients...)
	r.report = rep
	return true, rest, nil
}

// dropTraining 村庄易主时未完成的训练作废，不退费。
func (a *Arrival) dropTraining(ctx context.Context, tx port.Tx, sid domain.SettlementID) error {
	queue, err := tx.TrainingQueue(ctx, sid)
	if err != nil {
		return wrapInfra("training_queue", err)
	}
	if len(queue) == 0 {
		return nil
	}
	g, err := tx.LoadGarrison(ctx, sid)
	if err != nil {
		return wrapInfra("load_garrison", err)
	}
	for i := range queue {
		g.CancelTraining(queue[i].Unit, queue[i].Count)
		if err := tx.DeleteTraining(ctx, queue[i].ID); err != nil {
			return wrapInfra("delete_training", err)
		}
	}
	return wrapInfra("save_garrison", tx.SaveGarrison(ctx, sid, g))
}

// retarget 目标已归进攻方所有时改按支援处理。
func retarget(m domain.Mission, target *domain.Settlement, army *domain.Army) domain.Mission {
	if m.Hostile() && target.OwnerID == army.OwnerID {
		return domain.Support{}
	}
	return m
}

func (a *Arrival) support(ctx context.Context, r *arrivalRun) error {
	target, err := a.lockTarget(ctx, r)
	if err != nil {
		return err
	}
	// 驻防部队到来之前按旧耗粮结算
	if err := a.accrueLocked(ctx, r.tx, target, r.at); err != nil {
		return err
	}
	if err := r.army.Station(); err != nil {
		return err
	}
	if err := r.tx.SaveArmy(ctx, r.army); err != nil {
		return wrapInfra("save_army", err)
	}
	a.arrived(r, target.ID, map[string]any{
		"mission": string(domain.MissionSupport),
		"troops":  r.army.Troops,
	}, target.OwnerID)
	return a.refreshUpkeep(ctx, r.tx, target)
}

func (a *Arrival) scout(ctx context.Context, r *arrivalRun) error {
	target, err := a.lockTarget(ctx, r)
	if err != nil {
		return err
	}
	if err := a.accrueLocked(ctx, r.tx, target, r.at); err != nil {
		return err
	}
	if target.OwnerID == r.army.OwnerID {
		a.arrived(r, target.ID, map[string]any{"mission": string(r.army.Mission), "outcome": "own_settlement"})
		return a.sendBack(ctx, r, r.army.Troops, r.army.Resources)
	}
	g, stationed, groups, err := a.defenders(ctx, r, target)
	if err != nil {
		return err
	}
	res := r.resolver.Scout(a.attackerGroup(ctx, r.army), groups, combat.Seed(r.army.ID, r.at))

	rep := a.newReport(r, domain.ReportScout, target)
	rep.Participants = []domain.Participant{res.Attacker}
	intel := &domain.ScoutIntel{Level: res.Level}
	switch res.Level {
	case domain.ScoutFull:
		rep.Outcome = domain.OutcomeScouted
		intel.Garrison = g.Available()
		for i := range stationed {
			intel.Stationed = append(intel.Stationed, stationed[i].Troops.Clone())
		}
		stock := target.Stock.Floor0().Round()
		intel.Stock = &stock
		intel.Buildings = make(map[domain.BuildingType]int, len(target.Buildings))
		for k, v := range target.Buildings {
			intel.Buildings[k] = v
		}
		wall := target.WallLevel
		intel.WallLevel = &wall
	case domain.ScoutDegraded:
		rep.Outcome = domain.OutcomeScoutLimited
		intel.Garrison = g.Available()
	default:
		rep.Outcome = domain.OutcomeScoutBlocked
	}
	rep.Scout = intel
	// 守方有反侦察力时才知道被侦察
	if res.Ratio > 0 || res.Level == domain.ScoutBlocked {
		rep.AddRecipient(target.OwnerID)
	}

	if err := a.sendBack(ctx, r, res.Attacker.Survived, domain.Resources{}); err != nil {
		return err
	}
	a.arrived(r, target.ID, map[string]any{
		"mission": string(domain.MissionScout),
		"outcome": string(rep.Outcome),
		"report":  rep.ID,
	})
	r.report = rep
	return wrapInfra("save_settlement", r.tx.SaveSettlement(ctx, target))
}

// settle 开拓：坐标仍空时建新村庄，携带资源入库；已被占则开拓者和资源一并丢失。
func (a *Arrival) settle(ctx context.Context, r *arrivalRun) error {
	army := r.army
	rep := a.newReport(r, domain.ReportSettle, nil)
	rep.Participants = []domain.Participant{{
		Role:      domain.RoleAttacker,
		OwnerID:   army.OwnerID,
		ArmyID:    army.ID,
		Committed: army.Troops.Clone(),
		Lost:      army.Troops.Clone(),
		Survived:  domain.Troops{},
	}}

	fail := func(existing *domain.Settlement) error {
		rep.Outcome = domain.OutcomeTargetUnavailable
		if existing != nil {
			rep.TargetID = existing.ID
			rep.DefenderID = existing.OwnerID
		}
		if err := army.Terminate(); err != nil {
			return err
		}
		if err := r.tx.SaveArmy(ctx, army); err != nil {
			return wrapInfra("save_army", err)
		}
		a.arrived(r, 0, map[string]any{
			"mission": string(domain.MissionSettle),
			"outcome": string(rep.Outcome),
			"report":  rep.ID,
		})
		r.report = rep
		return nil
	}

	existing, found, err := r.tx.FindSettlementAt(ctx, army.Dest())
	if err != nil {
		return wrapInfra("find_settlement_at", err)
	}
	if found {
		return fail(existing)
	}

	id, err := a.IDs.NextID()
	if err != nil {
		return wrapInfra("next_id", err)
	}
	s := &domain.Settlement{
		ID:            domain.SettlementID(id),
		OwnerID:       army.OwnerID,
		Name:          fmt.Sprintf("村庄(%d,%d)", army.DestX, army.DestY),
		X:             army.DestX,
		Y:             army.DestY,
		Loyalty:       domain.MaxLoyalty,
		UpgradeSlots:  r.rules.DefaultUpgradeSlots,
		Buildings:     map[domain.BuildingType]int{},
		LastAccrualAt: r.at,
		CreatedAt:     r.at,
	}
	s.RecomputeDerived(a.Catalog)
	s.Deposit(army.Resources)
	if err := r.tx.CreateSettlement(ctx, s); err != nil {
		if isCode(err, domain.ErrCoordinateTaken) {
			return fail(nil)
		}
		return wrapInfra("create_settlement", err)
	}
	if err := r.tx.SaveGarrison(ctx, s.ID, domain.Garrison{}); err != nil {
		return wrapInfra("save_garrison", err)
	}

	rep.Outcome = domain.OutcomeSettled
	rep.TargetID = s.ID
	if err := army.Terminate(); err != nil {
		return err
	}
	if err := r.tx.SaveArmy(ctx, army); err != nil {
		return wrapInfra("save_army", err)
	}
	a.arrived(r, s.ID, map[string]any{
		"mission": string(domain.MissionSettle),
		"outcome": string(rep.Outcome),
		"report":  rep.ID,
	})
	r.events.Add(domain.EventResourceUpdated, s.ID, 0, r.at, map[string]any{"stock": s.Stock.Round()}, s.OwnerID)
	r.report = rep
	return nil
}

// returnHome 回程到达：出发村庄仍归军队主人时部队入驻军、资源入库；易主则部队和资源丢失。
func (a *Arrival) returnHome(ctx context.Context, r *arrivalRun) error {
	army := r.army
	origin, err := r.tx.LockSettlement(ctx, army.OriginID)
	if err != nil {
		if isCode(err, domain.ErrSettlementNotFound) {
			return integrity("return", ReasonOriginMissing, err)
		}
		return wrapInfra("lock_settlement", err)
	}
	troops, cargo := army.Troops.Clone(), army.Resources
	data := map[string]any{"mission": string(domain.MissionReturn), "troops": troops, "resources": cargo}

	if origin.OwnerID != army.OwnerID {
		data["lost"] = true
		if err := army.Terminate(); err != nil {
			return err
		}
		if err := r.tx.SaveArmy(ctx, army); err != nil {
			return wrapInfra("save_army", err)
		}
		a.arrived(r, origin.ID, data)
		return nil
	}

	if err := a.accrueLocked(ctx, r.tx, origin, r.at); err != nil {
		return err
	}
	g, err := r.tx.LoadGarrison(ctx, origin.ID)
	if err != nil {
		return wrapInfra("load_garrison", err)
	}
	g.Deposit(troops)
	if err := r.tx.SaveGarrison(ctx, origin.ID, g); err != nil {
		return wrapInfra("save_garrison", err)
	}
	if overflow := origin.Deposit(cargo); !overflow.IsZero() {
		data["overflow"] = overflow.Round()
	}
	if err := army.Terminate(); err != nil {
		return err
	}
	if err := r.tx.SaveArmy(ctx, army); err != nil {
		return wrapInfra("save_army", err)
	}
	a.arrived(r, origin.ID, data)
	r.events.Add(domain.EventResourceUpdated, origin.ID, 0, r.at, map[string]any{"stock": origin.Stock.Round()}, origin.OwnerID)
	return a.refreshUpkeep(ctx, r.tx, origin)
}

package app

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"Hegemony/internal/game/domain"
)

func TestRaid_场景B_掠夺按库存比例且回城入库(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 100})
	h.village(2, 8, 0, 10, domain.Resources{Wood: 4000, Clay: 2000, Iron: 2000, Crop: 2000}, domain.Troops{"guard": 50})
	// 产粮抵掉 50 守军的耗粮，到达时库存仍是 4000:2000:2000:2000
	s := h.settlement(2)
	s.Production = domain.Resources{Crop: 50}
	h.store.Seed(s, h.store.Garrison(2))
	a := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: domain.Point{X: 0, Y: 10}, Mission: domain.MissionRaid, Troops: domain.Troops{"raider": 100}})

	h.arriveAll(a.ArrivesAt)
	back := h.army(a.ID)
	if back.Status != domain.ArmyReturning || back.Mission != domain.MissionReturn {
		t.Fatalf("期望突袭后回程, got=%s/%s", back.Status, back.Mission)
	}
	loot := back.Resources
	if loot.Total() > 5000 || loot.Total() > back.Troops.Carry(h.catalog) {
		t.Fatalf("期望掠夺量不超过负重, loot=%v carry=%v", loot.Total(), back.Troops.Carry(h.catalog))
	}
	if loot.Wood != 2*loot.Clay || loot.Clay != loot.Iron || loot.Iron != loot.Crop {
		t.Fatalf("期望按 4:2:2:2 分摊, got=%+v", loot)
	}
	target := h.settlement(2)
	want := domain.Resources{Wood: 4000, Clay: 2000, Iron: 2000, Crop: 2000}.Sub(loot)
	if target.Stock != want {
		t.Fatalf("期望守方库存 = 原库存 - 掠夺, want=%+v got=%+v", want, target.Stock)
	}
	if got := h.store.Garrison(2).Available().Total(); got != 0 {
		t.Fatalf("期望守军全灭, got=%d", got)
	}

	reports := h.store.Outbox()
	if len(reports) != 1 || reports[0].ID != domain.ReportID(a.ID, a.ArrivesAt) {
		t.Fatalf("期望生成一份战报, got=%v", reports)
	}
	rep := reports[0]
	for _, p := range rep.Participants {
		for ut, n := range p.Committed {
			if p.Lost[ut]+p.Survived[ut] != n {
				t.Fatalf("期望 %s 守恒", ut)
			}
		}
	}
	if !rep.IsRecipient(7) || !rep.IsRecipient(8) {
		t.Fatalf("期望双方都是接收者, got=%v", rep.Recipients)
	}

	h.arriveAll(back.ArrivesAt)
	origin := h.settlement(1)
	if origin.Stock != loot {
		t.Fatalf("期望掠夺物入库, got=%+v", origin.Stock)
	}
	if got := h.store.Garrison(1).Available()["raider"]; got != back.Troops["raider"] {
		t.Fatalf("期望幸存部队回城, got=%d", got)
	}
	if h.army(a.ID).Status != domain.ArmyTerminated {
		t.Fatalf("期望回城后终结")
	}
}

func TestArrival_重复投递不重复生效(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 10})
	h.store.SeedArmy(domain.Army{
		ID: 77, OwnerID: 7, OriginID: 1, DestX: 0, DestY: 10,
		Mission: domain.MissionReturn, Troops: domain.Troops{"raider": 5},
		Resources: domain.Resources{Wood: 100}, DepartedAt: t0, ArrivesAt: t0.Add(time.Hour),
		IsReturning: true, Status: domain.ArmyReturning,
	})
	ctx := context.Background()
	token := "tok-dup"
	claimed, err := h.store.ClaimDueArmies(ctx, t0.Add(time.Hour), token, 10)
	if err != nil || len(claimed) != 1 {
		t.Fatalf("期望认领 1 支, got=%d err=%v", len(claimed), err)
	}
	arrival := NewArrival(h.deps)
	for i := 0; i < 2; i++ {
		if err := arrival.Process(ctx, claimed[0], token); err != nil {
			t.Fatalf("第 %d 次处理: %v", i, err)
		}
	}
	if got := h.store.Garrison(1).Available()["raider"]; got != 15 {
		t.Fatalf("期望只入驻一次 10+5, got=%d", got)
	}
	if got := h.settlement(1).Stock.Wood; got != 100 {
		t.Fatalf("期望资源只入库一次, got=%v", got)
	}
	again, _ := h.store.ClaimDueArmies(ctx, t0.Add(2*time.Hour), "tok-2", 10)
	if len(again) != 0 {
		t.Fatalf("期望终结后不能再被认领, got=%d", len(again))
	}
}

// 场景 C：同一时刻到达同一村庄的两支军队，id 小的先结算。
func runScenarioC(t *testing.T) (first, second domain.Army, reports []domain.Report) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 30})
	h.village(3, 9, 0, 20, domain.Resources{}, domain.Troops{"raider": 30})
	h.village(2, 8, 0, 10, domain.Resources{Wood: 3000, Clay: 3000, Iron: 3000, Crop: 3000}, domain.Troops{"guard": 10})
	at := t0.Add(100 * time.Second)
	// 先写入 id 大的，再写入 id 小的
	h.store.SeedArmy(domain.Army{ID: 200, OwnerID: 9, OriginID: 3, OriginY: 20, DestX: 0, DestY: 10, DestSettlementID: 2,
		Mission: domain.MissionRaid, Troops: domain.Troops{"raider": 30}, DepartedAt: t0, ArrivesAt: at, Status: domain.ArmyDispatched})
	h.store.SeedArmy(domain.Army{ID: 100, OwnerID: 7, OriginID: 1, DestX: 0, DestY: 10, DestSettlementID: 2,
		Mission: domain.MissionRaid, Troops: domain.Troops{"raider": 30}, DepartedAt: t0, ArrivesAt: at, Status: domain.ArmyDispatched})

	claimed := h.arriveAll(at)
	if len(claimed) != 2 || claimed[0].ID != 100 || claimed[1].ID != 200 {
		t.Fatalf("期望认领顺序 100,200, got=%v", claimed)
	}
	return h.army(100), h.army(200), h.store.Outbox()
}

func TestArrival_场景C_同时到达按id顺序结算(t *testing.T) {
	a1, b1, r1 := runScenarioC(t)
	if r1[0].ArmyID != 100 || r1[1].ArmyID != 200 {
		t.Fatalf("期望 100 的战报在前, got=%v,%v", r1[0].ArmyID, r1[1].ArmyID)
	}
	// 100 先打掉守军并抢走第一份，200 面对空村庄
	if len(r1[1].Participants) < 2 || r1[1].Participants[1].Committed.Total() != 0 {
		t.Fatalf("期望 200 到达时守军已被 100 消灭, got=%+v", r1[1].Participants)
	}
	if a1.Resources.Total() <= 0 || b1.Resources.Total() <= 0 {
		t.Fatalf("期望两支都有掠夺")
	}
	for i := 0; i < 3; i++ {
		a2, b2, r2 := runScenarioC(t)
		if !reflect.DeepEqual(a1, a2) || !reflect.DeepEqual(b1, b2) || !reflect.DeepEqual(r1, r2) {
			t.Fatalf("期望第 %d 次重放结果一致", i)
		}
	}
}

func TestArrival_两个实例各认领一支_仍按id顺序结算(t *testing.T) {
	_, _, want := runScenarioC(t)

	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 30})
	h.village(3, 9, 0, 20, domain.Resources{}, domain.Troops{"raider": 30})
	h.village(2, 8, 0, 10, domain.Resources{Wood: 3000, Clay: 3000, Iron: 3000, Crop: 3000}, domain.Troops{"guard": 10})
	at := t0.Add(100 * time.Second)
	h.store.SeedArmy(domain.Army{ID: 200, OwnerID: 9, OriginID: 3, OriginY: 20, DestX: 0, DestY: 10, DestSettlementID: 2,
		Mission: domain.MissionRaid, Troops: domain.Troops{"raider": 30}, DepartedAt: t0, ArrivesAt: at, Status: domain.ArmyDispatched})
	h.store.SeedArmy(domain.Army{ID: 100, OwnerID: 7, OriginID: 1, DestX: 0, DestY: 10, DestSettlementID: 2,
		Mission: domain.MissionRaid, Troops: domain.Troops{"raider": 30}, DepartedAt: t0, ArrivesAt: at, Status: domain.ArmyDispatched})

	ctx := context.Background()
	c1, err := h.store.ClaimDueArmies(ctx, at, "inst1", 1)
	if err != nil || len(c1) != 1 || c1[0].ID != 100 {
		t.Fatalf("期望 inst1 认领到 100, got=%v err=%v", c1, err)
	}
	c2, err := h.store.ClaimDueArmies(ctx, at, "inst2", 1)
	if err != nil || len(c2) != 1 || c2[0].ID != 200 {
		t.Fatalf("期望 inst2 认领到 200, got=%v err=%v", c2, err)
	}

	// inst2 先跑：100 还没结算，200 让出认领
	arrival := NewArrival(h.deps)
	if err := arrival.Process(ctx, c2[0], "inst2"); !errors.Is(err, domain.ErrArrivalDeferred) {
		t.Fatalf("期望 ARRIVAL_DEFERRED, got=%v", err)
	}
	if got := h.army(200); got.Status != domain.ArmyDispatched || got.ClaimToken != "" {
		t.Fatalf("期望 200 回到 dispatched 且无认领, got=%s/%q", got.Status, got.ClaimToken)
	}
	if n := len(h.store.Outbox()); n != 0 {
		t.Fatalf("期望让出时不生成战报, got=%d", n)
	}
	if got := h.store.Garrison(2).Available()["guard"]; got != 10 {
		t.Fatalf("期望守军未动, got=%d", got)
	}

	if err := arrival.Process(ctx, c1[0], "inst1"); err != nil {
		t.Fatalf("期望 100 正常结算, got=%v", err)
	}
	again, err := h.store.ClaimDueArmies(ctx, at, "inst2-next", 10)
	if err != nil || len(again) != 1 || again[0].ID != 200 {
		t.Fatalf("期望下一轮重新认领 200, got=%v err=%v", again, err)
	}
	if err := arrival.Process(ctx, again[0], "inst2-next"); err != nil {
		t.Fatalf("期望 200 正常结算, got=%v", err)
	}

	got := h.store.Outbox()
	if len(got) != 2 || got[0].ArmyID != 100 || got[1].ArmyID != 200 {
		t.Fatalf("期望战报顺序 100,200, got=%v", got)
	}
	for i := range got {
		if got[i].Outcome != want[i].Outcome || got[i].Loot != want[i].Loot ||
			!reflect.DeepEqual(got[i].Participants, want[i].Participants) {
			t.Fatalf("期望第 %d 份战报与单实例结算一致, want=%+v got=%+v", i, want[i], got[i])
		}
	}
}

func TestArrival_更早的到达已失败不阻塞后来者(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{})
	h.village(2, 8, 0, 10, domain.Resources{}, domain.Troops{})
	at := t0.Add(time.Hour)
	h.store.SeedArmy(domain.Army{ID: 5, OwnerID: 7, OriginID: 1, DestX: 0, DestY: 10, DestSettlementID: 2,
		Mission: domain.MissionSupport, Troops: domain.Troops{"guard": 1}, DepartedAt: t0, ArrivesAt: at.Add(-time.Minute),
		Status: domain.ArmyArrived, ClaimToken: "dead", ClaimedAt: at, Fault: "boom"})
	h.store.SeedArmy(domain.Army{ID: 6, OwnerID: 7, OriginID: 1, DestX: 0, DestY: 10, DestSettlementID: 2,
		Mission: domain.MissionSupport, Troops: domain.Troops{"guard": 2}, DepartedAt: t0, ArrivesAt: at,
		Status: domain.ArmyDispatched})

	h.arriveAll(at)
	if got := h.army(6); got.Status != domain.ArmyStationed {
		t.Fatalf("期望 6 驻扎, got=%s", got.Status)
	}
}

func TestAttack_默认不掠夺_开启后掠夺(t *testing.T) {
	run := func(loots bool) (domain.Army, domain.Report, domain.Settlement) {
		h := newHarness(t)
		h.rules.AttackLoots = loots
		h.rebuild()
		h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 100})
		h.village(2, 8, 0, 10, domain.Resources{Wood: 2000, Clay: 1000}, domain.Troops{"guard": 5})
		a := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: domain.Point{X: 0, Y: 10}, Mission: domain.MissionAttack, Troops: domain.Troops{"raider": 100}})
		h.arriveAll(a.ArrivesAt)
		rep := h.store.Outbox()[0]
		if rep.Outcome != domain.OutcomeAttackerWon {
			t.Fatalf("期望进攻方获胜, got=%s", rep.Outcome)
		}
		return h.army(a.ID), rep, h.settlement(2)
	}

	back, rep, target := run(false)
	if !back.Resources.IsZero() || !rep.Loot.IsZero() {
		t.Fatalf("期望默认攻击不掠夺, cargo=%+v loot=%+v", back.Resources, rep.Loot)
	}
	if target.Stock.Wood != 2000 || target.Stock.Clay != 1000 {
		t.Fatalf("期望守方木泥不变, got=%+v", target.Stock)
	}

	back, rep, target = run(true)
	if back.Resources.Total() <= 0 || back.Resources != rep.Loot {
		t.Fatalf("期望开启后带回战报里的掠夺, cargo=%+v loot=%+v", back.Resources, rep.Loot)
	}
	if target.Stock.Wood != 2000-rep.Loot.Wood || target.Stock.Clay != 1000-rep.Loot.Clay {
		t.Fatalf("期望守方库存扣掉掠夺, got=%+v loot=%+v", target.Stock, rep.Loot)
	}
}

func TestRaid_按可掠夺库存比例分摊(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 20})
	h.village(2, 8, 0, 10, domain.Resources{Wood: 3000, Clay: 1500, Iron: 1000}, nil)
	s := h.settlement(2)
	s.StashCap = 1000
	h.store.Seed(s, nil)

	a := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: domain.Point{X: 0, Y: 10}, Mission: domain.MissionRaid, Troops: domain.Troops{"raider": 20}})
	h.arriveAll(a.ArrivesAt)

	// 可掠夺 2000:500:0:0，负重 1000
	want := domain.Resources{Wood: 800, Clay: 200}
	if got := h.army(a.ID).Resources; got != want {
		t.Fatalf("期望按可掠夺量分摊, want=%+v got=%+v", want, got)
	}
	if got := h.settlement(2).Stock; got != (domain.Resources{Wood: 2200, Clay: 1300, Iron: 1000}) {
		t.Fatalf("期望受保护的部分不动, got=%+v", got)
	}
}

func TestConquer_场景D_忠诚度40降到10不易主(t *testing.T) {
	h := newHarness(t)
	h.rules.LoyaltyRegenPerHour = 0
	h.rebuild()
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 20, "chief": 1})
	h.village(2, 8, 0, 10, domain.Resources{}, nil)
	s := h.settlement(2)
	s.Loyalty = 40
	h.store.Seed(s, nil)

	a := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: domain.Point{X: 0, Y: 10}, Mission: domain.MissionConquer, Troops: domain.Troops{"raider": 20, "chief": 1}})
	h.arriveAll(a.ArrivesAt)

	target := h.settlement(2)
	if target.Loyalty != 10 || target.OwnerID != 8 {
		t.Fatalf("期望忠诚度 10 且不易主, got loyalty=%v owner=%d", target.Loyalty, target.OwnerID)
	}
	back := h.army(a.ID)
	if back.Status != domain.ArmyReturning {
		t.Fatalf("期望剩余部队回程, got=%s", back.Status)
	}
	if back.Troops["chief"] != 0 || back.Troops["raider"] != 20 {
		t.Fatalf("期望 chief 被消耗、raider 全部返回, got=%v", back.Troops)
	}
	rep := h.store.Outbox()[0]
	if rep.LoyaltyBefore != 40 || rep.LoyaltyAfter != 10 || rep.Conquered {
		t.Fatalf("期望战报记录 40->10 且未占领, got=%+v", rep)
	}
	if _, ok := h.notifier.Find(domain.EventSettlementConquered); ok {
		t.Fatalf("期望未发出 SettlementConquered")
	}
}

func TestConquer_忠诚度归零易主并驻扎(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 20, "chief": 1})
	h.village(2, 8, 0, 10, domain.Resources{Wood: 500}, nil)
	s := h.settlement(2)
	s.Loyalty = 20
	h.store.Seed(s, nil)

	// 被占领村庄里排着的训练要作废
	h.store.Seed(withStock(h.settlement(2), domain.Resources{Wood: 5000, Clay: 5000, Iron: 5000, Crop: 5000}), nil)
	item, err := NewConstruction(h.deps).StartTraining(context.Background(), 8, 2, "guard", 3)
	if err != nil {
		t.Fatalf("start training: %v", err)
	}

	a := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: domain.Point{X: 0, Y: 10}, Mission: domain.MissionConquer, Troops: domain.Troops{"raider": 20, "chief": 1}})
	h.arriveAll(a.ArrivesAt)

	target := h.settlement(2)
	if target.OwnerID != 7 {
		t.Fatalf("期望易主给 7, got=%d", target.OwnerID)
	}
	if target.Loyalty != h.rules.LoyaltyAfterConquest {
		t.Fatalf("期望忠诚度重置为 %v, got=%v", h.rules.LoyaltyAfterConquest, target.Loyalty)
	}
	st := h.army(a.ID)
	if st.Status != domain.ArmyStationed || st.Troops["chief"] != 0 || st.Troops["raider"] != 20 {
		t.Fatalf("期望 chief 消耗、其余驻扎, got=%s %v", st.Status, st.Troops)
	}
	if _, ok := h.store.Training(item.ID); ok {
		t.Fatalf("期望训练队列作废")
	}
	if g := h.store.Garrison(2); g["guard"].InTraining != 0 {
		t.Fatalf("期望训练中数量清零, got=%+v", g)
	}
	ev, ok := h.notifier.Find(domain.EventSettlementConquered)
	if !ok || len(ev.Recipients) != 2 {
		t.Fatalf("期望通知新旧主人, got=%+v", ev)
	}
	if !h.store.Outbox()[0].Conquered {
		t.Fatalf("期望战报标记占领")
	}
}

func withStock(s domain.Settlement, r domain.Resources) domain.Settlement {
	s.Stock = r
	return s
}

func TestAttack_攻城器械拆墙(t *testing.T) {
	h := newHarness(t)
	h.rules.WallDamagePerSiege = 0.5
	h.rebuild()
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"raider": 50, "ram": 4})
	h.village(2, 8, 0, 4, domain.Resources{Wood: 1000}, domain.Troops{"guard": 5})
	s := h.settlement(2)
	s.Buildings[domain.Wall] = 3
	s.WallLevel = 3
	h.store.Seed(s, h.store.Garrison(2))

	a := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: domain.Point{X: 0, Y: 4}, Mission: domain.MissionAttack, Troops: domain.Troops{"raider": 50, "ram": 4}})
	h.arriveAll(a.ArrivesAt)
	rep := h.store.Outbox()[0]
	survivedRams := rep.Participants[0].Survived["ram"]
	wantAfter := 3 - survivedRams/2
	if wantAfter < 0 {
		wantAfter = 0
	}
	if rep.WallBefore != 3 || rep.WallAfter != wantAfter || h.settlement(2).WallLevel != wantAfter {
		t.Fatalf("期望城墙 3 -> %d, got=%d->%d", wantAfter, rep.WallBefore, rep.WallAfter)
	}
	if !h.army(a.ID).Resources.IsZero() {
		t.Fatalf("期望攻击默认不掠夺")
	}
}

func TestSettle_抢占坐标_后到者失败并生成报告(t *testing.T) {
	h := newHarness(t)
	rich := domain.Resources{Wood: 2000, Clay: 2000, Iron: 2000, Crop: 2000}
	h.village(1, 7, 0, 0, rich, domain.Troops{"settler": 3})
	h.village(2, 9, 0, 20, rich, domain.Troops{"settler": 3})
	dest := domain.Point{X: 0, Y: 10}

	a := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: dest, Mission: domain.MissionSettle, Troops: domain.Troops{"settler": 3}})
	b := h.dispatch(DispatchCommand{PlayerID: 9, OriginID: 2, Dest: dest, Mission: domain.MissionSettle, Troops: domain.Troops{"settler": 3}})
	if !a.ArrivesAt.Equal(b.ArrivesAt) {
		t.Fatalf("期望同时到达")
	}
	if got := h.settlement(1).Stock.Wood; got != 2000-h.rules.SettleResources.Wood {
		t.Fatalf("期望派出开拓时扣资源, got=%v", got)
	}

	h.arriveAll(a.ArrivesAt)
	founded, ok := h.store.SettlementAt(dest)
	if !ok || founded.OwnerID != 7 {
		t.Fatalf("期望 id 小的先到者建村, got=%+v", founded)
	}
	if founded.Stock.Wood != h.rules.SettleResources.Wood || founded.Loyalty != domain.MaxLoyalty {
		t.Fatalf("期望携带资源入库且忠诚度满, got=%+v", founded)
	}
	if founded.WarehouseCap != 800 || founded.Production.Wood != 10 {
		t.Fatalf("期望按建筑 0 级重算派生属性, got=%+v", founded)
	}
	reports := h.store.Outbox()
	if len(reports) != 2 || reports[0].Outcome != domain.OutcomeSettled || reports[1].Outcome != domain.OutcomeTargetUnavailable {
		t.Fatalf("期望一成一败, got=%v", reports)
	}
	if h.army(b.ID).Status != domain.ArmyTerminated || !h.army(b.ID).Troops.IsEmpty() {
		t.Fatalf("期望失败方开拓者丢失")
	}
}

func TestScout_完整情报与降级(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{}, domain.Troops{"pathfind": 10})
	h.village(2, 8, 0, 10, domain.Resources{Wood: 321}, domain.Troops{"guard": 12})
	a := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: domain.Point{X: 0, Y: 10}, Mission: domain.MissionScout, Troops: domain.Troops{"pathfind": 4}})
	h.arriveAll(a.ArrivesAt)

	rep := h.store.Outbox()[0]
	if rep.Kind != domain.ReportScout || rep.Scout == nil || rep.Scout.Level != domain.ScoutFull {
		t.Fatalf("期望完整侦察, got=%+v", rep.Scout)
	}
	if rep.Scout.Garrison["guard"] != 12 || rep.Scout.Stock == nil || rep.Scout.Stock.Wood != 321 {
		t.Fatalf("期望看到驻军与库存, got=%+v", rep.Scout)
	}
	if rep.IsRecipient(8) {
		t.Fatalf("期望守方没有反侦察时不知情")
	}

	// 守方有 6 个侦察兵，与进攻方 6 个相当，达到拦截阈值
	g := h.store.Garrison(2)
	g.Deposit(domain.Troops{"pathfind": 6})
	h.store.Seed(h.settlement(2), g)
	b := h.dispatch(DispatchCommand{PlayerID: 7, OriginID: 1, Dest: domain.Point{X: 0, Y: 10}, Mission: domain.MissionScout, Troops: domain.Troops{"pathfind": 6}})
	h.arriveAll(b.ArrivesAt)
	rep = h.store.Outbox()[1]
	if rep.Scout.Level != domain.ScoutBlocked {
		t.Fatalf("期望 6 vs 6 被拦截, got=%s", rep.Scout.Level)
	}
	if !rep.IsRecipient(8) || rep.Scout.Stock != nil {
		t.Fatalf("期望拦截时守方收到报告且没有情报, got=%+v", rep)
	}
	if h.army(b.ID).Status != domain.ArmyTerminated {
		t.Fatalf("期望侦察兵全灭后终结")
	}
}

func TestReturn_出发村庄易主时部队与资源丢失(t *testing.T) {
	h := newHarness(t)
	h.village(1, 9, 0, 0, domain.Resources{}, nil)
	h.store.SeedArmy(domain.Army{
		ID: 88, OwnerID: 7, OriginID: 1, Mission: domain.MissionReturn,
		Troops: domain.Troops{"raider": 5}, Resources: domain.Resources{Crop: 50},
		DepartedAt: t0, ArrivesAt: t0.Add(time.Minute), IsReturning: true, Status: domain.ArmyReturning,
	})
	h.arriveAll(t0.Add(time.Minute))
	if got := h.store.Garrison(1).Available().Total(); got != 0 {
		t.Fatalf("期望部队不进入别人的驻军, got=%d", got)
	}
	if got := h.settlement(1).Stock.Crop; got != 0 {
		t.Fatalf("期望资源不入别人的仓库, got=%v", got)
	}
	if h.army(88).Status != domain.ArmyTerminated {
		t.Fatalf("期望终结")
	}
	if _, ok := h.notifier.Find(domain.EventArmyArrived); !ok {
		t.Fatalf("期望仍然发出 ArmyArrived")
	}
}

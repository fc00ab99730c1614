package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"Hegemony/internal/game/domain"
)

var plenty = domain.Resources{Wood: 5000, Clay: 5000, Iron: 5000, Crop: 5000}

func TestTraining_串行队列同一轮连续完成(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, plenty, nil)
	c := NewConstruction(h.deps)
	ctx := context.Background()

	first, err := c.StartTraining(ctx, 7, 1, "guard", 2)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := c.StartTraining(ctx, 7, 1, "guard", 3)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if first.Status != domain.QueueActive || !first.EndsAt.Equal(t0.Add(2*time.Minute)) {
		t.Fatalf("期望第一条立即开始, got=%s ends=%v", first.Status, first.EndsAt)
	}
	if second.Status != domain.QueueQueued {
		t.Fatalf("期望第二条排队, got=%s", second.Status)
	}
	if got := h.settlement(1).Stock.Wood; got != 5000-50*5 {
		t.Fatalf("期望下单时扣费, got=%v", got)
	}
	if g := h.store.Garrison(1); g["guard"].InTraining != 5 || g["guard"].Count != 0 {
		t.Fatalf("期望训练中 5, got=%+v", g["guard"])
	}

	now := t0.Add(10 * time.Minute)
	claimed, err := h.store.ClaimDueTraining(ctx, now, "tok-a", 10)
	if err != nil || len(claimed) != 1 || claimed[0].ID != first.ID {
		t.Fatalf("期望只认领进行中的第一条, got=%v err=%v", claimed, err)
	}
	done, err := c.CompleteTraining(ctx, claimed[0], "tok-a", now)
	if err != nil || done != 2 {
		t.Fatalf("期望一轮完成 2 条, done=%d err=%v", done, err)
	}
	it, _ := h.store.Training(second.ID)
	if it.Status != domain.QueueDone || !it.StartedAt.Equal(first.EndsAt) || !it.EndsAt.Equal(t0.Add(5*time.Minute)) {
		t.Fatalf("期望第二条从第一条结束时刻开始, got=%+v", it)
	}
	if g := h.store.Garrison(1); g["guard"].Count != 5 || g["guard"].InTraining != 0 {
		t.Fatalf("期望 5 个入营, got=%+v", g["guard"])
	}
	if got := h.settlement(1).CropUpkeep; got != 5 {
		t.Fatalf("期望耗粮随入营更新为 5, got=%v", got)
	}
	n := 0
	for _, k := range h.notifier.Kinds() {
		if k == domain.EventTrainingCompleted {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("期望 2 个 TrainingCompleted, got=%d", n)
	}

	// 重复投递
	again, err := c.CompleteTraining(ctx, claimed[0], "tok-a", now)
	if err != nil || again != 0 {
		t.Fatalf("期望重复处理无效果, done=%d err=%v", again, err)
	}
	if g := h.store.Garrison(1); g["guard"].Count != 5 {
		t.Fatalf("期望不重复入营, got=%+v", g["guard"])
	}
}

func TestTraining_链上后一条未到期则只激活(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, plenty, nil)
	c := NewConstruction(h.deps)
	ctx := context.Background()

	first, _ := c.StartTraining(ctx, 7, 1, "guard", 1)
	second, _ := c.StartTraining(ctx, 7, 1, "guard", 10)
	now := first.EndsAt
	claimed, _ := h.store.ClaimDueTraining(ctx, now, "tok-a", 10)
	done, err := c.CompleteTraining(ctx, claimed[0], "tok-a", now)
	if err != nil || done != 1 {
		t.Fatalf("期望完成 1 条, done=%d err=%v", done, err)
	}
	it, _ := h.store.Training(second.ID)
	if it.Status != domain.QueueActive || !it.EndsAt.Equal(now.Add(10*time.Minute)) {
		t.Fatalf("期望第二条开始计时, got=%+v", it)
	}
}

func TestTraining_取消(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, plenty, nil)
	c := NewConstruction(h.deps)
	ctx := context.Background()

	active, _ := c.StartTraining(ctx, 7, 1, "guard", 1)
	queued, _ := c.StartTraining(ctx, 7, 1, "guard", 4)

	if err := c.CancelTraining(ctx, 8, queued.ID); !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("期望非主人不能取消, got=%v", err)
	}
	if err := c.CancelTraining(ctx, 7, active.ID); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Fatalf("期望进行中的不能取消, got=%v", err)
	}
	if err := c.CancelTraining(ctx, 7, queued.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := h.settlement(1).Stock.Wood; got != 5000-50 {
		t.Fatalf("期望退回排队条目费用, got=%v", got)
	}
	if _, ok := h.store.Training(queued.ID); ok {
		t.Fatalf("期望条目被删除")
	}
	if g := h.store.Garrison(1); g["guard"].InTraining != 1 {
		t.Fatalf("期望只剩进行中的 1 个, got=%+v", g["guard"])
	}
}

func TestTraining_下单校验(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{Wood: 60, Clay: 60, Iron: 60, Crop: 60}, nil)
	c := NewConstruction(h.deps)
	ctx := context.Background()

	cases := []struct {
		name   string
		player domain.PlayerID
		unit   domain.UnitType
		count  int
		want   *domain.Error
	}{
		{"数量为0", 7, "guard", 0, domain.ErrInvalidCommand},
		{"未知兵种", 7, "dragon", 1, domain.ErrInvalidCommand},
		{"非主人", 8, "guard", 1, domain.ErrNotOwner},
		{"资源不足", 7, "guard", 2, domain.ErrInsufficientResources},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.StartTraining(ctx, tc.player, 1, tc.unit, tc.count); !errors.Is(err, tc.want) {
				t.Fatalf("期望 %s, got=%v", tc.want.Code(), err)
			}
		})
	}
	if got := h.settlement(1).Stock.Wood; got != 60 {
		t.Fatalf("期望失败不扣费, got=%v", got)
	}
}

func TestUpgrade_并行槽位与派生属性重算(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, plenty, nil)
	s := h.settlement(1)
	s.UpgradeSlots = 2
	h.store.Seed(s, nil)
	c := NewConstruction(h.deps)
	ctx := context.Background()

	w1, err := c.StartUpgrade(ctx, 7, 1, domain.Woodcutter)
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	w2, _ := c.StartUpgrade(ctx, 7, 1, domain.Woodcutter)
	crop, _ := c.StartUpgrade(ctx, 7, 1, domain.Cropland)
	if w1.TargetLevel != 1 || w2.TargetLevel != 2 {
		t.Fatalf("期望目标等级累加, got=%d,%d", w1.TargetLevel, w2.TargetLevel)
	}
	if w1.Status != domain.QueueActive || w2.Status != domain.QueueActive || crop.Status != domain.QueueQueued {
		t.Fatalf("期望两个槽位并行、第三条排队, got=%s,%s,%s", w1.Status, w2.Status, crop.Status)
	}
	if _, err := c.StartUpgrade(ctx, 7, 1, domain.Woodcutter); !errors.Is(err, domain.ErrInvalidCommand) {
		t.Fatalf("期望超过最高等级被拒绝, got=%v", err)
	}

	now := w1.EndsAt
	claimed, _ := h.store.ClaimDueUpgrades(ctx, now, "tok-u", 10)
	if len(claimed) != 1 || claimed[0].ID != w1.ID {
		t.Fatalf("期望认领 w1, got=%v", claimed)
	}
	done, err := c.CompleteUpgrade(ctx, claimed[0], "tok-u", now)
	if err != nil || done != 1 {
		t.Fatalf("期望完成 1 条, done=%d err=%v", done, err)
	}
	got := h.settlement(1)
	if got.Buildings[domain.Woodcutter] != 1 || got.Production.Wood != 20 {
		t.Fatalf("期望伐木场 1 级、木材产量 20, got=%+v", got)
	}
	next, _ := h.store.Upgrade(crop.ID)
	if next.Status != domain.QueueActive || !next.StartedAt.Equal(now) {
		t.Fatalf("期望空出的槽位启动排队条目, got=%+v", next)
	}
	if _, ok := h.notifier.Find(domain.EventConstructionCompleted); !ok {
		t.Fatalf("期望发出 ConstructionCompleted")
	}
}

func TestUpgrade_储量按旧产量结算到完成时刻(t *testing.T) {
	h := newHarness(t)
	h.village(1, 7, 0, 0, domain.Resources{Wood: 200, Clay: 200}, nil)
	s := h.settlement(1)
	s.Production = domain.Resources{Wood: 10}
	h.store.Seed(s, nil)
	c := NewConstruction(h.deps)
	ctx := context.Background()

	w1, _ := c.StartUpgrade(ctx, 7, 1, domain.Woodcutter)
	// 很晚才被调度：完成时刻之前按 10/h，之后按 20/h
	now := w1.EndsAt.Add(time.Hour)
	claimed, _ := h.store.ClaimDueUpgrades(ctx, now, "tok-u", 10)
	if _, err := c.CompleteUpgrade(ctx, claimed[0], "tok-u", now); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := NewAccrual(h.deps).Accrue(ctx, 1, now); err != nil {
		t.Fatalf("accrue: %v", err)
	}
	want := 100 + 10.0/6 + 20
	if wood := h.settlement(1).Stock.Wood; math.Abs(wood-want) > 1e-9 {
		t.Fatalf("期望木材 %v, got=%v", want, wood)
	}
}

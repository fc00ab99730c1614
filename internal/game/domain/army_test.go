package domain

import (
	"errors"
	"testing"
	"time"
)

var at = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func claimed(id ArmyID, returning bool) *Army {
	a := &Army{ID: id, Status: ArmyDispatched, IsReturning: returning, ArrivesAt: at}
	if returning {
		a.Status = ArmyReturning
	}
	if err := a.Claim("tok", at); err != nil {
		panic(err)
	}
	return a
}

func TestRelease_未标记失败时拒绝(t *testing.T) {
	a := claimed(1, false)
	err := a.Release()
	if !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("期望 INVALID_COMMAND, got=%v", err)
	}
	if a.Status != ArmyArrived || a.ClaimToken != "tok" {
		t.Fatalf("期望认领保持不变, got=%+v", a)
	}

	a.MarkFaulted("boom")
	if err := a.Release(); err != nil {
		t.Fatalf("期望已失败的军队可以放开, got=%v", err)
	}
	if a.Status != ArmyDispatched || a.ClaimToken != "" || a.Fault != "" {
		t.Fatalf("期望回到 dispatched 并清掉失败原因, got=%+v", a)
	}
}

func TestYield_回到原状态(t *testing.T) {
	a := claimed(1, true)
	if err := a.Yield("other"); err == nil {
		t.Fatalf("期望别的 token 不能让出")
	}
	if err := a.Yield("tok"); err != nil {
		t.Fatalf("yield: %v", err)
	}
	if a.Status != ArmyReturning || a.ClaimToken != "" || !a.ClaimedAt.IsZero() {
		t.Fatalf("期望回到 returning 且无认领, got=%+v", a)
	}
	if err := a.Claim("tok2", at); err != nil {
		t.Fatalf("期望让出后可再次认领, got=%v", err)
	}
}

func TestSameBound(t *testing.T) {
	attack := &Army{DestSettlementID: 2, DestX: 5, DestY: 5}
	home := &Army{IsReturning: true, OriginID: 2, OriginX: 5, OriginY: 5, DestSettlementID: 9}
	other := &Army{DestSettlementID: 3, DestX: 5, DestY: 5}
	settleA := &Army{DestX: 7, DestY: 7}
	settleB := &Army{DestX: 7, DestY: 7}
	settleC := &Army{DestX: 7, DestY: 8}

	if !attack.SameBound(home) {
		t.Fatalf("期望回程与攻击落在同一村庄")
	}
	if attack.SameBound(other) {
		t.Fatalf("期望不同村庄不算同一落点")
	}
	if !settleA.SameBound(settleB) || settleA.SameBound(settleC) {
		t.Fatalf("期望开拓按坐标比较")
	}
	if settleA.SameBound(&Army{DestSettlementID: 4, DestX: 7, DestY: 7}) {
		t.Fatalf("期望开拓与已有村庄的到达分开")
	}
}

func TestArrivesBefore_同时到达按id(t *testing.T) {
	a := &Army{ID: 100, ArrivesAt: at}
	b := &Army{ID: 200, ArrivesAt: at}
	c := &Army{ID: 50, ArrivesAt: at.Add(time.Second)}
	if !a.ArrivesBefore(b) || b.ArrivesBefore(a) {
		t.Fatalf("期望同时到达 id 小的在前")
	}
	if !b.ArrivesBefore(c) {
		t.Fatalf("期望先比到达时间")
	}
	if a.ArrivesBefore(a) {
		t.Fatalf("期望自己不排在自己前面")
	}
}

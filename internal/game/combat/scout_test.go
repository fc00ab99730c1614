package combat

import (
	"testing"

	"Hegemony/internal/game/domain"
)

func TestScout_无反侦察时完整情报(t *testing.T) {
	r := newResolver()
	res := r.Scout(Group{Troops: domain.Troops{"pathfind": 5}}, []Group{{Troops: domain.Troops{"guard": 100}}}, 1)
	if res.Level != domain.ScoutFull {
		t.Fatalf("期望 full, got=%s", res.Level)
	}
	if res.Attacker.Lost.Total() != 0 {
		t.Fatalf("期望无损失, got=%v", res.Attacker.Lost)
	}
}

func TestScout_反侦察降级(t *testing.T) {
	r := newResolver()
	res := r.Scout(Group{Troops: domain.Troops{"pathfind": 10}}, []Group{{Troops: domain.Troops{"pathfind": 6}}}, 1)
	if res.Level != domain.ScoutDegraded {
		t.Fatalf("期望 degraded, ratio=%v got=%s", res.Ratio, res.Level)
	}
	p := res.Attacker
	if p.Lost["pathfind"]+p.Survived["pathfind"] != 10 {
		t.Fatalf("期望侦察兵守恒, got=%v/%v", p.Lost, p.Survived)
	}
	if p.Survived.Total() == 0 {
		t.Fatalf("期望降级时仍有幸存")
	}
}

func TestScout_反侦察拦截全灭(t *testing.T) {
	r := newResolver()
	res := r.Scout(Group{Troops: domain.Troops{"pathfind": 10}}, []Group{{Troops: domain.Troops{"pathfind": 4}}, {ArmyID: 5, Troops: domain.Troops{"pathfind": 6}}}, 1)
	if res.Level != domain.ScoutBlocked {
		t.Fatalf("期望 blocked, ratio=%v got=%s", res.Ratio, res.Level)
	}
	if res.Attacker.Survived.Total() != 0 || res.Attacker.Lost["pathfind"] != 10 {
		t.Fatalf("期望侦察兵全灭, got=%+v", res.Attacker)
	}
}

func TestScout_阈值可配置(t *testing.T) {
	rules := domain.DefaultRules()
	rules.ScoutBlockRatio = 2
	rules.ScoutDegradeRatio = 1.5
	r := NewResolver(stats, rules)
	res := r.Scout(Group{Troops: domain.Troops{"pathfind": 10}}, []Group{{Troops: domain.Troops{"pathfind": 10}}}, 1)
	if res.Level != domain.ScoutFull {
		t.Fatalf("期望阈值调高后 ratio=1 为 full, got=%s", res.Level)
	}
}

package combat

import (
	"math"
	"reflect"
	"testing"
	"time"

	"Hegemony/internal/game/domain"
)

type testStats map[domain.UnitType]domain.UnitStats

func (s testStats) Unit(t domain.UnitType) (domain.UnitStats, bool) {
	v, ok := s[t]
	return v, ok
}

var stats = testStats{
	"raider":   {Type: "raider", Class: domain.ClassInfantry, Attack: 10, DefenseInfantry: 2, DefenseCavalry: 2, Speed: 6, Carry: 50, Upkeep: 1},
	"guard":    {Type: "guard", Class: domain.ClassInfantry, Attack: 2, DefenseInfantry: 8, DefenseCavalry: 8, Speed: 5, Carry: 10, Upkeep: 1},
	"pikeman":  {Type: "pikeman", Class: domain.ClassInfantry, Attack: 1, DefenseInfantry: 2, DefenseCavalry: 10, Speed: 5, Upkeep: 1},
	"knight":   {Type: "knight", Class: domain.ClassCavalry, Attack: 12, DefenseInfantry: 4, DefenseCavalry: 3, Speed: 12, Carry: 80, Upkeep: 3},
	"ram":      {Type: "ram", Class: domain.ClassSiege, Attack: 3, DefenseInfantry: 1, DefenseCavalry: 1, Speed: 3, Upkeep: 3},
	"chief":    {Type: "chief", Class: domain.ClassChief, Attack: 4, DefenseInfantry: 4, DefenseCavalry: 4, Speed: 4, Upkeep: 5},
	"pathfind": {Type: "pathfind", Class: domain.ClassScout, Scouting: 20, Speed: 20, Upkeep: 1},
}

func newResolver() *Resolver {
	return NewResolver(stats, domain.DefaultRules())
}

func TestFight_场景B_进攻方胜且掠夺不超过负重(t *testing.T) {
	r := newResolver()
	b := Battle{
		Attacker:  Group{Role: domain.RoleAttacker, OwnerID: 1, Troops: domain.Troops{"raider": 100}},
		Defenders: []Group{{Role: domain.RoleGarrison, OwnerID: 2, Troops: domain.Troops{"guard": 50}}},
		Seed:      Seed(7, time.Unix(100, 0)),
	}
	res := r.Fight(b)
	if !res.AttackerWon {
		t.Fatalf("期望进攻方胜, attack=%v defense=%v", res.AttackPower, res.DefensePower)
	}
	if res.AttackPower != 1000 || res.DefensePower != 400 {
		t.Fatalf("期望 attack=1000 defense=400, got=%v %v", res.AttackPower, res.DefensePower)
	}
	if got := res.Defenders[0].Survived.Total(); got != 0 {
		t.Fatalf("期望败方全灭, got survived=%d", got)
	}
	want := math.Pow(0.4, 1.5) * 100
	lost := float64(res.Attacker.Lost["raider"])
	if lost < math.Floor(want) || lost > math.Ceil(want) {
		t.Fatalf("期望胜方损失在 [%v,%v], got=%v", math.Floor(want), math.Ceil(want), lost)
	}

	stock := domain.Resources{Wood: 4000, Clay: 2000, Iron: 2000, Crop: 2000}
	loot := r.Loot(res.Attacker.Survived, stock)
	carry := res.Attacker.Survived.Carry(stats)
	if loot.Total() > 5000 || loot.Total() > carry {
		t.Fatalf("期望掠夺量 <= min(5000, 负重 %v), got=%v", carry, loot.Total())
	}
	if carry-loot.Total() > 4 {
		t.Fatalf("期望负重基本装满, carry=%v loot=%v", carry, loot.Total())
	}
	if math.Abs(loot.Wood-2*loot.Clay) > 2 || math.Abs(loot.Clay-loot.Iron) > 1 {
		t.Fatalf("期望按库存比例 4:2:2:2 分摊, got=%+v", loot)
	}
}

func TestLoot_受可掠夺库存限制(t *testing.T) {
	r := newResolver()
	stock := domain.Resources{Wood: 100, Clay: 50, Iron: 0, Crop: 30}
	loot := r.Loot(domain.Troops{"raider": 100}, stock)
	if loot != stock {
		t.Fatalf("期望负重足够时全部抢走, got=%+v", loot)
	}
	for _, k := range domain.ResourceKinds {
		if loot.Get(k) > stock.Get(k) {
			t.Fatalf("期望 %s 不超过库存", k)
		}
	}
	if got := r.Loot(domain.Troops{"raider": 10}, domain.Resources{Crop: -20}); !got.IsZero() {
		t.Fatalf("期望负库存不可掠夺, got=%+v", got)
	}
}

func TestFight_兵力守恒(t *testing.T) {
	r := newResolver()
	for seed := int64(0); seed < 200; seed++ {
		b := Battle{
			Attacker: Group{Troops: domain.Troops{"raider": 37, "knight": 13, "ram": 3}},
			Defenders: []Group{
				{Role: domain.RoleGarrison, Troops: domain.Troops{"guard": 29, "pikeman": 11}},
				{Role: domain.RoleStationed, ArmyID: 9, Troops: domain.Troops{"guard": 7}},
			},
			WallLevel: int(seed % 5),
			Seed:      seed,
		}
		res := r.Fight(b)
		all := append([]domain.Participant{res.Attacker}, res.Defenders...)
		for _, p := range all {
			for ut, n := range p.Committed {
				if p.Lost[ut]+p.Survived[ut] != n {
					t.Fatalf("seed=%d %s: 期望 lost+survived=%d, got=%d+%d", seed, ut, n, p.Lost[ut], p.Survived[ut])
				}
			}
		}
	}
}

func TestFight_相同输入结果一致(t *testing.T) {
	r := newResolver()
	b := Battle{
		Attacker:  Group{Troops: domain.Troops{"raider": 60, "knight": 20}},
		Defenders: []Group{{Troops: domain.Troops{"guard": 40}}, {ArmyID: 3, Troops: domain.Troops{"pikeman": 30}}},
		WallLevel: 3,
		Seed:      Seed(42, time.UnixMilli(123456)),
	}
	first := r.Fight(b)
	for i := 0; i < 50; i++ {
		if got := r.Fight(b); !reflect.DeepEqual(first, got) {
			t.Fatalf("期望第 %d 次结果一致", i)
		}
	}
}

func TestFight_城墙加成(t *testing.T) {
	r := newResolver()
	b := Battle{
		Attacker:  Group{Troops: domain.Troops{"raider": 50}},
		Defenders: []Group{{Troops: domain.Troops{"guard": 50}}},
		WallLevel: 10,
	}
	res := r.Fight(b)
	want := 400 * math.Pow(1.03, 10)
	if math.Abs(res.DefensePower-want) > 1e-6 {
		t.Fatalf("期望 defense=%v, got=%v", want, res.DefensePower)
	}
	if res.AttackerWon {
		t.Fatalf("期望 500 < %v 时守方胜", want)
	}
	if res.Attacker.Survived.Total() != 0 {
		t.Fatalf("期望进攻方全灭")
	}
}

func TestFight_防御按进攻方步骑比例加权(t *testing.T) {
	r := newResolver()
	inf := r.DefensePower([]Group{{Troops: domain.Troops{"pikeman": 10}}}, 0, 1, 0)
	cav := r.DefensePower([]Group{{Troops: domain.Troops{"pikeman": 10}}}, 0, 0, 1)
	mix := r.DefensePower([]Group{{Troops: domain.Troops{"pikeman": 10}}}, 0, 0.5, 0.5)
	if inf != 20 || cav != 100 || mix != 60 {
		t.Fatalf("期望 20/100/60, got=%v/%v/%v", inf, cav, mix)
	}
}

func TestFight_无防御时进攻方无损胜利(t *testing.T) {
	r := newResolver()
	res := r.Fight(Battle{Attacker: Group{Troops: domain.Troops{"raider": 5}}})
	if !res.AttackerWon || res.Attacker.Lost.Total() != 0 {
		t.Fatalf("期望无损胜利, got=%+v", res.Attacker)
	}
}

func TestFight_加成生效(t *testing.T) {
	r := newResolver()
	b := Battle{
		Attacker:  Group{Troops: domain.Troops{"raider": 40}, Bonus: domain.Bonus{Attack: 1.1}},
		Defenders: []Group{{Troops: domain.Troops{"guard": 50}, Bonus: domain.Bonus{Defense: 1.2}}},
	}
	res := r.Fight(b)
	if math.Abs(res.AttackPower-440) > 1e-9 || math.Abs(res.DefensePower-480) > 1e-9 {
		t.Fatalf("期望 440/480, got=%v/%v", res.AttackPower, res.DefensePower)
	}
}

func TestWallDamage_LoyaltyDamage(t *testing.T) {
	r := newResolver()
	if got := r.WallDamage(domain.Troops{"ram": 25, "raider": 10}); got != 2 {
		t.Fatalf("期望拆 2 级, got=%d", got)
	}
	dmg, chiefs := r.LoyaltyDamage(domain.Troops{"chief": 1, "raider": 10})
	if dmg != 30 || chiefs["chief"] != 1 || len(chiefs) != 1 {
		t.Fatalf("期望 30 点 + 1 chief, got=%v %v", dmg, chiefs)
	}

	rules := domain.DefaultRules()
	rules.LoyaltyDecrement = map[domain.UnitType]float64{"chief": 22.5}
	dmg, _ = NewResolver(stats, rules).LoyaltyDamage(domain.Troops{"chief": 2})
	if dmg != 45 {
		t.Fatalf("期望按兵种覆盖 2*22.5, got=%v", dmg)
	}
}

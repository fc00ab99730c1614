package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/infra/persistence/memory"
)

type testCatalog struct {
	units     map[domain.UnitType]domain.UnitStats
	buildings map[domain.BuildingType]domain.BuildingDef
}

func (c testCatalog) Unit(t domain.UnitType) (domain.UnitStats, bool) {
	u, ok := c.units[t]
	return u, ok
}

func (c testCatalog) Building(t domain.BuildingType) (domain.BuildingDef, bool) {
	b, ok := c.buildings[t]
	return b, ok
}

func (c testCatalog) Buildings() []domain.BuildingDef {
	out := make([]domain.BuildingDef, 0, len(c.buildings))
	for _, t := range []domain.BuildingType{domain.Woodcutter, domain.ClayPit, domain.IronMine, domain.Cropland, domain.Warehouse, domain.Granary, domain.Wall, domain.Cranny} {
		if b, ok := c.buildings[t]; ok {
			out = append(out, b)
		}
	}
	return out
}

func levels(values ...float64) []domain.BuildingLevel {
	out := make([]domain.BuildingLevel, 0, len(values))
	for i, v := range values {
		out = append(out, domain.BuildingLevel{
			Level:        i,
			Cost:         domain.Resources{Wood: 100 * float64(i), Clay: 100 * float64(i)},
			BuildSeconds: 600 * i,
			Value:        v,
		})
	}
	return out
}

func newTestCatalog() testCatalog {
	return testCatalog{
		units: map[domain.UnitType]domain.UnitStats{
			"guard":    {Type: "guard", Class: domain.ClassInfantry, Attack: 2, DefenseInfantry: 8, DefenseCavalry: 8, Speed: 5, Carry: 10, Upkeep: 1, Cost: domain.Resources{Wood: 50, Clay: 30, Iron: 20, Crop: 10}, TrainSeconds: 60},
			"raider":   {Type: "raider", Class: domain.ClassInfantry, Attack: 10, DefenseInfantry: 2, DefenseCavalry: 2, Speed: 10, Carry: 50, Upkeep: 1, TrainSeconds: 60},
			"ram":      {Type: "ram", Class: domain.ClassSiege, Attack: 3, DefenseInfantry: 1, DefenseCavalry: 1, Speed: 4, Upkeep: 3, TrainSeconds: 300},
			"chief":    {Type: "chief", Class: domain.ClassChief, Attack: 4, DefenseInfantry: 4, DefenseCavalry: 4, Speed: 5, Upkeep: 5, TrainSeconds: 3600},
			"pathfind": {Type: "pathfind", Class: domain.ClassScout, Scouting: 20, Speed: 20, Upkeep: 1, TrainSeconds: 60},
			"settler":  {Type: "settler", Class: domain.ClassSettler, Attack: 0, DefenseInfantry: 1, DefenseCavalry: 1, Speed: 5, Carry: 3000, Upkeep: 1, TrainSeconds: 600},
		},
		buildings: map[domain.BuildingType]domain.BuildingDef{
			domain.Woodcutter: {Type: domain.Woodcutter, Effect: domain.EffectProduceWood, Levels: levels(10, 20, 40)},
			domain.Cropland:   {Type: domain.Cropland, Effect: domain.EffectProduceCrop, Levels: levels(10, 20, 40)},
			domain.Warehouse:  {Type: domain.Warehouse, Effect: domain.EffectWarehouse, Levels: levels(800, 1200, 1700)},
			domain.Granary:    {Type: domain.Granary, Effect: domain.EffectGranary, Levels: levels(800, 1200, 1700)},
			domain.Wall:       {Type: domain.Wall, Effect: domain.EffectWall, Levels: levels(0, 0, 0, 0, 0)},
			domain.Cranny:     {Type: domain.Cranny, Effect: domain.EffectStash, Levels: levels(0, 100, 200)},
		},
	}
}

type fakeIDs struct{ n atomic.Int64 }

func (f *fakeIDs) NextID() (int64, error) { return 1000 + f.n.Add(1), nil }
func (f *fakeIDs) NextToken() (string, error) {
	return fmt.Sprintf("tok-%d", f.n.Add(1)), nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Publish(events ...domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

func (n *recordingNotifier) Kinds() []domain.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.EventKind, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Kind)
	}
	return out
}

func (n *recordingNotifier) Find(kind domain.EventKind) (domain.Event, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.Kind == kind {
			return e, true
		}
	}
	return domain.Event{}, false
}

type staticRules struct{ r domain.Rules }

func (s staticRules) Rules() domain.Rules { return s.r }

// flatTerrain 100x100，每格代价 1。
type flatTerrain struct{}

func (flatTerrain) InBounds(p domain.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < 100 && p.Y < 100
}

func (flatTerrain) TravelCost(from, to domain.Point) float64 {
	return euclid(from, to)
}

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	t        *testing.T
	store    *memory.Store
	catalog  testCatalog
	clock    *fakeClock
	ids      *fakeIDs
	notifier *recordingNotifier
	rules    domain.Rules
	deps     Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		store:    memory.NewStore(),
		catalog:  newTestCatalog(),
		clock:    &fakeClock{now: t0},
		ids:      &fakeIDs{},
		notifier: &recordingNotifier{},
		rules:    domain.DefaultRules(),
	}
	h.rebuild()
	return h
}

func (h *harness) rebuild() {
	h.deps = Deps{
		Store:    h.store,
		Catalog:  h.catalog,
		Terrain:  flatTerrain{},
		Rules:    staticRules{r: h.rules},
		IDs:      h.ids,
		Clock:    h.clock,
		Notifier: h.notifier,
	}
}

// village 在 (x,y) 放一个村庄，仓库粮仓 10000，无产量。
func (h *harness) village(id domain.SettlementID, owner domain.PlayerID, x, y int, stock domain.Resources, troops domain.Troops) {
	g := domain.Garrison{}
	g.Deposit(troops)
	h.store.Seed(domain.Settlement{
		ID:            id,
		OwnerID:       owner,
		Name:          fmt.Sprintf("v%d", id),
		X:             x,
		Y:             y,
		Stock:         stock,
		WarehouseCap:  10000,
		GranaryCap:    10000,
		Loyalty:       domain.MaxLoyalty,
		UpgradeSlots:  1,
		Buildings:     map[domain.BuildingType]int{},
		LastAccrualAt: t0,
		CreatedAt:     t0,
	}, g)
}

func (h *harness) settlement(id domain.SettlementID) domain.Settlement {
	h.t.Helper()
	s, ok := h.store.Settlement(id)
	if !ok {
		h.t.Fatalf("期望村庄 %d 存在", id)
	}
	return s
}

func (h *harness) army(id domain.ArmyID) domain.Army {
	h.t.Helper()
	a, ok := h.store.Army(id)
	if !ok {
		h.t.Fatalf("期望军队 %d 存在", id)
	}
	return a
}

// arriveAll 认领所有到期军队并按认领顺序处理。
func (h *harness) arriveAll(now time.Time) []domain.Army {
	h.t.Helper()
	token, _ := h.ids.NextToken()
	claimed, err := h.store.ClaimDueArmies(context.Background(), now, token, 100)
	if err != nil {
		h.t.Fatalf("claim: %v", err)
	}
	arrival := NewArrival(h.deps)
	for _, a := range claimed {
		if err := arrival.Process(context.Background(), a, token); err != nil {
			h.t.Fatalf("期望到达处理成功, army=%d err=%v", a.ID, err)
		}
	}
	return claimed
}

func (h *harness) dispatch(cmd DispatchCommand) *domain.Army {
	h.t.Helper()
	a, err := NewMovement(h.deps).Dispatch(context.Background(), cmd)
	if err != nil {
		h.t.Fatalf("期望派兵成功, err=%v", err)
	}
	return a
}

var _ port.Notifier = (*recordingNotifier)(nil)

package domain

import (
	"math"
	"time"
)

type SettlementID int64

type PlayerID int64

// Point 地图坐标。
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

const MaxLoyalty = 100.0

// Settlement 村庄。只保存自身状态，驻军、队列、军队都按 id 关联。
type Settlement struct {
	ID      SettlementID
	OwnerID PlayerID
	Name    string
	X, Y    int

	Stock      Resources
	Production Resources // 每小时产量
	CropUpkeep float64   // 每小时耗粮，由驻军 + 外来驻防派生

	WarehouseCap float64 // 木/泥/铁上限
	GranaryCap   float64 // 粮上限
	StashCap     float64 // 每种资源受保护的数量

	WallLevel    int
	Loyalty      float64
	UpgradeSlots int
	Buildings    map[BuildingType]int

	LastAccrualAt time.Time
	CreatedAt     time.Time
}

func (s *Settlement) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

func (s *Settlement) Capacity(k ResourceKind) float64 {
	if k == Crop {
		return s.GranaryCap
	}
	return s.WarehouseCap
}

// NetCropRate 每小时粮食净变化。
func (s *Settlement) NetCropRate() float64 {
	return s.Production.Crop - s.CropUpkeep
}

// Accrue 把资源结算到 at：木泥铁 min(cap, stock + rate*h)，粮再减去耗粮，允许变负。
// 同时按 loyaltyRegen 每小时恢复忠诚度。at 不晚于上次结算时间时什么也不做。
func (s *Settlement) Accrue(at time.Time, loyaltyRegen float64) float64 {
	if !at.After(s.LastAccrualAt) {
		return 0
	}
	hours := at.Sub(s.LastAccrualAt).Hours()
	for _, k := range ResourceKinds {
		rate := s.Production.Get(k)
		if k == Crop {
			rate -= s.CropUpkeep
		}
		next := s.Stock.Get(k) + rate*hours
		if cp := s.Capacity(k); next > cp {
			// 已经超过上限的库存（容量被拆降）不额外削减
			next = math.Max(cp, math.Min(next, s.Stock.Get(k)))
		}
		s.Stock.Set(k, next)
	}
	if loyaltyRegen > 0 && s.Loyalty < MaxLoyalty {
		s.Loyalty = math.Min(MaxLoyalty, s.Loyalty+loyaltyRegen*hours)
	}
	s.LastAccrualAt = at
	return hours
}

// Starving 粮食为负。
func (s *Settlement) Starving() bool {
	return s.Stock.Crop < 0
}

// Withdraw 扣资源，不足返回 ErrInsufficientResources 且不修改。
func (s *Settlement) Withdraw(cost Resources) error {
	if !s.Stock.Covers(cost) {
		return ErrInsufficientResources.WithDataMap(map[string]any{
			"settlement_id": int64(s.ID),
			"want":          cost,
			"have":          s.Stock.Round(),
		})
	}
	s.Stock = s.Stock.Sub(cost)
	return nil
}

// Deposit 入库，超过容量的部分丢弃，返回丢弃量。
func (s *Settlement) Deposit(r Resources) Resources {
	var overflow Resources
	for _, k := range ResourceKinds {
		add := r.Get(k)
		if add <= 0 {
			continue
		}
		cur := s.Stock.Get(k)
		room := math.Max(0, s.Capacity(k)-cur)
		if add > room {
			overflow.Set(k, add-room)
			add = room
		}
		s.Stock.Set(k, cur+add)
	}
	return overflow
}

// Unprotected 不受地窖保护、可以被掠夺的库存。
func (s *Settlement) Unprotected() Resources {
	var out Resources
	for _, k := range ResourceKinds {
		out.Set(k, math.Max(0, s.Stock.Get(k)-s.StashCap))
	}
	return out
}

// Plunder 扣掉掠夺量，不会扣成负数。
func (s *Settlement) Plunder(loot Resources) {
	s.Stock = s.Stock.Sub(loot).Floor0()
}

// ReduceLoyalty 扣忠诚度，返回扣减后的值以及是否归零。
func (s *Settlement) ReduceLoyalty(amount float64) (after float64, zeroed bool) {
	s.Loyalty = math.Max(0, s.Loyalty-amount)
	return s.Loyalty, s.Loyalty <= 0
}

// TransferTo 易主。
func (s *Settlement) TransferTo(owner PlayerID, loyalty float64) {
	s.OwnerID = owner
	s.Loyalty = math.Min(MaxLoyalty, math.Max(0, loyalty))
}

func (s *Settlement) BuildingLevel(t BuildingType) int {
	return s.Buildings[t]
}

// RecomputeDerived 按建筑等级重算产量、容量、城墙和地窖。
func (s *Settlement) RecomputeDerived(buildings BuildingLookup) {
	if s.Buildings == nil {
		s.Buildings = make(map[BuildingType]int)
	}
	for _, def := range buildings.Buildings() {
		lvl, ok := def.Level(s.Buildings[def.Type])
		if !ok {
			continue
		}
		switch def.Effect {
		case EffectProduceWood:
			s.Production.Wood = lvl.Value
		case EffectProduceClay:
			s.Production.Clay = lvl.Value
		case EffectProduceIron:
			s.Production.Iron = lvl.Value
		case EffectProduceCrop:
			s.Production.Crop = lvl.Value
		case EffectWarehouse:
			s.WarehouseCap = lvl.Value
		case EffectGranary:
			s.GranaryCap = lvl.Value
		case EffectWall:
			s.WallLevel = s.Buildings[def.Type]
		case EffectStash:
			s.StashCap = lvl.Value
		}
	}
}

// DamageWall 城墙被攻城器械拆掉 levels 级，返回拆之前和之后的等级。
func (s *Settlement) DamageWall(levels int, buildings BuildingLookup) (before, after int) {
	before = s.Buildings[Wall]
	after = before - levels
	if after < 0 {
		after = 0
	}
	if s.Buildings == nil {
		s.Buildings = make(map[BuildingType]int)
	}
	s.Buildings[Wall] = after
	s.RecomputeDerived(buildings)
	return before, after
}

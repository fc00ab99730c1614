// Package catalog 把 gameconfig 里的静态表转换成领域类型。
package catalog

import (
	"fmt"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/shared/gameconfig/building"
	"Hegemony/internal/shared/gameconfig/unit"
)

// Catalog 只读，加载完成后可并发使用。
type Catalog struct {
	units     map[domain.UnitType]domain.UnitStats
	buildings map[domain.BuildingType]domain.BuildingDef
	order     []domain.BuildingType
}

var _ port.Catalog = (*Catalog)(nil)

// Load 依次加载兵种表和建筑表，路径为空时用默认 json。
func Load(unitPath, buildingPath string) (*Catalog, error) {
	if err := unit.Load(unitPath); err != nil {
		return nil, err
	}
	if err := building.Load(buildingPath); err != nil {
		return nil, err
	}
	return New(unit.UnitConf.All(), building.BuildingConf.All())
}

func New(units []unit.Unit, buildings []building.Building) (*Catalog, error) {
	c := &Catalog{
		units:     make(map[domain.UnitType]domain.UnitStats, len(units)),
		buildings: make(map[domain.BuildingType]domain.BuildingDef, len(buildings)),
	}
	for _, u := range units {
		c.units[domain.UnitType(u.Type)] = domain.UnitStats{
			Type:            domain.UnitType(u.Type),
			Class:           domain.UnitClass(u.Class),
			Attack:          u.Attack,
			DefenseInfantry: u.DefenseInfantry,
			DefenseCavalry:  u.DefenseCavalry,
			Scouting:        u.Scouting,
			Speed:           u.Speed,
			Carry:           u.Carry,
			Upkeep:          u.Upkeep,
			Cost:            toResources(u.Cost),
			TrainSeconds:    u.TrainSeconds,
		}
	}
	for _, b := range buildings {
		def := domain.BuildingDef{
			Type:   domain.BuildingType(b.Type),
			Effect: domain.BuildingEffect(b.Effect),
			Levels: make([]domain.BuildingLevel, 0, len(b.Levels)),
		}
		if !knownEffect(def.Effect) {
			return nil, fmt.Errorf("catalog: building %q has unknown effect %q", b.Type, b.Effect)
		}
		for _, l := range b.Levels {
			def.Levels = append(def.Levels, domain.BuildingLevel{
				Level:        l.Level,
				Cost:         toResources(l.Cost),
				BuildSeconds: l.BuildSeconds,
				Value:        l.Value,
			})
		}
		c.buildings[def.Type] = def
		c.order = append(c.order, def.Type)
	}
	return c, nil
}

func (c *Catalog) Unit(t domain.UnitType) (domain.UnitStats, bool) {
	s, ok := c.units[t]
	return s, ok
}

func (c *Catalog) Building(t domain.BuildingType) (domain.BuildingDef, bool) {
	b, ok := c.buildings[t]
	return b, ok
}

// Buildings 按配置文件里的顺序返回。
func (c *Catalog) Buildings() []domain.BuildingDef {
	out := make([]domain.BuildingDef, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.buildings[t])
	}
	return out
}

func toResources(c unit.Cost) domain.Resources {
	return domain.Resources{Wood: c.Wood, Clay: c.Clay, Iron: c.Iron, Crop: c.Crop}
}

func knownEffect(e domain.BuildingEffect) bool {
	switch e {
	case domain.EffectProduceWood, domain.EffectProduceClay, domain.EffectProduceIron, domain.EffectProduceCrop,
		domain.EffectWarehouse, domain.EffectGranary, domain.EffectWall, domain.EffectStash:
		return true
	}
	return false
}

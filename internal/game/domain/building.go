package domain

// BuildingType 建筑类型，每个村庄每种建筑只有一座，用等级表示。
type BuildingType string

const (
	Woodcutter BuildingType = "woodcutter"
	ClayPit    BuildingType = "clay_pit"
	IronMine   BuildingType = "iron_mine"
	Cropland   BuildingType = "cropland"
	Warehouse  BuildingType = "warehouse"
	Granary    BuildingType = "granary"
	Wall       BuildingType = "wall"
	Cranny     BuildingType = "cranny"
)

// BuildingEffect 建筑等级影响的派生属性。
type BuildingEffect string

const (
	EffectProduceWood BuildingEffect = "produce_wood"
	EffectProduceClay BuildingEffect = "produce_clay"
	EffectProduceIron BuildingEffect = "produce_iron"
	EffectProduceCrop BuildingEffect = "produce_crop"
	EffectWarehouse   BuildingEffect = "warehouse"
	EffectGranary     BuildingEffect = "granary"
	EffectWall        BuildingEffect = "wall"
	EffectStash       BuildingEffect = "stash"
)

// BuildingLevel 某一级的数值。Level 0 是未建造时的基础值（基础产量/基础容量）。
type BuildingLevel struct {
	Level        int
	Cost         Resources
	BuildSeconds int
	Value        float64
}

type BuildingDef struct {
	Type   BuildingType
	Effect BuildingEffect
	Levels []BuildingLevel
}

func (d BuildingDef) Level(n int) (BuildingLevel, bool) {
	for _, l := range d.Levels {
		if l.Level == n {
			return l, true
		}
	}
	return BuildingLevel{}, false
}

func (d BuildingDef) MaxLevel() int {
	m := 0
	for _, l := range d.Levels {
		if l.Level > m {
			m = l.Level
		}
	}
	return m
}

// BuildingLookup 静态建筑表。
type BuildingLookup interface {
	Building(t BuildingType) (BuildingDef, bool)
	Buildings() []BuildingDef
}

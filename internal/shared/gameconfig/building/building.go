package building

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"Hegemony/internal/shared/config"
	"Hegemony/internal/shared/gameconfig/unit"
)

const defaultFile = "building.json"

// 建筑等级影响的派生属性，与 domain.BuildingEffect 取值一致。
const (
	EffectProduceWood = "produce_wood"
	EffectProduceClay = "produce_clay"
	EffectProduceIron = "produce_iron"
	EffectProduceCrop = "produce_crop"
	EffectWarehouse   = "warehouse"
	EffectGranary     = "granary"
	EffectWall        = "wall"
	EffectStash       = "stash"
)

type Level struct {
	Level        int       `json:"level" mapstructure:"level"`
	Cost         unit.Cost `json:"cost" mapstructure:"cost"`
	BuildSeconds int       `json:"build_seconds" mapstructure:"build_seconds"` // 升到这一级需要的时间
	Value        float64   `json:"value" mapstructure:"value"`
}

type Building struct {
	Type   string  `json:"type" mapstructure:"type"`
	Name   string  `json:"name" mapstructure:"name"`
	Effect string  `json:"effect" mapstructure:"effect"`
	Levels []Level `json:"levels" mapstructure:"levels"`
}

type buildingConf struct {
	Title     string     `json:"title" mapstructure:"title"`
	List      []Building `json:"list" mapstructure:"list"`
	buildings map[string]*Building
}

var BuildingConf = &buildingConf{}

// Load 读取建筑表，path 为空时读包旁边的 building.json。
func Load(path string) error {
	if path == "" {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			return fmt.Errorf("load building config failed: runtime.Caller(0) error")
		}
		path = filepath.Join(filepath.Dir(file), defaultFile)
	}
	next := &buildingConf{}
	if err := config.Load(path, next); err != nil {
		return fmt.Errorf("load building config failed: %w", err)
	}
	if err := next.index(); err != nil {
		return err
	}
	BuildingConf = next
	return nil
}

func (c *buildingConf) index() error {
	c.buildings = make(map[string]*Building, len(c.List))
	for i := range c.List {
		b := &c.List[i]
		if _, exists := c.buildings[b.Type]; exists {
			return fmt.Errorf("load building config failed: duplicate building type=%q", b.Type)
		}
		sort.Slice(b.Levels, func(x, y int) bool { return b.Levels[x].Level < b.Levels[y].Level })
		// 0 级是未建造时的基础值，必须存在
		if len(b.Levels) == 0 || b.Levels[0].Level != 0 {
			return fmt.Errorf("load building config failed: building %q missing level 0", b.Type)
		}
		for n := range b.Levels {
			if b.Levels[n].Level != n {
				return fmt.Errorf("load building config failed: building %q level gap at %d", b.Type, n)
			}
		}
		c.buildings[b.Type] = b
	}
	return nil
}

func (c *buildingConf) Get(t string) (*Building, bool) {
	if c == nil || c.buildings == nil {
		return nil, false
	}
	b, ok := c.buildings[t]
	return b, ok
}

func (c *buildingConf) All() []Building {
	if c == nil {
		return nil
	}
	return c.List
}

func Get(t string) (*Building, bool) {
	return BuildingConf.Get(t)
}

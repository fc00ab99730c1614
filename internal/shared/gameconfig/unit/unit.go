package unit

import (
	"fmt"
	"path/filepath"
	"runtime"

	"Hegemony/internal/shared/config"
)

const defaultFile = "unit.json"

// 兵种大类，与 domain.UnitClass 取值一致。
const (
	ClassInfantry = "infantry"
	ClassCavalry  = "cavalry"
	ClassScout    = "scout"
	ClassSiege    = "siege"
	ClassChief    = "chief"
	ClassSettler  = "settler"
)

type Cost struct {
	Wood float64 `json:"wood" mapstructure:"wood"`
	Clay float64 `json:"clay" mapstructure:"clay"`
	Iron float64 `json:"iron" mapstructure:"iron"`
	Crop float64 `json:"crop" mapstructure:"crop"`
}

type Unit struct {
	Type            string  `json:"type" mapstructure:"type"`
	Name            string  `json:"name" mapstructure:"name"`
	Class           string  `json:"class" mapstructure:"class"`
	Attack          float64 `json:"attack" mapstructure:"attack"`
	DefenseInfantry float64 `json:"defense_infantry" mapstructure:"defense_infantry"`
	DefenseCavalry  float64 `json:"defense_cavalry" mapstructure:"defense_cavalry"`
	Scouting        float64 `json:"scouting" mapstructure:"scouting"`
	Speed           float64 `json:"speed" mapstructure:"speed"` // 格/小时
	Carry           float64 `json:"carry" mapstructure:"carry"`
	Upkeep          float64 `json:"upkeep" mapstructure:"upkeep"` // 粮/小时
	Cost            Cost    `json:"cost" mapstructure:"cost"`
	TrainSeconds    int     `json:"train_seconds" mapstructure:"train_seconds"`
}

type unitConf struct {
	Title string `json:"title" mapstructure:"title"`
	List  []Unit `json:"list" mapstructure:"list"`
	units map[string]*Unit
}

var UnitConf = &unitConf{}

// Load 读取兵种表，path 为空时读包旁边的 unit.json。
func Load(path string) error {
	if path == "" {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			return fmt.Errorf("load unit config failed: runtime.Caller(0) error")
		}
		path = filepath.Join(filepath.Dir(file), defaultFile)
	}
	next := &unitConf{}
	if err := config.Load(path, next); err != nil {
		return fmt.Errorf("load unit config failed: %w", err)
	}
	if err := next.index(); err != nil {
		return err
	}
	UnitConf = next
	return nil
}

func (c *unitConf) index() error {
	c.units = make(map[string]*Unit, len(c.List))
	for i := range c.List {
		u := &c.List[i]
		if u.Type == "" {
			return fmt.Errorf("load unit config failed: empty type at index %d", i)
		}
		if _, exists := c.units[u.Type]; exists {
			return fmt.Errorf("load unit config failed: duplicate unit type=%q", u.Type)
		}
		switch u.Class {
		case ClassInfantry, ClassCavalry, ClassScout, ClassSiege, ClassChief, ClassSettler:
		default:
			return fmt.Errorf("load unit config failed: unit %q has unknown class %q", u.Type, u.Class)
		}
		c.units[u.Type] = u
	}
	return nil
}

func (c *unitConf) Get(t string) (*Unit, bool) {
	if c == nil || c.units == nil {
		return nil, false
	}
	u, ok := c.units[t]
	return u, ok
}

func (c *unitConf) All() []Unit {
	if c == nil {
		return nil
	}
	return c.List
}

func Get(t string) (*Unit, bool) {
	return UnitConf.Get(t)
}

package terrain

import (
	"fmt"
	"path/filepath"
	"runtime"

	"Hegemony/internal/shared/config"
)

const defaultFile = "terrain.json"

// Region 矩形区域内每格的行军代价倍率，后出现的覆盖先出现的。
type Region struct {
	Name string  `json:"name" mapstructure:"name"`
	X    int     `json:"x" mapstructure:"x"`
	Y    int     `json:"y" mapstructure:"y"`
	W    int     `json:"w" mapstructure:"w"`
	H    int     `json:"h" mapstructure:"h"`
	Cost float64 `json:"cost" mapstructure:"cost"`
}

type terrainConf struct {
	Title       string   `json:"title" mapstructure:"title"`
	Width       int      `json:"width" mapstructure:"width"`
	Height      int      `json:"height" mapstructure:"height"`
	DefaultCost float64  `json:"default_cost" mapstructure:"default_cost"`
	Regions     []Region `json:"regions" mapstructure:"regions"`
}

var TerrainConf = &terrainConf{Width: 200, Height: 200, DefaultCost: 1}

func Load(path string) error {
	if path == "" {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			return fmt.Errorf("load terrain config failed: runtime.Caller(0) error")
		}
		path = filepath.Join(filepath.Dir(file), defaultFile)
	}
	next := &terrainConf{}
	if err := config.Load(path, next); err != nil {
		return fmt.Errorf("load terrain config failed: %w", err)
	}
	if next.Width <= 0 || next.Height <= 0 {
		return fmt.Errorf("load terrain config failed: invalid size %dx%d", next.Width, next.Height)
	}
	if next.DefaultCost <= 0 {
		next.DefaultCost = 1
	}
	for _, r := range next.Regions {
		if r.Cost <= 0 {
			return fmt.Errorf("load terrain config failed: region %q cost must be positive", r.Name)
		}
	}
	TerrainConf = next
	return nil
}

func (c *terrainConf) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.Width && y < c.Height
}

// CostAt 单格的代价倍率。
func (c *terrainConf) CostAt(x, y int) float64 {
	cost := c.DefaultCost
	for _, r := range c.Regions {
		if x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H {
			cost = r.Cost
		}
	}
	return cost
}

// Package terrain 地图边界与按地形加权的路程。
package terrain

import (
	"math"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
)

// Grid 由 gameconfig/terrain 提供的单格查询。
type Grid interface {
	InBounds(x, y int) bool
	CostAt(x, y int) float64
}

type Map struct {
	grid Grid
}

var _ port.TerrainProvider = (*Map)(nil)

func New(grid Grid) *Map {
	return &Map{grid: grid}
}

func (m *Map) InBounds(p domain.Point) bool {
	return m.grid.InBounds(p.X, p.Y)
}

// TravelCost 沿直线每格采样一次代价倍率，取平均后乘以直线距离。
func (m *Map) TravelCost(from, to domain.Point) float64 {
	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return 0
	}
	steps := int(math.Ceil(dist))
	total := 0.0
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		x := int(math.Round(float64(from.X) + dx*f))
		y := int(math.Round(float64(from.Y) + dy*f))
		total += m.grid.CostAt(x, y)
	}
	return dist * total / float64(steps)
}

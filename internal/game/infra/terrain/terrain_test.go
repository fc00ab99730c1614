package terrain

import (
	"math"
	"testing"

	"Hegemony/internal/game/domain"
)

// stripe x>=5 的格子代价 3。
type stripe struct{}

func (stripe) InBounds(x, y int) bool { return x >= 0 && y >= 0 && x < 10 && y < 10 }
func (stripe) CostAt(x, y int) float64 {
	if x >= 5 {
		return 3
	}
	return 1
}

func TestTravelCost(t *testing.T) {
	m := New(stripe{})
	if got := m.TravelCost(domain.Point{X: 0, Y: 0}, domain.Point{X: 0, Y: 4}); got != 4 {
		t.Fatalf("期望平地 4, got=%v", got)
	}
	// 经过 1..4 四格平地、5..8 四格山地
	got := m.TravelCost(domain.Point{X: 0, Y: 0}, domain.Point{X: 8, Y: 0})
	if math.Abs(got-16) > 1e-9 {
		t.Fatalf("期望 8 * (4*1+4*3)/8 = 16, got=%v", got)
	}
	if m.TravelCost(domain.Point{X: 1, Y: 1}, domain.Point{X: 1, Y: 1}) != 0 {
		t.Fatalf("期望原地为 0")
	}
	if m.InBounds(domain.Point{X: 10, Y: 0}) {
		t.Fatalf("期望越界")
	}
}

package domain

import "math"

// ResourceKind 四种资源。
type ResourceKind string

const (
	Wood ResourceKind = "wood"
	Clay ResourceKind = "clay"
	Iron ResourceKind = "iron"
	Crop ResourceKind = "crop"
)

// ResourceKinds 固定遍历顺序，所有按资源分配的计算都按这个顺序走。
var ResourceKinds = [4]ResourceKind{Wood, Clay, Iron, Crop}

// Resources 四种资源的数量，允许小数（按小时产出累加）。
type Resources struct {
	Wood float64 `json:"wood"`
	Clay float64 `json:"clay"`
	Iron float64 `json:"iron"`
	Crop float64 `json:"crop"`
}

func (r Resources) Get(k ResourceKind) float64 {
	switch k {
	case Wood:
		return r.Wood
	case Clay:
		return r.Clay
	case Iron:
		return r.Iron
	case Crop:
		return r.Crop
	}
	return 0
}

func (r *Resources) Set(k ResourceKind, v float64) {
	switch k {
	case Wood:
		r.Wood = v
	case Clay:
		r.Clay = v
	case Iron:
		r.Iron = v
	case Crop:
		r.Crop = v
	}
}

func (r Resources) Add(o Resources) Resources {
	return Resources{Wood: r.Wood + o.Wood, Clay: r.Clay + o.Clay, Iron: r.Iron + o.Iron, Crop: r.Crop + o.Crop}
}

func (r Resources) Sub(o Resources) Resources {
	return Resources{Wood: r.Wood - o.Wood, Clay: r.Clay - o.Clay, Iron: r.Iron - o.Iron, Crop: r.Crop - o.Crop}
}

func (r Resources) Scale(f float64) Resources {
	return Resources{Wood: r.Wood * f, Clay: r.Clay * f, Iron: r.Iron * f, Crop: r.Crop * f}
}

func (r Resources) Total() float64 {
	return r.Wood + r.Clay + r.Iron + r.Crop
}

// Covers 每种资源都不少于 cost。
func (r Resources) Covers(cost Resources) bool {
	for _, k := range ResourceKinds {
		if r.Get(k) < cost.Get(k) {
			return false
		}
	}
	return true
}

func (r Resources) IsZero() bool {
	return r.Wood == 0 && r.Clay == 0 && r.Iron == 0 && r.Crop == 0
}

// Floor0 把负数抹成 0。
func (r Resources) Floor0() Resources {
	out := r
	for _, k := range ResourceKinds {
		if out.Get(k) < 0 {
			out.Set(k, 0)
		}
	}
	return out
}

// Round 保留两位小数，用于报告展示，避免浮点尾巴。
func (r Resources) Round() Resources {
	var out Resources
	for _, k := range ResourceKinds {
		out.Set(k, math.Round(r.Get(k)*100)/100)
	}
	return out
}

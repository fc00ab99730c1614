package domain

import "sort"

// UnitType 兵种标识，对应静态兵种表里的 type。
type UnitType string

// UnitClass 兵种大类，决定攻防计算口径和任务合法性。
type UnitClass string

const (
	ClassInfantry UnitClass = "infantry"
	ClassCavalry  UnitClass = "cavalry"
	ClassScout    UnitClass = "scout"
	ClassSiege    UnitClass = "siege"
	ClassChief    UnitClass = "chief"
	ClassSettler  UnitClass = "settler"
)

// UnitStats 静态兵种属性。Speed 单位格/小时，Upkeep 单位粮/小时。
type UnitStats struct {
	Type            UnitType
	Class           UnitClass
	Attack          float64
	DefenseInfantry float64
	DefenseCavalry  float64
	Scouting        float64
	Speed           float64
	Carry           float64
	Upkeep          float64
	Cost            Resources
	TrainSeconds    int
}

// AttacksAsCavalry 攻击时按骑兵口径计算防御，其余一律按步兵口径。
func (s UnitStats) AttacksAsCavalry() bool {
	return s.Class == ClassCavalry || s.Class == ClassScout
}

// StatsLookup 按兵种取属性。
type StatsLookup interface {
	Unit(t UnitType) (UnitStats, bool)
}

// Troops 兵种 -> 数量。
type Troops map[UnitType]int

func (t Troops) Clone() Troops {
	out := make(Troops, len(t))
	for k, v := range t {
		if v != 0 {
			out[k] = v
		}
	}
	return out
}

func (t Troops) Total() int {
	n := 0
	for _, v := range t {
		n += v
	}
	return n
}

func (t Troops) IsEmpty() bool {
	return t.Total() == 0
}

// Types 返回数量非零的兵种，按字典序，保证遍历确定。
func (t Troops) Types() []UnitType {
	out := make([]UnitType, 0, len(t))
	for k, v := range t {
		if v > 0 {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t Troops) Add(o Troops) Troops {
	out := t.Clone()
	for k, v := range o {
		if v != 0 {
			out[k] += v
		}
	}
	return out
}

// Covers 每个兵种都不少于 o。
func (t Troops) Covers(o Troops) bool {
	for k, v := range o {
		if v > t[k] {
			return false
		}
	}
	return true
}

// Sub 扣减，不足时返回 ErrInsufficientTroops 且不修改。
func (t Troops) Sub(o Troops) (Troops, error) {
	if !t.Covers(o) {
		return t, ErrInsufficientTroops
	}
	out := t.Clone()
	for k, v := range o {
		out[k] -= v
		if out[k] == 0 {
			delete(out, k)
		}
	}
	return out, nil
}

// Valid 数量全部非负且至少一个正数。
func (t Troops) Valid() bool {
	total := 0
	for _, v := range t {
		if v < 0 {
			return false
		}
		total += v
	}
	return total > 0
}

// CountClass 统计某大类的数量，未知兵种不计。
func (t Troops) CountClass(stats StatsLookup, class UnitClass) int {
	n := 0
	for k, v := range t {
		if s, ok := stats.Unit(k); ok && s.Class == class {
			n += v
		}
	}
	return n
}

// OnlyClass 所有兵种都属于 class。
func (t Troops) OnlyClass(stats StatsLookup, class UnitClass) bool {
	for k, v := range t {
		if v == 0 {
			continue
		}
		s, ok := stats.Unit(k)
		if !ok || s.Class != class {
			return false
		}
	}
	return true
}

// Upkeep 每小时耗粮。
func (t Troops) Upkeep(stats StatsLookup) float64 {
	total := 0.0
	for k, v := range t {
		if s, ok := stats.Unit(k); ok {
			total += float64(v) * s.Upkeep
		}
	}
	return total
}

// Carry 总负重。
func (t Troops) Carry(stats StatsLookup) float64 {
	total := 0.0
	for k, v := range t {
		if s, ok := stats.Unit(k); ok {
			total += float64(v) * s.Carry
		}
	}
	return total
}

// SlowestSpeed 最慢兵种的速度；存在未知兵种或速度为 0 时返回 false。
func (t Troops) SlowestSpeed(stats StatsLookup) (float64, bool) {
	slowest := 0.0
	for _, k := range t.Types() {
		s, ok := stats.Unit(k)
		if !ok || s.Speed <= 0 {
			return 0, false
		}
		if slowest == 0 || s.Speed < slowest {
			slowest = s.Speed
		}
	}
	return slowest, slowest > 0
}

// Known 所有兵种都能在兵种表里查到。
func (t Troops) Known(stats StatsLookup) bool {
	for k := range t {
		if _, ok := stats.Unit(k); !ok {
			return false
		}
	}
	return true
}

// GarrisonEntry 驻军中某兵种的在营数量和训练中数量。
type GarrisonEntry struct {
	Count      int `json:"count"`
	InTraining int `json:"in_training"`
}

// Garrison 村庄驻军。
type Garrison map[UnitType]GarrisonEntry

func (g Garrison) Clone() Garrison {
	out := make(Garrison, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// Available 可调动的在营部队。
func (g Garrison) Available() Troops {
	out := make(Troops, len(g))
	for k, v := range g {
		if v.Count > 0 {
			out[k] = v.Count
		}
	}
	return out
}

// Deduct 派兵时扣减，不足返回 ErrInsufficientTroops 且不修改。
func (g Garrison) Deduct(t Troops) error {
	for k, v := range t {
		if v < 0 || g[k].Count < v {
			return ErrInsufficientTroops.WithData("unit", string(k)).WithData("want", v).WithData("have", g[k].Count)
		}
	}
	for k, v := range t {
		e := g[k]
		e.Count -= v
		g[k] = e
	}
	g.compact()
	return nil
}

func (g Garrison) Deposit(t Troops) {
	for k, v := range t {
		if v <= 0 {
			continue
		}
		e := g[k]
		e.Count += v
		g[k] = e
	}
}

func (g Garrison) StartTraining(t UnitType, n int) {
	e := g[t]
	e.InTraining += n
	g[t] = e
}

// CompleteTraining 训练完成：训练中 -> 在营。
func (g Garrison) CompleteTraining(t UnitType, n int) {
	e := g[t]
	e.InTraining -= n
	if e.InTraining < 0 {
		e.InTraining = 0
	}
	e.Count += n
	g[t] = e
}

// CancelTraining 撤销训练中的数量（取消排队 / 村庄易主）。
func (g Garrison) CancelTraining(t UnitType, n int) {
	e := g[t]
	e.InTraining -= n
	if e.InTraining < 0 {
		e.InTraining = 0
	}
	g[t] = e
	g.compact()
}

// Kill 按给定数量扣减在营部队（战斗/饥荒），不足部分按 0 处理。
func (g Garrison) Kill(t Troops) {
	for k, v := range t {
		e := g[k]
		e.Count -= v
		if e.Count < 0 {
			e.Count = 0
		}
		g[k] = e
	}
	g.compact()
}

func (g Garrison) compact() {
	for k, v := range g {
		if v.Count == 0 && v.InTraining == 0 {
			delete(g, k)
		}
	}
}

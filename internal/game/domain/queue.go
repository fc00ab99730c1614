package domain

import "time"

// QueueStatus 队列条目状态。queued 还没开始，active 正在计时，done 已完成。
type QueueStatus string

const (
	QueueQueued QueueStatus = "queued"
	QueueActive QueueStatus = "active"
	QueueDone   QueueStatus = "done"
)

type QueueItemID int64

// TrainingItem 训练队列条目，每个村庄串行。
type TrainingItem struct {
	ID           QueueItemID
	SettlementID SettlementID
	Unit         UnitType
	Count        int
	Cost         Resources // 整单费用，取消时原样退还
	Duration     time.Duration
	Seq          int64
	Status       QueueStatus
	StartedAt    time.Time
	EndsAt       time.Time
	ClaimToken   string
}

// UpgradeItem 建筑升级条目，同时进行的数量受 upgrade_slots 限制。
type UpgradeItem struct {
	ID           QueueItemID
	SettlementID SettlementID
	Building     BuildingType
	TargetLevel  int
	Cost         Resources
	Duration     time.Duration
	Seq          int64
	Status       QueueStatus
	StartedAt    time.Time
	EndsAt       time.Time
	ClaimToken   string
}

func (it *TrainingItem) Activate(at time.Time) {
	it.Status = QueueActive
	it.StartedAt = at
	it.EndsAt = at.Add(it.Duration)
}

func (it *TrainingItem) Due(now time.Time) bool {
	return it.Status == QueueActive && !it.EndsAt.After(now)
}

// Cancellable 只有还没开始的条目可以取消。
func (it *TrainingItem) Cancellable() bool {
	return it.Status == QueueQueued && it.ClaimToken == ""
}

func (it *UpgradeItem) Activate(at time.Time) {
	it.Status = QueueActive
	it.StartedAt = at
	it.EndsAt = at.Add(it.Duration)
}

func (it *UpgradeItem) Due(now time.Time) bool {
	return it.Status == QueueActive && !it.EndsAt.After(now)
}

// NextQueuedTraining 按 seq 取第一个排队中的训练条目。
func NextQueuedTraining(items []TrainingItem) (int, bool) {
	idx := -1
	for i := range items {
		if items[i].Status != QueueQueued {
			continue
		}
		if idx < 0 || items[i].Seq < items[idx].Seq {
			idx = i
		}
	}
	return idx, idx >= 0
}

// NextQueuedUpgrade 按 seq 取第一个排队中的升级条目。
func NextQueuedUpgrade(items []UpgradeItem) (int, bool) {
	idx := -1
	for i := range items {
		if items[i].Status != QueueQueued {
			continue
		}
		if idx < 0 || items[i].Seq < items[idx].Seq {
			idx = i
		}
	}
	return idx, idx >= 0
}

// ActiveUpgrades 正在进行的升级数量。
func ActiveUpgrades(items []UpgradeItem) int {
	n := 0
	for i := range items {
		if items[i].Status == QueueActive {
			n++
		}
	}
	return n
}

// PendingLevels 某建筑在队列里（排队 + 进行中）还有几级没完成。
func PendingLevels(items []UpgradeItem, b BuildingType) int {
	n := 0
	for i := range items {
		if items[i].Building == b && items[i].Status != QueueDone {
			n++
		}
	}
	return n
}

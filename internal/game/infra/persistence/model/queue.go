package model

import "time"

// TrainingItem 训练队列条目。
type TrainingItem struct {
	ID           int64      `gorm:"column:id;type:bigint;primaryKey;autoIncrement:false;comment:条目id" json:"id"`
	SettlementID int64      `gorm:"column:settlement_id;type:bigint;not null;index:idx_settlement;comment:村庄id" json:"settlement_id"`
	Unit         string     `gorm:"column:unit;type:varchar(32);not null;comment:兵种" json:"unit"`
	Count        int        `gorm:"column:count;type:int;not null;comment:数量" json:"count"`
	Cost         string     `gorm:"column:cost;type:varchar(256);comment:已扣费用json" json:"cost"`
	DurationMS   int64      `gorm:"column:duration_ms;type:bigint;not null;comment:耗时毫秒" json:"duration_ms"`
	Seq          int64      `gorm:"column:seq;type:bigint;not null;comment:入队顺序" json:"seq"`
	Status       string     `gorm:"column:status;type:varchar(16);not null;index:idx_due,priority:1;comment:queued/active/done" json:"status"`
	StartedAt    *time.Time `gorm:"column:started_at;type:datetime(3);default:NULL;comment:开始时间" json:"started_at"`
	EndsAt       *time.Time `gorm:"column:ends_at;type:datetime(3);default:NULL;index:idx_due,priority:2;comment:结束时间" json:"ends_at"`
	ClaimToken   string     `gorm:"column:claim_token;type:varchar(64);not null;default:'';comment:认领token" json:"claim_token"`
}

func (TrainingItem) TableName() string {
	return "training_item"
}

// UpgradeItem 建筑升级队列条目。
type UpgradeItem struct {
	ID           int64      `gorm:"column:id;type:bigint;primaryKey;autoIncrement:false;comment:条目id" json:"id"`
	SettlementID int64      `gorm:"column:settlement_id;type:bigint;not null;index:idx_settlement;comment:村庄id" json:"settlement_id"`
	Building     string     `gorm:"column:building;type:varchar(32);not null;comment:建筑" json:"building"`
	TargetLevel  int        `gorm:"column:target_level;type:int;not null;comment:目标等级" json:"target_level"`
	Cost         string     `gorm:"column:cost;type:varchar(256);comment:已扣费用json" json:"cost"`
	DurationMS   int64      `gorm:"column:duration_ms;type:bigint;not null;comment:耗时毫秒" json:"duration_ms"`
	Seq          int64      `gorm:"column:seq;type:bigint;not null;comment:入队顺序" json:"seq"`
	Status       string     `gorm:"column:status;type:varchar(16);not null;index:idx_due,priority:1;comment:queued/active/done" json:"status"`
	StartedAt    *time.Time `gorm:"column:started_at;type:datetime(3);default:NULL;comment:开始时间" json:"started_at"`
	EndsAt       *time.Time `gorm:"column:ends_at;type:datetime(3);default:NULL;index:idx_due,priority:2;comment:结束时间" json:"ends_at"`
	ClaimToken   string     `gorm:"column:claim_token;type:varchar(64);not null;default:'';comment:认领token" json:"claim_token"`
}

func (UpgradeItem) TableName() string {
	return "upgrade_item"
}

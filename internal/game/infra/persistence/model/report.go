package model

import "time"

// ReportOutbox 战报出库箱。Seq 自增保证投递按写入顺序。
type ReportOutbox struct {
	Seq         int64      `gorm:"column:seq;type:bigint;primaryKey;autoIncrement;comment:写入顺序" json:"seq"`
	ID          string     `gorm:"column:id;type:varchar(64);not null;uniqueIndex:uk_report;comment:战报id" json:"id"`
	ArmyID      int64      `gorm:"column:army_id;type:bigint;not null;comment:军队id" json:"army_id"`
	Payload     string     `gorm:"column:payload;type:mediumtext;comment:战报json" json:"payload"`
	OccurredAt  time.Time  `gorm:"column:occurred_at;type:datetime(3);not null;comment:发生时间" json:"occurred_at"`
	ClaimToken  string     `gorm:"column:claim_token;type:varchar(64);not null;default:'';comment:投递认领token" json:"claim_token"`
	DeliveredAt *time.Time `gorm:"column:delivered_at;type:datetime(3);default:NULL;index:idx_pending;comment:投递时间" json:"delivered_at"`
}

func (ReportOutbox) TableName() string {
	return "report_outbox"
}

// All 需要建表的模型。
func All() []any {
	return []any{&Settlement{}, &Garrison{}, &Army{}, &TrainingItem{}, &UpgradeItem{}, &ReportOutbox{}}
}

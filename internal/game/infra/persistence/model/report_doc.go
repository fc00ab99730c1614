package model

import "time"

// ReportDoc 玩家可读的战报，存 mongodb。正文整体存 json，只把查询字段展开。
type ReportDoc struct {
	ID         string    `bson:"_id"`
	Kind       string    `bson:"kind"`
	ArmyID     int64     `bson:"army_id"`
	OccurredAt time.Time `bson:"occurred_at"`
	Recipients []int64   `bson:"recipients"`
	ReadBy     []int64   `bson:"read_by"`
	Payload    string    `bson:"payload"`
}

package app

type Reason struct {
	Code    string
	Message string
}

func (r Reason) ReasonCode() string {
	return r.Code
}

func NewReason(c, m string) Reason {
	return Reason{Code: c, Message: m}
}

var (
	// 指令被拒绝的 reason，HTTP 层原样带给客户端。
	ReasonNotOwner          = NewReason("NOT_SETTLEMENT_OWNER", "不是该村庄的主人")
	ReasonNotArmyOwner      = NewReason("NOT_ARMY_OWNER", "不是该军队的主人")
	ReasonOutOfBounds       = NewReason("DEST_OUT_OF_BOUNDS", "目标坐标超出地图")
	ReasonSameTile          = NewReason("DEST_IS_ORIGIN", "目标就是出发村庄")
	ReasonNoTarget          = NewReason("DEST_NO_SETTLEMENT", "目标坐标没有村庄")
	ReasonTileOccupied      = NewReason("DEST_OCCUPIED", "目标坐标已有村庄")
	ReasonHostileOwn        = NewReason("HOSTILE_OWN_SETTLEMENT", "不能攻击自己的村庄")
	ReasonUnknownUnit       = NewReason("UNKNOWN_UNIT", "兵种不存在")
	ReasonBadCount          = NewReason("BAD_COUNT", "数量必须为正数")
	ReasonUnknownBuilding   = NewReason("UNKNOWN_BUILDING", "建筑不存在")
	ReasonMaxLevel          = NewReason("BUILDING_MAX_LEVEL", "建筑已满级")
	ReasonTrainingStarted   = NewReason("TRAINING_STARTED", "训练已开始，不能取消")
	ReasonNoSpeed           = NewReason("NO_TRAVEL_SPEED", "部队无法移动")
	ReasonNotTrainable      = NewReason("UNIT_NOT_TRAINABLE", "该兵种不能训练")
)

var (
	// 调度处理中的完整性 reason，用于告警与排障。
	ReasonUnknownMission  = NewReason("UNKNOWN_MISSION", "未知的任务类型")
	ReasonTargetMissing   = NewReason("TARGET_MISSING", "目标村庄不存在")
	ReasonOriginMissing   = NewReason("ORIGIN_MISSING", "出发村庄不存在")
	ReasonStateMismatch   = NewReason("STATE_MISMATCH", "条目状态与认领不一致")
	ReasonBuildingMissing = NewReason("BUILDING_DEF_MISSING", "建筑定义缺失")
)

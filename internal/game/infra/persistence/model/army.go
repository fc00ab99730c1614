package model

import "time"

// Army 行军中的军队。到达循环按 (arrives_at, id) 扫描，idx_due 覆盖认领条件。
type Army struct {
	ID               int64      `gorm:"column:id;type:bigint;primaryKey;autoIncrement:false;comment:军队id" json:"id"`
	OwnerID          int64      `gorm:"column:owner_id;type:bigint;not null;index:idx_owner;comment:主人" json:"owner_id"`
	OriginID         int64      `gorm:"column:origin_id;type:bigint;not null;comment:出发村庄" json:"origin_id"`
	OriginX          int        `gorm:"column:origin_x;type:int;not null;comment:出发横坐标" json:"origin_x"`
	OriginY          int        `gorm:"column:origin_y;type:int;not null;comment:出发纵坐标" json:"origin_y"`
	DestX            int        `gorm:"column:dest_x;type:int;not null;comment:目标横坐标" json:"dest_x"`
	DestY            int        `gorm:"column:dest_y;type:int;not null;comment:目标纵坐标" json:"dest_y"`
	DestSettlementID int64      `gorm:"column:dest_settlement_id;type:bigint;not null;default:0;index:idx_dest;comment:目标村庄，0 表示空地" json:"dest_settlement_id"`
	Mission          string     `gorm:"column:mission;type:varchar(16);not null;comment:任务" json:"mission"`
	Troops           string     `gorm:"column:troops;type:text;comment:兵种->数量 json" json:"troops"`
	ResWood          float64    `gorm:"column:res_wood;type:double;not null;default:0;comment:携带木材" json:"res_wood"`
	ResClay          float64    `gorm:"column:res_clay;type:double;not null;default:0;comment:携带泥土" json:"res_clay"`
	ResIron          float64    `gorm:"column:res_iron;type:double;not null;default:0;comment:携带铁矿" json:"res_iron"`
	ResCrop          float64    `gorm:"column:res_crop;type:double;not null;default:0;comment:携带粮食" json:"res_crop"`
	DepartedAt       time.Time  `gorm:"column:departed_at;type:datetime(3);not null;comment:出发时间" json:"departed_at"`
	ArrivesAt        time.Time  `gorm:"column:arrives_at;type:datetime(3);not null;index:idx_due,priority:2;comment:到达时间" json:"arrives_at"`
	ReturnsAt        *time.Time `gorm:"column:returns_at;type:datetime(3);default:NULL;comment:转为回程的时间" json:"returns_at"`
	IsReturning      bool       `gorm:"column:is_returning;type:tinyint(1);not null;default:0;comment:是否回程" json:"is_returning"`
	IsStationed      bool       `gorm:"column:is_stationed;type:tinyint(1);not null;default:0;comment:是否驻扎" json:"is_stationed"`
	Status           string     `gorm:"column:status;type:varchar(16);not null;index:idx_due,priority:1;comment:dispatched/arrived/stationed/returning/terminated" json:"status"`
	ClaimToken       string     `gorm:"column:claim_token;type:varchar(64);not null;default:'';comment:认领token" json:"claim_token"`
	ClaimedAt        *time.Time `gorm:"column:claimed_at;type:datetime(3);default:NULL;comment:认领时间" json:"claimed_at"`
	Fault            string     `gorm:"column:fault;type:varchar(512);not null;default:'';comment:处理失败原因" json:"fault"`
}

func (Army) TableName() string {
	return "army"
}

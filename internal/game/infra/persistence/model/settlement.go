package model

import "time"

// Settlement 村庄。(x, y) 唯一，开拓抢坐标靠唯一键冲突判定。
type Settlement struct {
	ID            int64     `gorm:"column:id;type:bigint;primaryKey;autoIncrement:false;comment:村庄id" json:"id"`
	OwnerID       int64     `gorm:"column:owner_id;type:bigint;not null;index:idx_owner;comment:主人" json:"owner_id"`
	Name          string    `gorm:"column:name;type:varchar(64);not null;default:'';comment:名称" json:"name"`
	X             int       `gorm:"column:x;type:int;not null;uniqueIndex:uk_coord,priority:1;comment:横坐标" json:"x"`
	Y             int       `gorm:"column:y;type:int;not null;uniqueIndex:uk_coord,priority:2;comment:纵坐标" json:"y"`
	StockWood     float64   `gorm:"column:stock_wood;type:double;not null;default:0;comment:木材库存" json:"stock_wood"`
	StockClay     float64   `gorm:"column:stock_clay;type:double;not null;default:0;comment:泥土库存" json:"stock_clay"`
	StockIron     float64   `gorm:"column:stock_iron;type:double;not null;default:0;comment:铁矿库存" json:"stock_iron"`
	StockCrop     float64   `gorm:"column:stock_crop;type:double;not null;default:0;comment:粮食库存，可为负" json:"stock_crop"`
	ProdWood      float64   `gorm:"column:prod_wood;type:double;not null;default:0;comment:木材每小时产量" json:"prod_wood"`
	ProdClay      float64   `gorm:"column:prod_clay;type:double;not null;default:0;comment:泥土每小时产量" json:"prod_clay"`
	ProdIron      float64   `gorm:"column:prod_iron;type:double;not null;default:0;comment:铁矿每小时产量" json:"prod_iron"`
	ProdCrop      float64   `gorm:"column:prod_crop;type:double;not null;default:0;comment:粮食每小时产量" json:"prod_crop"`
	CropUpkeep    float64   `gorm:"column:crop_upkeep;type:double;not null;default:0;comment:每小时耗粮" json:"crop_upkeep"`
	WarehouseCap  float64   `gorm:"column:warehouse_cap;type:double;not null;default:0;comment:仓库容量" json:"warehouse_cap"`
	GranaryCap    float64   `gorm:"column:granary_cap;type:double;not null;default:0;comment:粮仓容量" json:"granary_cap"`
	StashCap      float64   `gorm:"column:stash_cap;type:double;not null;default:0;comment:地窖保护量" json:"stash_cap"`
	WallLevel     int       `gorm:"column:wall_level;type:int;not null;default:0;comment:城墙等级" json:"wall_level"`
	Loyalty       float64   `gorm:"column:loyalty;type:double;not null;default:100;comment:忠诚度" json:"loyalty"`
	UpgradeSlots  int       `gorm:"column:upgrade_slots;type:int;not null;default:1;comment:并行升级槽位" json:"upgrade_slots"`
	Buildings     string    `gorm:"column:buildings;type:text;comment:建筑等级json" json:"buildings"`
	LastAccrualAt time.Time `gorm:"column:last_accrual_at;type:datetime(3);not null;comment:上次结算时间" json:"last_accrual_at"`
	CreatedAt     time.Time `gorm:"column:created_at;type:datetime(3);not null;comment:创建时间" json:"created_at"`
}

func (Settlement) TableName() string {
	return "settlement"
}

// Garrison 驻军，一个村庄一行。
type Garrison struct {
	SettlementID int64     `gorm:"column:settlement_id;type:bigint;primaryKey;autoIncrement:false;comment:村庄id" json:"settlement_id"`
	Troops       string    `gorm:"column:troops;type:text;comment:兵种->在营/训练中 json" json:"troops"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:datetime(3);comment:更新时间" json:"updated_at"`
}

func (Garrison) TableName() string {
	return "garrison"
}

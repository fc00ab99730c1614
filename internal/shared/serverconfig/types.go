package serverconfig

type Config struct {
	NodeID     int64            `yaml:"node_id" mapstructure:"node_id"`
	JWTSecret  string           `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	Storage    string           `yaml:"storage" mapstructure:"storage"` // mysql | memory
	MySQL      MySQLConfig      `yaml:"mysql" mapstructure:"mysql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb" mapstructure:"mongodb"`
	HTTPServer HTTPServerConfig `yaml:"httpserver" mapstructure:"httpserver"`
	GRPCServer GRPCServerConfig `yaml:"grpcserver" mapstructure:"grpcserver"`
	WS         WSConfig         `yaml:"ws" mapstructure:"ws"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Scheduler  SchedulerConfig  `yaml:"scheduler" mapstructure:"scheduler"`
	Rules      RulesConfig      `yaml:"rules" mapstructure:"rules"`
	Logic      LogicConfig      `yaml:"logic" mapstructure:"logic"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	Charset  string `yaml:"charset" mapstructure:"charset"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
	SlowMS   int    `yaml:"slow_ms" mapstructure:"slow_ms"`
	Migrate  bool   `yaml:"migrate" mapstructure:"migrate"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
	MaxPool         uint64 `yaml:"max_pool" mapstructure:"max_pool"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type GRPCServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type WSConfig struct {
	Path       string `yaml:"path" mapstructure:"path"`
	NeedSecret bool   `yaml:"need_secret" mapstructure:"need_secret"`
	OutBuffer  int    `yaml:"out_buffer" mapstructure:"out_buffer"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// SchedulerConfig 各循环的节拍，单位秒。
type SchedulerConfig struct {
	ArmyEverySec         int `yaml:"army_every_sec" mapstructure:"army_every_sec"`
	ConstructionEverySec int `yaml:"construction_every_sec" mapstructure:"construction_every_sec"`
	AccrualEverySec      int `yaml:"accrual_every_sec" mapstructure:"accrual_every_sec"`
	StarvationEverySec   int `yaml:"starvation_every_sec" mapstructure:"starvation_every_sec"`
	ReportEverySec       int `yaml:"report_every_sec" mapstructure:"report_every_sec"`
	BatchSize            int `yaml:"batch_size" mapstructure:"batch_size"`
}

// RulesConfig 是可热更新的数值规则，缺省值见 domain.DefaultRules。
type RulesConfig struct {
	WallBonusPerLevel       float64            `yaml:"wall_bonus_per_level" mapstructure:"wall_bonus_per_level"`
	LossExponent            float64            `yaml:"loss_exponent" mapstructure:"loss_exponent"`
	DefaultLoyaltyDecrement float64            `yaml:"default_loyalty_decrement" mapstructure:"default_loyalty_decrement"`
	LoyaltyDecrement        map[string]float64 `yaml:"loyalty_decrement" mapstructure:"loyalty_decrement"`
	LoyaltyAfterConquest    float64            `yaml:"loyalty_after_conquest" mapstructure:"loyalty_after_conquest"`
	LoyaltyRegenPerHour     float64            `yaml:"loyalty_regen_per_hour" mapstructure:"loyalty_regen_per_hour"`
	ScoutDegradeRatio       float64            `yaml:"scout_degrade_ratio" mapstructure:"scout_degrade_ratio"`
	ScoutBlockRatio         float64            `yaml:"scout_block_ratio" mapstructure:"scout_block_ratio"`
	SettlersRequired        int                `yaml:"settlers_required" mapstructure:"settlers_required"`
	SettleResources         map[string]float64 `yaml:"settle_resources" mapstructure:"settle_resources"`
	StarvationMaxKillRatio  float64            `yaml:"starvation_max_kill_ratio" mapstructure:"starvation_max_kill_ratio"`
	AttackLoots             bool               `yaml:"attack_loots" mapstructure:"attack_loots"`
	WallDamagePerSiege      float64            `yaml:"wall_damage_per_siege" mapstructure:"wall_damage_per_siege"`
	MinTravelSec            int                `yaml:"min_travel_sec" mapstructure:"min_travel_sec"`
	DefaultUpgradeSlots     int                `yaml:"default_upgrade_slots" mapstructure:"default_upgrade_slots"`
	// Bonus 按玩家覆盖的英雄/部族加成，key 为玩家 id。
	Bonus map[string]BonusConfig `yaml:"bonus" mapstructure:"bonus"`
}

type BonusConfig struct {
	Attack  float64 `yaml:"attack" mapstructure:"attack"`
	Defense float64 `yaml:"defense" mapstructure:"defense"`
	Speed   float64 `yaml:"speed" mapstructure:"speed"`
}

// LogicConfig 静态表路径，留空则读取 gameconfig 包旁的默认 json。
type LogicConfig struct {
	UnitData     string `yaml:"unit_data" mapstructure:"unit_data"`
	BuildingData string `yaml:"building_data" mapstructure:"building_data"`
	TerrainData  string `yaml:"terrain_data" mapstructure:"terrain_data"`
}

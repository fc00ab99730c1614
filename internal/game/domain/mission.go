package domain

// MissionKind 军队任务的持久化标识。
type MissionKind string

const (
	MissionRaid    MissionKind = "raid"
	MissionAttack  MissionKind = "attack"
	MissionConquer MissionKind = "conquer"
	MissionSupport MissionKind = "support"
	MissionScout   MissionKind = "scout"
	MissionSettle  MissionKind = "settle"
	MissionReturn  MissionKind = "return"
)

// Mission 是任务的封闭和类型：只有本包里的七个结构体实现它。
// 到达处理器对它做穷举 type switch，新增任务时编译期 default 分支会把遗漏暴露成完整性错误。
type Mission interface {
	Kind() MissionKind
	// Hostile 敌对任务会通知目标“遭到攻击”，且不能以自己的村庄为目标。
	Hostile() bool
	sealed()
}

type (
	Raid    struct{}
	Attack  struct{}
	Conquer struct{}
	Support struct{}
	Scout   struct{}
	Settle  struct{}
	Return  struct{}
)

func (Raid) Kind() MissionKind    { return MissionRaid }
func (Attack) Kind() MissionKind  { return MissionAttack }
func (Conquer) Kind() MissionKind { return MissionConquer }
func (Support) Kind() MissionKind { return MissionSupport }
func (Scout) Kind() MissionKind   { return MissionScout }
func (Settle) Kind() MissionKind  { return MissionSettle }
func (Return) Kind() MissionKind  { return MissionReturn }

func (Raid) Hostile() bool    { return true }
func (Attack) Hostile() bool  { return true }
func (Conquer) Hostile() bool { return true }
func (Support) Hostile() bool { return false }
func (Scout) Hostile() bool   { return true }
func (Settle) Hostile() bool  { return false }
func (Return) Hostile() bool  { return false }

func (Raid) sealed()    {}
func (Attack) sealed()  {}
func (Conquer) sealed() {}
func (Support) sealed() {}
func (Scout) sealed()   {}
func (Settle) sealed()  {}
func (Return) sealed()  {}

// ParseMission 把持久化的 kind 还原成任务。
func ParseMission(kind MissionKind) (Mission, error) {
	switch kind {
	case MissionRaid:
		return Raid{}, nil
	case MissionAttack:
		return Attack{}, nil
	case MissionConquer:
		return Conquer{}, nil
	case MissionSupport:
		return Support{}, nil
	case MissionScout:
		return Scout{}, nil
	case MissionSettle:
		return Settle{}, nil
	case MissionReturn:
		return Return{}, nil
	default:
		return nil, ErrInvalidMission.WithData("mission", string(kind))
	}
}

// ValidateComposition 任务与兵种组合是否合法：
//   - conquer 至少带一个 chief
//   - scout 只能是侦察兵
//   - settle 只能是开拓者，且不少于 settlersRequired
//   - 开拓者不参加其他任务
//   - return 不能直接下达
func ValidateComposition(m Mission, troops Troops, stats StatsLookup, settlersRequired int) error {
	if !troops.Valid() {
		return ErrInvalidCommand.WithData("reason", "empty_troops")
	}
	if !troops.Known(stats) {
		return ErrInvalidCommand.WithData("reason", "unknown_unit")
	}
	settlers := troops.CountClass(stats, ClassSettler)
	switch m.(type) {
	case Settle:
		if !troops.OnlyClass(stats, ClassSettler) {
			return ErrInvalidMission.WithData("reason", "settle_requires_only_settlers")
		}
		if settlers < settlersRequired {
			return ErrInvalidMission.WithData("reason", "not_enough_settlers").WithData("required", settlersRequired)
		}
		return nil
	case Return:
		return ErrInvalidMission.WithData("reason", "return_not_dispatchable")
	}
	if settlers > 0 {
		return ErrInvalidMission.WithData("reason", "settlers_only_settle")
	}
	switch m.(type) {
	case Conquer:
		if troops.CountClass(stats, ClassChief) == 0 {
			return ErrInvalidMission.WithData("reason", "conquer_requires_chief")
		}
	case Scout:
		if !troops.OnlyClass(stats, ClassScout) {
			return ErrInvalidMission.WithData("reason", "scout_requires_only_scouts")
		}
	}
	return nil
}

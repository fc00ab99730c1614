package domain

import (
	"fmt"
	"slices"
	"time"
)

type ReportKind string

const (
	ReportBattle ReportKind = "battle"
	ReportScout  ReportKind = "scout"
	ReportSettle ReportKind = "settle"
)

// Outcome 战报结论，从进攻方视角。
type Outcome string

const (
	OutcomeAttackerWon  Outcome = "attacker_won"
	OutcomeDefenderWon  Outcome = "defender_won"
	OutcomeScouted      Outcome = "scouted"
	OutcomeScoutLimited Outcome = "scout_degraded"
	OutcomeScoutBlocked Outcome = "scout_blocked"
	OutcomeSettled      Outcome = "settled"
	// OutcomeTargetUnavailable 开拓目标已被占，开拓者和资源丢失。
	OutcomeTargetUnavailable Outcome = "target_unavailable"
)

// ParticipantRole 参战方身份。
type ParticipantRole string

const (
	RoleAttacker  ParticipantRole = "attacker"
	RoleGarrison  ParticipantRole = "garrison"
	RoleStationed ParticipantRole = "stationed"
)

// Participant 一个参战分组的兵力快照。
type Participant struct {
	Role         ParticipantRole `json:"role"`
	OwnerID      PlayerID        `json:"owner_id"`
	SettlementID SettlementID    `json:"settlement_id,omitempty"`
	ArmyID       ArmyID          `json:"army_id,omitempty"`
	Committed    Troops          `json:"committed"`
	Lost         Troops          `json:"lost"`
	Survived     Troops          `json:"survived"`
}

// ScoutLevel 侦察结果的详细程度。
type ScoutLevel string

const (
	ScoutFull     ScoutLevel = "full"
	ScoutDegraded ScoutLevel = "degraded"
	ScoutBlocked  ScoutLevel = "blocked"
)

// ScoutIntel 侦察到的目标状态。degraded 只带驻军，blocked 什么都没有。
type ScoutIntel struct {
	Level     ScoutLevel           `json:"level"`
	Garrison  Troops               `json:"garrison,omitempty"`
	Stationed []Troops             `json:"stationed,omitempty"`
	Stock     *Resources           `json:"stock,omitempty"`
	Buildings map[BuildingType]int `json:"buildings,omitempty"`
	WallLevel *int                 `json:"wall_level,omitempty"`
}

// Report 一次结算的不可变快照，只有 ReadBy 会变。
type Report struct {
	ID         string      `json:"id"`
	Kind       ReportKind  `json:"kind"`
	Mission    MissionKind `json:"mission"`
	Outcome    Outcome     `json:"outcome"`
	ArmyID     ArmyID      `json:"army_id"`
	OccurredAt time.Time   `json:"occurred_at"`

	AttackerID   PlayerID      `json:"attacker_id"`
	DefenderID   PlayerID      `json:"defender_id,omitempty"`
	OriginID     SettlementID  `json:"origin_id"`
	TargetID     SettlementID  `json:"target_id,omitempty"`
	Target       Point         `json:"target"`
	Participants []Participant `json:"participants"`

	Loot          Resources   `json:"loot"`
	WallBefore    int         `json:"wall_before"`
	WallAfter     int         `json:"wall_after"`
	LoyaltyBefore float64     `json:"loyalty_before"`
	LoyaltyAfter  float64     `json:"loyalty_after"`
	Conquered     bool        `json:"conquered"`
	Scout         *ScoutIntel `json:"scout,omitempty"`

	Recipients []PlayerID `json:"recipients"`
	ReadBy     []PlayerID `json:"read_by"`
}

// ReportID 由军队 id 和到达时间（毫秒）组成，同一次到达重复生成得到同一个 id。
func ReportID(army ArmyID, at time.Time) string {
	return fmt.Sprintf("%d-%d", int64(army), at.UnixMilli())
}

func (r *Report) IsRecipient(p PlayerID) bool {
	return slices.Contains(r.Recipients, p)
}

func (r *Report) IsReadBy(p PlayerID) bool {
	return slices.Contains(r.ReadBy, p)
}

// MarkRead 标记已读，非接收者返回 ErrNotOwner。
func (r *Report) MarkRead(p PlayerID) error {
	if !r.IsRecipient(p) {
		return ErrNotOwner.WithData("report_id", r.ID)
	}
	if !r.IsReadBy(p) {
		r.ReadBy = append(r.ReadBy, p)
	}
	return nil
}

// AddRecipient 去重并忽略 0。
func (r *Report) AddRecipient(p PlayerID) {
	if p == 0 || r.IsRecipient(p) {
		return
	}
	r.Recipients = append(r.Recipients, p)
}

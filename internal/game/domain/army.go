package domain

import "time"

type ArmyID int64

// ArmyStatus 军队状态机：
//
//	Dispatched --认领--> Arrived --> Stationed | Returning | Terminated
//	Returning  --认领--> Arrived --> Terminated（回城入库）
//	Stationed  --召回--> Returning
type ArmyStatus string

const (
	ArmyDispatched ArmyStatus = "dispatched"
	ArmyArrived    ArmyStatus = "arrived"
	ArmyStationed  ArmyStatus = "stationed"
	ArmyReturning  ArmyStatus = "returning"
	ArmyTerminated ArmyStatus = "terminated"
)

// Army 行军中的部队。只引用村庄 id，不内嵌村庄状态。
type Army struct {
	ID       ArmyID
	OwnerID  PlayerID
	OriginID SettlementID
	OriginX  int
	OriginY  int

	DestX            int
	DestY            int
	DestSettlementID SettlementID // 0 表示目标是空地（开拓）

	Mission   MissionKind
	Troops    Troops
	Resources Resources

	DepartedAt time.Time
	ArrivesAt  time.Time
	ReturnsAt  time.Time // 非零表示已转为回程

	IsReturning bool
	IsStationed bool
	Status      ArmyStatus

	ClaimToken string
	ClaimedAt  time.Time
	Fault      string
}

func (a *Army) Origin() Point { return Point{X: a.OriginX, Y: a.OriginY} }
func (a *Army) Dest() Point   { return Point{X: a.DestX, Y: a.DestY} }

// MissionVariant 取任务和类型。
func (a *Army) MissionVariant() (Mission, error) {
	return ParseMission(a.Mission)
}

// InFlight 正在路上（去程或回程），可被到达 tick 认领。
func (a *Army) InFlight() bool {
	return a.Status == ArmyDispatched || a.Status == ArmyReturning
}

// ClaimedBy 军队已被 token 认领、尚未处理完。
func (a *Army) ClaimedBy(token string) bool {
	return a.Status == ArmyArrived && token != "" && a.ClaimToken == token
}

// Claim 到达 tick 认领。
func (a *Army) Claim(token string, at time.Time) error {
	if !a.InFlight() || a.ClaimToken != "" {
		return a.illegal("claim")
	}
	a.Status = ArmyArrived
	a.ClaimToken = token
	a.ClaimedAt = at
	return nil
}

// Station 支援到达后驻扎在目标村庄。
func (a *Army) Station() error {
	if a.Status != ArmyArrived {
		return a.illegal("station")
	}
	a.Status = ArmyStationed
	a.IsStationed = true
	a.IsReturning = false
	a.clearClaim()
	return nil
}

// StartReturn 转为回程：换上幸存部队与携带资源，重新进入可认领状态。
func (a *Army) StartReturn(survivors Troops, cargo Resources, from time.Time, travel time.Duration) error {
	if a.Status != ArmyArrived && a.Status != ArmyStationed {
		return a.illegal("return")
	}
	a.Troops = survivors.Clone()
	a.Resources = cargo
	a.Mission = MissionReturn
	a.DepartedAt = from
	a.ArrivesAt = from.Add(travel)
	a.ReturnsAt = a.ArrivesAt
	a.IsReturning = true
	a.IsStationed = false
	a.Status = ArmyReturning
	a.clearClaim()
	return nil
}

// Recall 召回驻扎部队。
func (a *Army) Recall(now time.Time, travel time.Duration) error {
	if a.Status != ArmyStationed {
		return ErrInvalidCommand.WithData("reason", "not_stationed").WithData("status", string(a.Status))
	}
	return a.StartReturn(a.Troops, a.Resources, now, travel)
}

// CancelEnRoute 撤回尚未到达的支援：原路返回，回程耗时等于已走的时间。
// 到达时间已过或已被 tick 认领时返回 ErrAlreadyClaimed。
func (a *Army) CancelEnRoute(now time.Time) error {
	if a.Mission != MissionSupport || a.IsReturning {
		return ErrInvalidCommand.WithData("reason", "only_en_route_support")
	}
	if a.Status != ArmyDispatched || a.ClaimToken != "" || !now.Before(a.ArrivesAt) {
		return ErrAlreadyClaimed.WithData("army_id", int64(a.ID))
	}
	elapsed := now.Sub(a.DepartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	a.Status = ArmyArrived
	return a.StartReturn(a.Troops, a.Resources, now, elapsed)
}

// Terminate 终结：回城入库、全军覆没、开拓完成/失败。
func (a *Army) Terminate() error {
	if a.Status != ArmyArrived && a.Status != ArmyStationed {
		return a.illegal("terminate")
	}
	a.Status = ArmyTerminated
	a.IsStationed = false
	a.Troops = Troops{}
	a.Resources = Resources{}
	a.clearClaim()
	return nil
}

// MarkFaulted 处理失败：保持认领状态，不再被自动处理。
func (a *Army) MarkFaulted(reason string) {
	a.Fault = reason
}

// Release 运维确认后重新放开认领，只对已标记失败的军队有效。
func (a *Army) Release() error {
	if a.Status != ArmyArrived {
		return a.illegal("release")
	}
	if a.Fault == "" {
		return ErrInvalidCommand.WithData("reason", "not_faulted").WithData("army_id", int64(a.ID))
	}
	a.unclaim()
	a.Fault = ""
	return nil
}

// Yield 让出认领，回到路上等下一轮重新认领。
func (a *Army) Yield(token string) error {
	if !a.ClaimedBy(token) || a.Fault != "" {
		return a.illegal("yield")
	}
	a.unclaim()
	return nil
}

func (a *Army) unclaim() {
	if a.IsReturning {
		a.Status = ArmyReturning
	} else {
		a.Status = ArmyDispatched
	}
	a.clearClaim()
}

// Bound 本次到达的落点：回程是出发村庄，去程是目标村庄，开拓时村庄 id 为 0，只看坐标。
func (a *Army) Bound() (SettlementID, Point) {
	if a.IsReturning {
		return a.OriginID, a.Origin()
	}
	return a.DestSettlementID, a.Dest()
}

// SameBound 两支军队落在同一个村庄或同一块空地。
func (a *Army) SameBound(o *Army) bool {
	sid, p := a.Bound()
	osid, op := o.Bound()
	if sid != 0 || osid != 0 {
		return sid == osid
	}
	return p == op
}

// ArrivesBefore 到达结算顺序：先比到达时间，同时到达按 id。
func (a *Army) ArrivesBefore(o *Army) bool {
	if !a.ArrivesAt.Equal(o.ArrivesAt) {
		return a.ArrivesAt.Before(o.ArrivesAt)
	}
	return a.ID < o.ID
}

// Unresolved 在路上或已认领未结算，且没有标记失败。
func (a *Army) Unresolved() bool {
	return (a.InFlight() || a.Status == ArmyArrived) && a.Fault == ""
}

func (a *Army) clearClaim() {
	a.ClaimToken = ""
	a.ClaimedAt = time.Time{}
}

func (a *Army) illegal(op string) error {
	return ErrIllegalTransition.WithDataMap(map[string]any{
		"army_id": int64(a.ID),
		"op":      op,
		"status":  string(a.Status),
	})
}

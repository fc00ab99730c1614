package domain

import "time"

type EventKind string

const (
	EventResourceUpdated       EventKind = "ResourceUpdated"
	EventConstructionCompleted EventKind = "ConstructionCompleted"
	EventTrainingCompleted     EventKind = "TrainingCompleted"
	EventArmyArrived           EventKind = "ArmyArrived"
	EventUnderAttack           EventKind = "UnderAttack"
	EventTroopsStarved         EventKind = "TroopsStarved"
	EventSettlementConquered   EventKind = "SettlementConquered"
)

// Event 推给实时通知层的领域事件，发送即忘。
type Event struct {
	Kind         EventKind      `json:"kind"`
	SettlementID SettlementID   `json:"settlement_id"`
	ArmyID       ArmyID         `json:"army_id,omitempty"`
	Recipients   []PlayerID     `json:"recipients"`
	At           time.Time      `json:"at"`
	Data         map[string]any `json:"data,omitempty"`
}

// Events 事务内收集的事件，提交后统一发布。
type Events []Event

func (e *Events) Add(kind EventKind, settlement SettlementID, army ArmyID, at time.Time, data map[string]any, recipients ...PlayerID) {
	rs := make([]PlayerID, 0, len(recipients))
	for _, r := range recipients {
		if r == 0 {
			continue
		}
		dup := false
		for _, x := range rs {
			if x == r {
				dup = true
				break
			}
		}
		if !dup {
			rs = append(rs, r)
		}
	}
	*e = append(*e, Event{Kind: kind, SettlementID: settlement, ArmyID: army, Recipients: rs, At: at, Data: data})
}

package dto

import "Hegemony/internal/game/domain"

type DispatchReq struct {
	OriginID int64          `json:"origin_id" mapstructure:"origin_id" binding:"required"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
	Mission  string         `json:"mission" binding:"required"`
	Troops   map[string]int `json:"troops" binding:"required"`
}

func (r DispatchReq) ToTroops() domain.Troops {
	out := make(domain.Troops, len(r.Troops))
	for t, n := range r.Troops {
		out[domain.UnitType(t)] = n
	}
	return out
}

type TrainReq struct {
	Unit  string `json:"unit" binding:"required"`
	Count int    `json:"count"`
}

type UpgradeReq struct {
	Building string `json:"building" binding:"required"`
}

// ReportListReq ws 与 HTTP 查询共用，limit 为 0 时取默认页大小。
type ReportListReq struct {
	Limit int `json:"limit" form:"limit"`
}

type ReportIDReq struct {
	ID string `json:"id"`
}

type SettlementReq struct {
	ID int64 `json:"id"`
}

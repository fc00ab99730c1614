package dto

import (
	"time"

	"Hegemony/internal/game/app"
	"Hegemony/internal/game/domain"
)

type ArmyResp struct {
	ID               int64            `json:"id"`
	OwnerID          int64            `json:"owner_id"`
	OriginID         int64            `json:"origin_id"`
	Origin           domain.Point     `json:"origin"`
	Dest             domain.Point     `json:"dest"`
	DestSettlementID int64            `json:"dest_settlement_id,omitempty"`
	Mission          string           `json:"mission"`
	Status           string           `json:"status"`
	Troops           domain.Troops    `json:"troops"`
	Resources        domain.Resources `json:"resources"`
	DepartedAt       time.Time        `json:"departed_at"`
	ArrivesAt        time.Time        `json:"arrives_at"`
	ReturnsAt        *time.Time       `json:"returns_at,omitempty"`
	Returning        bool             `json:"returning"`
	Stationed        bool             `json:"stationed"`
}

func FromArmy(a domain.Army) ArmyResp {
	out := ArmyResp{
		ID:               int64(a.ID),
		OwnerID:          int64(a.OwnerID),
		OriginID:         int64(a.OriginID),
		Origin:           a.Origin(),
		Dest:             a.Dest(),
		DestSettlementID: int64(a.DestSettlementID),
		Mission:          string(a.Mission),
		Status:           string(a.Status),
		Troops:           a.Troops,
		Resources:        a.Resources.Round(),
		DepartedAt:       a.DepartedAt,
		ArrivesAt:        a.ArrivesAt,
		Returning:        a.IsReturning,
		Stationed:        a.IsStationed,
	}
	if !a.ReturnsAt.IsZero() {
		t := a.ReturnsAt
		out.ReturnsAt = &t
	}
	return out
}

func FromArmies(list []domain.Army) []ArmyResp {
	out := make([]ArmyResp, 0, len(list))
	for _, a := range list {
		out = append(out, FromArmy(a))
	}
	return out
}

type QueueItemResp struct {
	ID          int64      `json:"id"`
	Unit        string     `json:"unit,omitempty"`
	Count       int        `json:"count,omitempty"`
	Building    string     `json:"building,omitempty"`
	TargetLevel int        `json:"target_level,omitempty"`
	Status      string     `json:"status"`
	DurationMS  int64      `json:"duration_ms"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

func FromTraining(it domain.TrainingItem) QueueItemResp {
	return QueueItemResp{
		ID:         int64(it.ID),
		Unit:       string(it.Unit),
		Count:      it.Count,
		Status:     string(it.Status),
		DurationMS: it.Duration.Milliseconds(),
		EndsAt:     endsAt(it.EndsAt),
	}
}

func FromUpgrade(it domain.UpgradeItem) QueueItemResp {
	return QueueItemResp{
		ID:          int64(it.ID),
		Building:    string(it.Building),
		TargetLevel: it.TargetLevel,
		Status:      string(it.Status),
		DurationMS:  it.Duration.Milliseconds(),
		EndsAt:      endsAt(it.EndsAt),
	}
}

func endsAt(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

type SettlementResp struct {
	ID           int64                       `json:"id"`
	OwnerID      int64                       `json:"owner_id"`
	Name         string                      `json:"name"`
	Point        domain.Point                `json:"point"`
	Stock        domain.Resources            `json:"stock"`
	Production   domain.Resources            `json:"production"`
	CropUpkeep   float64                     `json:"crop_upkeep"`
	WarehouseCap float64                     `json:"warehouse_cap"`
	GranaryCap   float64                     `json:"granary_cap"`
	StashCap     float64                     `json:"stash_cap"`
	WallLevel    int                         `json:"wall_level"`
	Loyalty      float64                     `json:"loyalty"`
	Buildings    map[domain.BuildingType]int `json:"buildings"`
	Garrison     domain.Garrison             `json:"garrison"`
	Training     []QueueItemResp             `json:"training"`
	Upgrades     []QueueItemResp             `json:"upgrades"`
	Stationed    []ArmyResp                  `json:"stationed"`
}

func FromSettlementView(v *app.SettlementView) SettlementResp {
	s := v.Settlement
	out := SettlementResp{
		ID:           int64(s.ID),
		OwnerID:      int64(s.OwnerID),
		Name:         s.Name,
		Point:        s.Point(),
		Stock:        s.Stock.Round(),
		Production:   s.Production,
		CropUpkeep:   s.CropUpkeep,
		WarehouseCap: s.WarehouseCap,
		GranaryCap:   s.GranaryCap,
		StashCap:     s.StashCap,
		WallLevel:    s.WallLevel,
		Loyalty:      s.Loyalty,
		Buildings:    s.Buildings,
		Garrison:     v.Garrison,
		Training:     make([]QueueItemResp, 0, len(v.Training)),
		Upgrades:     make([]QueueItemResp, 0, len(v.Upgrades)),
		Stationed:    FromArmies(v.Stationed),
	}
	for _, it := range v.Training {
		out.Training = append(out.Training, FromTraining(it))
	}
	for _, it := range v.Upgrades {
		out.Upgrades = append(out.Upgrades, FromUpgrade(it))
	}
	return out
}

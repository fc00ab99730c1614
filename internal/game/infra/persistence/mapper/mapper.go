// Package mapper 领域对象与 gorm 行之间的转换。map 类字段以 json 文本落库。
package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/infra/persistence/model"
)

func SettlementToModel(s *domain.Settlement) (*model.Settlement, error) {
	buildings, err := marshal(s.Buildings)
	if err != nil {
		return nil, fmt.Errorf("settlement %d buildings: %w", s.ID, err)
	}
	return &model.Settlement{
		ID:            int64(s.ID),
		OwnerID:       int64(s.OwnerID),
		Name:          s.Name,
		X:             s.X,
		Y:             s.Y,
		StockWood:     s.Stock.Wood,
		StockClay:     s.Stock.Clay,
		StockIron:     s.Stock.Iron,
		StockCrop:     s.Stock.Crop,
		ProdWood:      s.Production.Wood,
		ProdClay:      s.Production.Clay,
		ProdIron:      s.Production.Iron,
		ProdCrop:      s.Production.Crop,
		CropUpkeep:    s.CropUpkeep,
		WarehouseCap:  s.WarehouseCap,
		GranaryCap:    s.GranaryCap,
		StashCap:      s.StashCap,
		WallLevel:     s.WallLevel,
		Loyalty:       s.Loyalty,
		UpgradeSlots:  s.UpgradeSlots,
		Buildings:     buildings,
		LastAccrualAt: s.LastAccrualAt.UTC(),
		CreatedAt:     s.CreatedAt.UTC(),
	}, nil
}

func SettlementFromModel(m *model.Settlement) (*domain.Settlement, error) {
	buildings := map[domain.BuildingType]int{}
	if err := unmarshal(m.Buildings, &buildings); err != nil {
		return nil, fmt.Errorf("settlement %d buildings: %w", m.ID, err)
	}
	return &domain.Settlement{
		ID:            domain.SettlementID(m.ID),
		OwnerID:       domain.PlayerID(m.OwnerID),
		Name:          m.Name,
		X:             m.X,
		Y:             m.Y,
		Stock:         domain.Resources{Wood: m.StockWood, Clay: m.StockClay, Iron: m.StockIron, Crop: m.StockCrop},
		Production:    domain.Resources{Wood: m.ProdWood, Clay: m.ProdClay, Iron: m.ProdIron, Crop: m.ProdCrop},
		CropUpkeep:    m.CropUpkeep,
		WarehouseCap:  m.WarehouseCap,
		GranaryCap:    m.GranaryCap,
		StashCap:      m.StashCap,
		WallLevel:     m.WallLevel,
		Loyalty:       m.Loyalty,
		UpgradeSlots:  m.UpgradeSlots,
		Buildings:     buildings,
		LastAccrualAt: m.LastAccrualAt.UTC(),
		CreatedAt:     m.CreatedAt.UTC(),
	}, nil
}

func GarrisonToModel(id domain.SettlementID, g domain.Garrison, now time.Time) (*model.Garrison, error) {
	troops, err := marshal(g)
	if err != nil {
		return nil, fmt.Errorf("garrison %d: %w", id, err)
	}
	return &model.Garrison{SettlementID: int64(id), Troops: troops, UpdatedAt: now.UTC()}, nil
}

func GarrisonFromModel(m *model.Garrison) (domain.Garrison, error) {
	g := domain.Garrison{}
	if err := unmarshal(m.Troops, &g); err != nil {
		return nil, fmt.Errorf("garrison %d: %w", m.SettlementID, err)
	}
	return g, nil
}

func ArmyToModel(a *domain.Army) (*model.Army, error) {
	troops, err := marshal(a.Troops)
	if err != nil {
		return nil, fmt.Errorf("army %d troops: %w", a.ID, err)
	}
	return &model.Army{
		ID:               int64(a.ID),
		OwnerID:          int64(a.OwnerID),
		OriginID:         int64(a.OriginID),
		OriginX:          a.OriginX,
		OriginY:          a.OriginY,
		DestX:            a.DestX,
		DestY:            a.DestY,
		DestSettlementID: int64(a.DestSettlementID),
		Mission:          string(a.Mission),
		Troops:           troops,
		ResWood:          a.Resources.Wood,
		ResClay:          a.Resources.Clay,
		ResIron:          a.Resources.Iron,
		ResCrop:          a.Resources.Crop,
		DepartedAt:       a.DepartedAt.UTC(),
		ArrivesAt:        a.ArrivesAt.UTC(),
		ReturnsAt:        timePtr(a.ReturnsAt),
		IsReturning:      a.IsReturning,
		IsStationed:      a.IsStationed,
		Status:           string(a.Status),
		ClaimToken:       a.ClaimToken,
		ClaimedAt:        timePtr(a.ClaimedAt),
		Fault:            a.Fault,
	}, nil
}

func ArmyFromModel(m *model.Army) (*domain.Army, error) {
	troops := domain.Troops{}
	if err := unmarshal(m.Troops, &troops); err != nil {
		return nil, fmt.Errorf("army %d troops: %w", m.ID, err)
	}
	return &domain.Army{
		ID:               domain.ArmyID(m.ID),
		OwnerID:          domain.PlayerID(m.OwnerID),
		OriginID:         domain.SettlementID(m.OriginID),
		OriginX:          m.OriginX,
		OriginY:          m.OriginY,
		DestX:            m.DestX,
		DestY:            m.DestY,
		DestSettlementID: domain.SettlementID(m.DestSettlementID),
		Mission:          domain.MissionKind(m.Mission),
		Troops:           troops,
		Resources:        domain.Resources{Wood: m.ResWood, Clay: m.ResClay, Iron: m.ResIron, Crop: m.ResCrop},
		DepartedAt:       m.DepartedAt.UTC(),
		ArrivesAt:        m.ArrivesAt.UTC(),
		ReturnsAt:        timeVal(m.ReturnsAt),
		IsReturning:      m.IsReturning,
		IsStationed:      m.IsStationed,
		Status:           domain.ArmyStatus(m.Status),
		ClaimToken:       m.ClaimToken,
		ClaimedAt:        timeVal(m.ClaimedAt),
		Fault:            m.Fault,
	}, nil
}

func TrainingToModel(it *domain.TrainingItem) (*model.TrainingItem, error) {
	cost, err := marshal(it.Cost)
	if err != nil {
		return nil, err
	}
	return &model.TrainingItem{
		ID:           int64(it.ID),
		SettlementID: int64(it.SettlementID),
		Unit:         string(it.Unit),
		Count:        it.Count,
		Cost:         cost,
		DurationMS:   it.Duration.Milliseconds(),
		Seq:          it.Seq,
		Status:       string(it.Status),
		StartedAt:    timePtr(it.StartedAt),
		EndsAt:       timePtr(it.EndsAt),
		ClaimToken:   it.ClaimToken,
	}, nil
}

func TrainingFromModel(m *model.TrainingItem) (*domain.TrainingItem, error) {
	var cost domain.Resources
	if err := unmarshal(m.Cost, &cost); err != nil {
		return nil, fmt.Errorf("training %d cost: %w", m.ID, err)
	}
	return &domain.TrainingItem{
		ID:           domain.QueueItemID(m.ID),
		SettlementID: domain.SettlementID(m.SettlementID),
		Unit:         domain.UnitType(m.Unit),
		Count:        m.Count,
		Cost:         cost,
		Duration:     time.Duration(m.DurationMS) * time.Millisecond,
		Seq:          m.Seq,
		Status:       domain.QueueStatus(m.Status),
		StartedAt:    timeVal(m.StartedAt),
		EndsAt:       timeVal(m.EndsAt),
		ClaimToken:   m.ClaimToken,
	}, nil
}

func UpgradeToModel(it *domain.UpgradeItem) (*model.UpgradeItem, error) {
	cost, err := marshal(it.Cost)
	if err != nil {
		return nil, err
	}
	return &model.UpgradeItem{
		ID:           int64(it.ID),
		SettlementID: int64(it.SettlementID),
		Building:     string(it.Building),
		TargetLevel:  it.TargetLevel,
		Cost:         cost,
		DurationMS:   it.Duration.Milliseconds(),
		Seq:          it.Seq,
		Status:       string(it.Status),
		StartedAt:    timePtr(it.StartedAt),
		EndsAt:       timePtr(it.EndsAt),
		ClaimToken:   it.ClaimToken,
	}, nil
}

func UpgradeFromModel(m *model.UpgradeItem) (*domain.UpgradeItem, error) {
	var cost domain.Resources
	if err := unmarshal(m.Cost, &cost); err != nil {
		return nil, fmt.Errorf("upgrade %d cost: %w", m.ID, err)
	}
	return &domain.UpgradeItem{
		ID:           domain.QueueItemID(m.ID),
		SettlementID: domain.SettlementID(m.SettlementID),
		Building:     domain.BuildingType(m.Building),
		TargetLevel:  m.TargetLevel,
		Cost:         cost,
		Duration:     time.Duration(m.DurationMS) * time.Millisecond,
		Seq:          m.Seq,
		Status:       domain.QueueStatus(m.Status),
		StartedAt:    timeVal(m.StartedAt),
		EndsAt:       timeVal(m.EndsAt),
		ClaimToken:   m.ClaimToken,
	}, nil
}

func ReportToOutbox(r *domain.Report) (*model.ReportOutbox, error) {
	payload, err := marshal(r)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.ID, err)
	}
	return &model.ReportOutbox{
		ID:         r.ID,
		ArmyID:     int64(r.ArmyID),
		Payload:    payload,
		OccurredAt: r.OccurredAt.UTC(),
	}, nil
}

func ReportFromOutbox(m *model.ReportOutbox) (domain.Report, error) {
	var r domain.Report
	if err := unmarshal(m.Payload, &r); err != nil {
		return r, fmt.Errorf("report %s: %w", m.ID, err)
	}
	return r, nil
}

// ReportToDoc ReadBy 单独维护，不进正文。
func ReportToDoc(r *domain.Report) (*model.ReportDoc, error) {
	body := *r
	body.ReadBy = nil
	payload, err := marshal(&body)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", r.ID, err)
	}
	doc := &model.ReportDoc{
		ID:         r.ID,
		Kind:       string(r.Kind),
		ArmyID:     int64(r.ArmyID),
		OccurredAt: r.OccurredAt.UTC(),
		Recipients: make([]int64, 0, len(r.Recipients)),
		ReadBy:     make([]int64, 0, len(r.ReadBy)),
		Payload:    payload,
	}
	for _, p := range r.Recipients {
		doc.Recipients = append(doc.Recipients, int64(p))
	}
	for _, p := range r.ReadBy {
		doc.ReadBy = append(doc.ReadBy, int64(p))
	}
	return doc, nil
}

func ReportFromDoc(doc *model.ReportDoc) (*domain.Report, error) {
	var r domain.Report
	if err := unmarshal(doc.Payload, &r); err != nil {
		return nil, fmt.Errorf("report %s: %w", doc.ID, err)
	}
	r.ID = doc.ID
	r.OccurredAt = doc.OccurredAt.UTC()
	r.ReadBy = make([]domain.PlayerID, 0, len(doc.ReadBy))
	for _, p := range doc.ReadBy {
		r.ReadBy = append(r.ReadBy, domain.PlayerID(p))
	}
	return &r, nil
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshal(s string, out any) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func timeVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

package mapper

import (
	"strings"
	"testing"
	"time"

	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/infra/persistence/model"
)

func TestArmy_可空时间字段(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	a := &domain.Army{ID: 1, OwnerID: 2, Mission: domain.MissionRaid, Troops: domain.Troops{"raider": 3}, ArrivesAt: at, Status: domain.ArmyDispatched}
	m, err := ArmyToModel(a)
	if err != nil {
		t.Fatalf("to model: %v", err)
	}
	if m.ReturnsAt != nil || m.ClaimedAt != nil {
		t.Fatalf("期望零值时间落库为 NULL")
	}
	back, err := ArmyFromModel(m)
	if err != nil {
		t.Fatalf("from model: %v", err)
	}
	if !back.ReturnsAt.IsZero() || back.Troops["raider"] != 3 || !back.ArrivesAt.Equal(at) {
		t.Fatalf("期望还原, got=%+v", back)
	}
}

func TestSettlement_空建筑json(t *testing.T) {
	s, err := SettlementFromModel(&model.Settlement{ID: 1, Buildings: ""})
	if err != nil {
		t.Fatalf("from model: %v", err)
	}
	if s.Buildings == nil {
		t.Fatalf("期望空建筑表不是 nil")
	}
}

func TestReportDoc_已读不进正文(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r := &domain.Report{ID: "1-1", Kind: domain.ReportBattle, OccurredAt: at, Recipients: []domain.PlayerID{7, 8}, ReadBy: []domain.PlayerID{8}}
	doc, err := ReportToDoc(r)
	if err != nil {
		t.Fatalf("to doc: %v", err)
	}
	if len(doc.ReadBy) != 1 || doc.ReadBy[0] != 8 || len(doc.Recipients) != 2 {
		t.Fatalf("期望展开接收者和已读, got=%+v", doc)
	}
	if strings.Contains(doc.Payload, `"read_by":[8]`) {
		t.Fatalf("期望正文不带已读, payload=%s", doc.Payload)
	}
	back, err := ReportFromDoc(doc)
	if err != nil {
		t.Fatalf("from doc: %v", err)
	}
	if !back.IsReadBy(8) || back.IsReadBy(7) || !back.IsRecipient(7) || !back.OccurredAt.Equal(at) {
		t.Fatalf("期望还原, got=%+v", back)
	}
}

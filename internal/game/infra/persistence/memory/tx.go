package memory

import (
	"context"
	"sort"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
)

type tx struct {
	st *state
}

var _ port.Tx = (*tx)(nil)

func (t *tx) LockSettlement(ctx context.Context, id domain.SettlementID) (*domain.Settlement, error) {
	v, ok := t.st.settlements[id]
	if !ok {
		return nil, domain.ErrSettlementNotFound.WithData("settlement_id", int64(id))
	}
	v = cloneSettlement(v)
	return &v, nil
}

func (t *tx) FindSettlementAt(ctx context.Context, p domain.Point) (*domain.Settlement, bool, error) {
	id, ok := t.st.coords[p]
	if !ok {
		return nil, false, nil
	}
	v := cloneSettlement(t.st.settlements[id])
	return &v, true, nil
}

func (t *tx) CreateSettlement(ctx context.Context, s *domain.Settlement) error {
	if _, ok := t.st.coords[s.Point()]; ok {
		return domain.ErrCoordinateTaken.WithData("x", s.X).WithData("y", s.Y)
	}
	t.st.settlements[s.ID] = cloneSettlement(*s)
	t.st.coords[s.Point()] = s.ID
	return nil
}

func (t *tx) SaveSettlement(ctx context.Context, s *domain.Settlement) error {
	if _, ok := t.st.settlements[s.ID]; !ok {
		return domain.ErrSettlementNotFound.WithData("settlement_id", int64(s.ID))
	}
	t.st.settlements[s.ID] = cloneSettlement(*s)
	return nil
}

func (t *tx) LoadGarrison(ctx context.Context, id domain.SettlementID) (domain.Garrison, error) {
	g, ok := t.st.garrisons[id]
	if !ok {
		return domain.Garrison{}, nil
	}
	return g.Clone(), nil
}

func (t *tx) SaveGarrison(ctx context.Context, id domain.SettlementID, g domain.Garrison) error {
	t.st.garrisons[id] = g.Clone()
	return nil
}

func (t *tx) LockArmy(ctx context.Context, id domain.ArmyID) (*domain.Army, error) {
	a, ok := t.st.armies[id]
	if !ok {
		return nil, domain.ErrArmyNotFound.WithData("army_id", int64(id))
	}
	a = cloneArmy(a)
	return &a, nil
}

func (t *tx) CreateArmy(ctx context.Context, a *domain.Army) error {
	t.st.armies[a.ID] = cloneArmy(*a)
	return nil
}

func (t *tx) SaveArmy(ctx context.Context, a *domain.Army) error {
	if _, ok := t.st.armies[a.ID]; !ok {
		return domain.ErrArmyNotFound.WithData("army_id", int64(a.ID))
	}
	t.st.armies[a.ID] = cloneArmy(*a)
	return nil
}

func (t *tx) StationedAt(ctx context.Context, id domain.SettlementID) ([]domain.Army, error) {
	return t.armies(func(a domain.Army) bool {
		return a.Status == domain.ArmyStationed && a.DestSettlementID == id
	}), nil
}

func (t *tx) ArmiesOwnedBy(ctx context.Context, owner domain.PlayerID) ([]domain.Army, error) {
	return t.armies(func(a domain.Army) bool {
		return a.OwnerID == owner && a.Status != domain.ArmyTerminated
	}), nil
}

func (t *tx) ArrivalAhead(ctx context.Context, a *domain.Army) (bool, error) {
	for _, o := range t.st.armies {
		if o.ID != a.ID && o.Unresolved() && o.ArrivesBefore(a) && o.SameBound(a) {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) armies(keep func(domain.Army) bool) []domain.Army {
	out := make([]domain.Army, 0)
	for _, a := range t.st.armies {
		if keep(a) {
			out = append(out, cloneArmy(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tx) TrainingQueue(ctx context.Context, id domain.SettlementID) ([]domain.TrainingItem, error) {
	out := make([]domain.TrainingItem, 0)
	for _, it := range t.st.training {
		if it.SettlementID == id && it.Status != domain.QueueDone {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (t *tx) LockTraining(ctx context.Context, id domain.QueueItemID) (*domain.TrainingItem, error) {
	it, ok := t.st.training[id]
	if !ok {
		return nil, domain.ErrQueueItemNotFound.WithData("item_id", int64(id))
	}
	return &it, nil
}

func (t *tx) CreateTraining(ctx context.Context, it *domain.TrainingItem) error {
	t.st.training[it.ID] = *it
	return nil
}

func (t *tx) SaveTraining(ctx context.Context, it *domain.TrainingItem) error {
	t.st.training[it.ID] = *it
	return nil
}

func (t *tx) DeleteTraining(ctx context.Context, id domain.QueueItemID) error {
	delete(t.st.training, id)
	return nil
}

func (t *tx) UpgradeQueue(ctx context.Context, id domain.SettlementID) ([]domain.UpgradeItem, error) {
	out := make([]domain.UpgradeItem, 0)
	for _, it := range t.st.upgrades {
		if it.SettlementID == id && it.Status != domain.QueueDone {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (t *tx) LockUpgrade(ctx context.Context, id domain.QueueItemID) (*domain.UpgradeItem, error) {
	it, ok := t.st.upgrades[id]
	if !ok {
		return nil, domain.ErrQueueItemNotFound.WithData("item_id", int64(id))
	}
	return &it, nil
}

func (t *tx) CreateUpgrade(ctx context.Context, it *domain.UpgradeItem) error {
	t.st.upgrades[it.ID] = *it
	return nil
}

func (t *tx) SaveUpgrade(ctx context.Context, it *domain.UpgradeItem) error {
	t.st.upgrades[it.ID] = *it
	return nil
}

func (t *tx) AppendReport(ctx context.Context, r *domain.Report) error {
	if _, ok := t.st.outbox[r.ID]; ok {
		return nil
	}
	t.st.outbox[r.ID] = outboxRow{report: *r}
	t.st.outboxSeq = append(t.st.outboxSeq, r.ID)
	return nil
}

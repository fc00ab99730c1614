// Package memory 进程内存储：整份状态写时复制，InTx 全局串行。
// 用于测试和单机调试，语义与 mysql 实现一致。
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
)

type outboxRow struct {
	report    domain.Report
	token     string
	delivered bool
}

type state struct {
	settlements map[domain.SettlementID]domain.Settlement
	coords      map[domain.Point]domain.SettlementID
	garrisons   map[domain.SettlementID]domain.Garrison
	armies      map[domain.ArmyID]domain.Army
	training    map[domain.QueueItemID]domain.TrainingItem
	upgrades    map[domain.QueueItemID]domain.UpgradeItem
	outbox      map[string]outboxRow
	outboxSeq   []string
}

func newState() *state {
	return &state{
		settlements: map[domain.SettlementID]domain.Settlement{},
		coords:      map[domain.Point]domain.SettlementID{},
		garrisons:   map[domain.SettlementID]domain.Garrison{},
		armies:      map[domain.ArmyID]domain.Army{},
		training:    map[domain.QueueItemID]domain.TrainingItem{},
		upgrades:    map[domain.QueueItemID]domain.UpgradeItem{},
		outbox:      map[string]outboxRow{},
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.settlements {
		out.settlements[k] = cloneSettlement(v)
	}
	for k, v := range s.coords {
		out.coords[k] = v
	}
	for k, v := range s.garrisons {
		out.garrisons[k] = v.Clone()
	}
	for k, v := range s.armies {
		out.armies[k] = cloneArmy(v)
	}
	for k, v := range s.training {
		out.training[k] = v
	}
	for k, v := range s.upgrades {
		out.upgrades[k] = v
	}
	for k, v := range s.outbox {
		out.outbox[k] = v
	}
	out.outboxSeq = append([]string(nil), s.outboxSeq...)
	return out
}

func cloneSettlement(s domain.Settlement) domain.Settlement {
	if s.Buildings != nil {
		b := make(map[domain.BuildingType]int, len(s.Buildings))
		for k, v := range s.Buildings {
			b[k] = v
		}
		s.Buildings = b
	}
	return s
}

func cloneArmy(a domain.Army) domain.Army {
	a.Troops = a.Troops.Clone()
	return a
}

// Store 实现 port.Store。
type Store struct {
	mu sync.Mutex
	st *state
}

var _ port.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{st: newState()}
}

func (s *Store) InTx(ctx context.Context, fn func(tx port.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return domain.ErrSystemUnavailable.WithCause(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(&tx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Seed 直接写入一个村庄及其驻军，测试和本地调试用。
func (s *Store) Seed(v domain.Settlement, g domain.Garrison) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.settlements[v.ID] = cloneSettlement(v)
	s.st.coords[v.Point()] = v.ID
	if g == nil {
		g = domain.Garrison{}
	}
	s.st.garrisons[v.ID] = g.Clone()
}

// SeedArmy 直接写入一支军队。
func (s *Store) SeedArmy(a domain.Army) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.armies[a.ID] = cloneArmy(a)
}

func (s *Store) Settlement(id domain.SettlementID) (domain.Settlement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.st.settlements[id]
	return cloneSettlement(v), ok
}

func (s *Store) SettlementAt(p domain.Point) (domain.Settlement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.st.coords[p]
	if !ok {
		return domain.Settlement{}, false
	}
	return cloneSettlement(s.st.settlements[id]), true
}

func (s *Store) Garrison(id domain.SettlementID) domain.Garrison {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.garrisons[id].Clone()
}

func (s *Store) Army(id domain.ArmyID) (domain.Army, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.armies[id]
	return cloneArmy(a), ok
}

func (s *Store) Training(id domain.QueueItemID) (domain.TrainingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.st.training[id]
	return it, ok
}

func (s *Store) Upgrade(id domain.QueueItemID) (domain.UpgradeItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.st.upgrades[id]
	return it, ok
}

// Outbox 出库箱里的全部战报，按写入顺序。
func (s *Store) Outbox() []domain.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Report, 0, len(s.st.outboxSeq))
	for _, id := range s.st.outboxSeq {
		out = append(out, s.st.outbox[id].report)
	}
	return out
}

func (s *Store) ClaimDueArmies(ctx context.Context, now time.Time, token string, limit int) ([]domain.Army, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := make([]domain.Army, 0)
	for _, a := range s.st.armies {
		if a.InFlight() && a.ClaimToken == "" && a.Fault == "" && !a.ArrivesAt.After(now) {
			due = append(due, a)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].ArrivesAt.Equal(due[j].ArrivesAt) {
			return due[i].ArrivesAt.Before(due[j].ArrivesAt)
		}
		return due[i].ID < due[j].ID
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	out := make([]domain.Army, 0, len(due))
	for _, a := range due {
		a = cloneArmy(a)
		if err := a.Claim(token, now); err != nil {
			continue
		}
		s.st.armies[a.ID] = a
		out = append(out, cloneArmy(a))
	}
	return out, nil
}

func (s *Store) MarkArmyFaulted(ctx context.Context, id domain.ArmyID, token, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.armies[id]
	if !ok {
		return domain.ErrArmyNotFound.WithData("army_id", int64(id))
	}
	if a.ClaimToken != token {
		return nil
	}
	a.MarkFaulted(reason)
	s.st.armies[id] = a
	return nil
}

func (s *Store) ReleaseArmyClaim(ctx context.Context, id domain.ArmyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.armies[id]
	if !ok {
		return domain.ErrArmyNotFound.WithData("army_id", int64(id))
	}
	if err := a.Release(); err != nil {
		return err
	}
	s.st.armies[id] = a
	return nil
}

func (s *Store) ListFaultedArmies(ctx context.Context, limit int) ([]domain.Army, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Army, 0)
	for _, a := range s.st.armies {
		if a.Fault != "" {
			out = append(out, cloneArmy(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ClaimDueTraining(ctx context.Context, now time.Time, token string, limit int) ([]domain.TrainingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := make([]domain.TrainingItem, 0)
	for _, it := range s.st.training {
		if it.Due(now) && it.ClaimToken == "" {
			due = append(due, it)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].EndsAt.Equal(due[j].EndsAt) {
			return due[i].EndsAt.Before(due[j].EndsAt)
		}
		return due[i].ID < due[j].ID
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	for i := range due {
		due[i].ClaimToken = token
		s.st.training[due[i].ID] = due[i]
	}
	return due, nil
}

func (s *Store) ReleaseTrainingClaim(ctx context.Context, id domain.QueueItemID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.st.training[id]; ok && it.ClaimToken == token {
		it.ClaimToken = ""
		s.st.training[id] = it
	}
	return nil
}

func (s *Store) ClaimDueUpgrades(ctx context.Context, now time.Time, token string, limit int) ([]domain.UpgradeItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := make([]domain.UpgradeItem, 0)
	for _, it := range s.st.upgrades {
		if it.Due(now) && it.ClaimToken == "" {
			due = append(due, it)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].EndsAt.Equal(due[j].EndsAt) {
			return due[i].EndsAt.Before(due[j].EndsAt)
		}
		return due[i].ID < due[j].ID
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	for i := range due {
		due[i].ClaimToken = token
		s.st.upgrades[due[i].ID] = due[i]
	}
	return due, nil
}

func (s *Store) ReleaseUpgradeClaim(ctx context.Context, id domain.QueueItemID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.st.upgrades[id]; ok && it.ClaimToken == token {
		it.ClaimToken = ""
		s.st.upgrades[id] = it
	}
	return nil
}

func (s *Store) ListSettlementIDs(ctx context.Context, afterID domain.SettlementID, limit int) ([]domain.SettlementID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageIDs(afterID, limit, func(domain.Settlement) bool { return true }), nil
}

func (s *Store) ListStarvingSettlementIDs(ctx context.Context, afterID domain.SettlementID, limit int) ([]domain.SettlementID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageIDs(afterID, limit, func(v domain.Settlement) bool {
		return v.Stock.Crop < 0 || v.CropUpkeep > v.Production.Crop
	}), nil
}

func (s *Store) pageIDs(afterID domain.SettlementID, limit int, keep func(domain.Settlement) bool) []domain.SettlementID {
	ids := make([]domain.SettlementID, 0)
	for id, v := range s.st.settlements {
		if id > afterID && keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (s *Store) ClaimPendingReports(ctx context.Context, token string, limit int) ([]domain.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Report, 0)
	for _, id := range s.st.outboxSeq {
		row := s.st.outbox[id]
		if row.delivered || row.token != "" {
			continue
		}
		row.token = token
		s.st.outbox[id] = row
		out = append(out, row.report)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) MarkReportsDelivered(ctx context.Context, token string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if row, ok := s.st.outbox[id]; ok && row.token == token {
			row.delivered = true
			s.st.outbox[id] = row
		}
	}
	return nil
}

func (s *Store) ReleaseReportClaim(ctx context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.st.outbox[id]; ok && row.token == token && !row.delivered {
		row.token = ""
		s.st.outbox[id] = row
	}
	return nil
}

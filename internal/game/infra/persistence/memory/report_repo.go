package memory

import (
	"context"
	"sort"
	"sync"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
)

// ReportRepo 进程内战报库。
type ReportRepo struct {
	mu      sync.RWMutex
	reports map[string]domain.Report
}

var _ port.ReportRepository = (*ReportRepo)(nil)

func NewReportRepo() *ReportRepo {
	return &ReportRepo{reports: map[string]domain.Report{}}
}

func (r *ReportRepo) Save(ctx context.Context, rep *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rep
	if old, ok := r.reports[rep.ID]; ok {
		// 重复投递不覆盖已读状态
		cp.ReadBy = old.ReadBy
	}
	r.reports[rep.ID] = cp
	return nil
}

func (r *ReportRepo) Get(ctx context.Context, id string) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, domain.ErrReportNotFound.WithData("report_id", id)
	}
	rep.ReadBy = append([]domain.PlayerID(nil), rep.ReadBy...)
	return &rep, nil
}

func (r *ReportRepo) ListByRecipient(ctx context.Context, player domain.PlayerID, limit int) ([]domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Report, 0)
	for _, rep := range r.reports {
		if rep.IsRecipient(player) {
			rep.ReadBy = append([]domain.PlayerID(nil), rep.ReadBy...)
			out = append(out, rep)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReportRepo) MarkRead(ctx context.Context, id string, player domain.PlayerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return domain.ErrReportNotFound.WithData("report_id", id)
	}
	if err := rep.MarkRead(player); err != nil {
		return err
	}
	r.reports[id] = rep
	return nil
}

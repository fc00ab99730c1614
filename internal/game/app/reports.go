package app

import (
	"context"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/modules/kit/logx"
)

const defaultReportPageSize = 50

// Reports 战报投递与查询。战报在到达事务里写进出库箱，这里负责搬到报告库。
type Reports struct {
	repo port.ReportRepository
	log  logx.Logger
}

func NewReports(repo port.ReportRepository, log logx.Logger) *Reports {
	if log == nil {
		log = logx.Nop()
	}
	return &Reports{repo: repo, log: log}
}

// Deliver 把一条出库箱里的战报写入报告库，按 id 幂等。
func (s *Reports) Deliver(ctx context.Context, r *domain.Report) error {
	return wrapInfra("report_save", s.repo.Save(ctx, r))
}

// List 玩家作为接收者的战报，按时间倒序。
func (s *Reports) List(ctx context.Context, player domain.PlayerID, limit int) ([]domain.Report, error) {
	if limit <= 0 || limit > defaultReportPageSize {
		limit = defaultReportPageSize
	}
	out, err := s.repo.ListByRecipient(ctx, player, limit)
	if err != nil {
		return nil, wrapInfra("report_list", err)
	}
	return out, nil
}

func (s *Reports) Get(ctx context.Context, player domain.PlayerID, id string) (*domain.Report, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, wrapInfra("report_get", err)
	}
	if !r.IsRecipient(player) {
		// 非接收者看不到这份战报，按不存在处理
		return nil, domain.ErrReportNotFound.WithData("report_id", id)
	}
	return r, nil
}

// MarkRead 已读标记是战报唯一可变的字段。
func (s *Reports) MarkRead(ctx context.Context, player domain.PlayerID, id string) error {
	r, err := s.Get(ctx, player, id)
	if err != nil {
		return err
	}
	if r.IsReadBy(player) {
		return nil
	}
	return wrapInfra("report_mark_read", s.repo.MarkRead(ctx, id, player))
}

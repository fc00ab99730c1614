package tick

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"Hegemony/internal/game/app"
	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/modules/kit/errx"
	"Hegemony/modules/kit/logx"
	"Hegemony/modules/kit/tracex"
)

// Loop 调度循环名，同时用作指标 label 和 tickctl 参数。
type Loop string

const (
	LoopArmy         Loop = "army"
	LoopConstruction Loop = "construction"
	LoopAccrual      Loop = "accrual"
	LoopStarvation   Loop = "starvation"
	LoopReport       Loop = "report"
)

// Loops 全部循环，Run 按这个顺序启动。
var Loops = []Loop{LoopArmy, LoopConstruction, LoopAccrual, LoopStarvation, LoopReport}

func ParseLoop(s string) (Loop, error) {
	for _, l := range Loops {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown loop %q", s)
}

type ArmyProcessor interface {
	Process(ctx context.Context, army domain.Army, token string) error
}

type QueueProcessor interface {
	CompleteTraining(ctx context.Context, it domain.TrainingItem, token string, now time.Time) (int, error)
	CompleteUpgrade(ctx context.Context, it domain.UpgradeItem, token string, now time.Time) (int, error)
}

type AccrualProcessor interface {
	Accrue(ctx context.Context, id domain.SettlementID, now time.Time) error
	Starve(ctx context.Context, id domain.SettlementID, now time.Time) (app.StarveResult, error)
}

type ReportDeliverer interface {
	Deliver(ctx context.Context, r *domain.Report) error
}

// Deps 调度器依赖。Registerer 为空时不注册指标。
type Deps struct {
	Store        port.Store
	Arrival      ArmyProcessor
	Construction QueueProcessor
	Accrual      AccrualProcessor
	Reports      ReportDeliverer
	IDs          port.IDGenerator
	Clock        port.Clock
	Log          logx.Logger
	Registerer   prometheus.Registerer
}

// Result 一轮的统计。Deferred 是认领后让出、留给下一轮的军队，也计入 Claimed。
type Result struct {
	Claimed  int
	Failed   int
	Deferred int
}

// Scheduler 只持有循环，不持有游戏状态；多个实例并行时靠存储层的原子认领互斥。
type Scheduler struct {
	cfg     Config
	d       Deps
	metrics *metrics
}

func New(cfg Config, d Deps) (*Scheduler, error) {
	if d.Store == nil || d.Arrival == nil || d.Construction == nil || d.Accrual == nil || d.Reports == nil {
		return nil, errors.New("tick: store and processors are required")
	}
	if d.IDs == nil {
		return nil, errors.New("tick: id generator is required")
	}
	if d.Clock == nil {
		d.Clock = port.SystemClock{}
	}
	if d.Log == nil {
		d.Log = logx.Nop()
	}
	return &Scheduler{cfg: cfg.withDefaults(), d: d, metrics: newMetrics(d.Registerer)}, nil
}

// Run 每个循环一个 goroutine，首轮立即执行；ctx 取消后全部退出并返回 nil。
func (s *Scheduler) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, l := range Loops {
		g.Go(func() error {
			s.loop(gctx, l)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, l Loop) {
	s.d.Log.Info("tick loop start", zap.String("loop", string(l)), zap.Duration("every", s.cfg.every(l)))
	ticker := time.NewTicker(s.cfg.every(l))
	defer ticker.Stop()
	for {
		if _, err := s.RunOnce(ctx, l); err != nil && ctx.Err() == nil {
			logx.ReportSysErrorWithLoggerContext(ctx, s.d.Log, logx.NewSysLog("tick."+string(l), err))
		}
		select {
		case <-ctx.Done():
			s.d.Log.Info("tick loop stop", zap.String("loop", string(l)))
			return
		case <-ticker.C:
		}
	}
}

// RunOnce 执行一轮。单个条目失败只计入 Result.Failed，返回的错误只表示认领/分页本身失败。
func (s *Scheduler) RunOnce(ctx context.Context, l Loop) (Result, error) {
	ctx = tracex.Start(ctx, "tick."+string(l))
	start := time.Now()
	var (
		res Result
		err error
	)
	switch l {
	case LoopArmy:
		res, err = s.armyPass(ctx)
	case LoopConstruction:
		res, err = s.constructionPass(ctx)
	case LoopAccrual:
		res, err = s.settlementPass(ctx, l, s.d.Store.ListSettlementIDs, func(ctx context.Context, id domain.SettlementID, now time.Time) error {
			return s.d.Accrual.Accrue(ctx, id, now)
		})
	case LoopStarvation:
		res, err = s.settlementPass(ctx, l, s.d.Store.ListStarvingSettlementIDs, func(ctx context.Context, id domain.SettlementID, now time.Time) error {
			r, err := s.d.Accrual.Starve(ctx, id, now)
			if err == nil && !r.Killed.IsEmpty() {
				s.d.Log.WithContext(ctx).Info("troops starved",
					zap.Int64("settlement_id", int64(id)),
					zap.Int("killed", r.Killed.Total()),
					zap.Bool("resolved", r.Resolved))
			}
			return err
		})
	case LoopReport:
		res, err = s.reportPass(ctx)
	default:
		return Result{}, fmt.Errorf("unknown loop %q", l)
	}
	s.metrics.duration.WithLabelValues(string(l)).Observe(time.Since(start).Seconds())
	s.metrics.claimed.WithLabelValues(string(l)).Add(float64(res.Claimed))
	s.metrics.failed.WithLabelValues(string(l)).Add(float64(res.Failed))
	if res.Claimed > 0 || res.Failed > 0 {
		s.d.Log.WithContext(ctx).Debug("tick pass done",
			zap.String("loop", string(l)), zap.Int("claimed", res.Claimed), zap.Int("failed", res.Failed),
			zap.Int("deferred", res.Deferred))
	}
	return res, err
}

// armyPass 每批一个新 token。到达处理失败不重试：标记失败、告警，等运维 release。
// 让出的军队已回到路上，下一轮重新认领。
func (s *Scheduler) armyPass(ctx context.Context) (Result, error) {
	var res Result
	for range maxBatchesPerPass {
		token, err := s.d.IDs.NextToken()
		if err != nil {
			return res, err
		}
		armies, err := s.d.Store.ClaimDueArmies(ctx, s.d.Clock.Now(), token, s.cfg.BatchSize)
		if err != nil {
			return res, err
		}
		res.Claimed += len(armies)
		deferred := 0
		for _, a := range armies {
			err := s.d.Arrival.Process(ctx, a, token)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrArrivalDeferred):
				deferred++
				s.metrics.deferred.Inc()
			default:
				res.Failed++
				s.fault(ctx, a, token, err)
			}
		}
		res.Deferred += deferred
		// 整批都让出时再认领只会拿回同一批
		if len(armies) < s.cfg.BatchSize || deferred == len(armies) {
			return res, nil
		}
	}
	return res, nil
}

func (s *Scheduler) fault(ctx context.Context, a domain.Army, token string, cause error) {
	s.metrics.integrity.Inc()
	fields := []zap.Field{
		zap.Int64("army_id", int64(a.ID)),
		zap.String("mission", string(a.Mission)),
		zap.Time("arrives_at", a.ArrivesAt),
	}
	logx.ReportIntegrityWithLoggerContext(ctx, s.d.Log, logx.NewSysLog("tick.army.process", cause), fields...)
	if err := s.d.Store.MarkArmyFaulted(ctx, a.ID, token, cause.Error()); err != nil {
		logx.ReportSysErrorWithLoggerContext(ctx, s.d.Log, logx.NewSysLog("tick.army.mark_faulted", err), fields...)
	}
}

// constructionPass 处理在单个事务里完成，回滚后放开认领，下一轮重试。
func (s *Scheduler) constructionPass(ctx context.Context) (Result, error) {
	var res Result
	now := s.d.Clock.Now()

	token, err := s.d.IDs.NextToken()
	if err != nil {
		return res, err
	}
	training, err := s.d.Store.ClaimDueTraining(ctx, now, token, s.cfg.BatchSize)
	if err != nil {
		return res, err
	}
	res.Claimed += len(training)
	for _, it := range training {
		if _, err := s.d.Construction.CompleteTraining(ctx, it, token, now); err != nil {
			res.Failed++
			s.retryLater(ctx, "tick.training", err, zap.Int64("item_id", int64(it.ID)))
			if rerr := s.d.Store.ReleaseTrainingClaim(ctx, it.ID, token); rerr != nil {
				logx.ReportSysErrorWithLoggerContext(ctx, s.d.Log, logx.NewSysLog("tick.training.release", rerr))
			}
		}
	}

	token, err = s.d.IDs.NextToken()
	if err != nil {
		return res, err
	}
	upgrades, err := s.d.Store.ClaimDueUpgrades(ctx, now, token, s.cfg.BatchSize)
	if err != nil {
		return res, err
	}
	res.Claimed += len(upgrades)
	for _, it := range upgrades {
		if _, err := s.d.Construction.CompleteUpgrade(ctx, it, token, now); err != nil {
			res.Failed++
			s.retryLater(ctx, "tick.upgrade", err, zap.Int64("item_id", int64(it.ID)))
			if rerr := s.d.Store.ReleaseUpgradeClaim(ctx, it.ID, token); rerr != nil {
				logx.ReportSysErrorWithLoggerContext(ctx, s.d.Log, logx.NewSysLog("tick.upgrade.release", rerr))
			}
		}
	}
	return res, nil
}

type pageFunc func(ctx context.Context, afterID domain.SettlementID, limit int) ([]domain.SettlementID, error)

// settlementPass 按 id 分页遍历村庄，单个村庄失败不影响其他村庄。
func (s *Scheduler) settlementPass(ctx context.Context, l Loop, page pageFunc, fn func(context.Context, domain.SettlementID, time.Time) error) (Result, error) {
	var (
		res   Result
		after domain.SettlementID
	)
	now := s.d.Clock.Now()
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		ids, err := page(ctx, after, s.cfg.BatchSize)
		if err != nil {
			return res, err
		}
		for _, id := range ids {
			res.Claimed++
			if err := fn(ctx, id, now); err != nil {
				res.Failed++
				s.retryLater(ctx, "tick."+string(l), err, zap.Int64("settlement_id", int64(id)))
			}
		}
		if len(ids) < s.cfg.BatchSize {
			return res, nil
		}
		after = ids[len(ids)-1]
	}
}

// reportPass 投递成功的批量标记，失败的放开认领。
func (s *Scheduler) reportPass(ctx context.Context) (Result, error) {
	var res Result
	for range maxBatchesPerPass {
		token, err := s.d.IDs.NextToken()
		if err != nil {
			return res, err
		}
		reports, err := s.d.Store.ClaimPendingReports(ctx, token, s.cfg.BatchSize)
		if err != nil {
			return res, err
		}
		res.Claimed += len(reports)
		delivered := make([]string, 0, len(reports))
		for i := range reports {
			r := &reports[i]
			if err := s.d.Reports.Deliver(ctx, r); err != nil {
				res.Failed++
				s.retryLater(ctx, "tick.report.deliver", err, zap.String("report_id", r.ID))
				if rerr := s.d.Store.ReleaseReportClaim(ctx, r.ID, token); rerr != nil {
					logx.ReportSysErrorWithLoggerContext(ctx, s.d.Log, logx.NewSysLog("tick.report.release", rerr))
				}
				continue
			}
			delivered = append(delivered, r.ID)
		}
		if len(delivered) > 0 {
			if err := s.d.Store.MarkReportsDelivered(ctx, token, delivered); err != nil {
				return res, err
			}
		}
		if len(reports) < s.cfg.BatchSize {
			return res, nil
		}
	}
	return res, nil
}

// retryLater 可重试的失败：业务拒绝按 biz 记，其余按系统错误记。
func (s *Scheduler) retryLater(ctx context.Context, action string, err error, fields ...zap.Field) {
	if e, ok := errx.From(err); ok && e.Kind() == errx.KindBiz {
		logx.ReportBizWithLoggerContext(ctx, s.d.Log, logx.NewBizLog(action, e.Reason(), e.Msg()), fields...)
		return
	}
	logx.ReportSysErrorWithLoggerContext(ctx, s.d.Log, logx.NewSysLog(action, err), fields...)
}

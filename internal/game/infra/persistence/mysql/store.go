// Package mysql 基于 gorm 的游戏状态存储。认领用条件更新，事务内读写用行锁，死锁时整个事务重跑。
package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/infra/persistence/mapper"
	"Hegemony/internal/game/infra/persistence/model"
)

const (
	OpInTx            = "repo.game.InTx"
	OpClaimArmies     = "repo.game.ClaimDueArmies"
	OpFaultArmy       = "repo.game.MarkArmyFaulted"
	OpReleaseArmy     = "repo.game.ReleaseArmyClaim"
	OpListFaulted     = "repo.game.ListFaultedArmies"
	OpClaimTraining   = "repo.game.ClaimDueTraining"
	OpReleaseTraining = "repo.game.ReleaseTrainingClaim"
	OpClaimUpgrades   = "repo.game.ClaimDueUpgrades"
	OpReleaseUpgrade  = "repo.game.ReleaseUpgradeClaim"
	OpListSettlements = "repo.game.ListSettlementIDs"
	OpClaimReports    = "repo.game.ClaimPendingReports"
	OpDeliverReports  = "repo.game.MarkReportsDelivered"
	OpReleaseReport   = "repo.game.ReleaseReportClaim"
)

var inFlight = []string{string(domain.ArmyDispatched), string(domain.ArmyReturning)}

// unresolved 在路上或已认领未结算。
var unresolved = []string{string(domain.ArmyDispatched), string(domain.ArmyReturning), string(domain.ArmyArrived)}

const maxDeadlockRetries = 2

type Store struct {
	db *gorm.DB
}

var _ port.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate 建表，只在配置 mysql.migrate=true 时调用。
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(model.All()...)
}

// InTx 遇到死锁时整个事务重跑，fn 必须可重入。
func (s *Store) InTx(ctx context.Context, fn func(tx port.Tx) error) error {
	var err error
	for range maxDeadlockRetries + 1 {
		err = s.db.WithContext(ctx).Transaction(func(g *gorm.DB) error {
			return fn(&tx{db: g})
		})
		if !deadlock(err) || ctx.Err() != nil {
			break
		}
	}
	return wrap(OpInTx, err, nil)
}

func (s *Store) ClaimDueArmies(ctx context.Context, now time.Time, token string, limit int) ([]domain.Army, error) {
	db := s.db.WithContext(ctx)
	now = now.UTC()
	var ids []int64
	err := db.Model(&model.Army{}).
		Where("status IN ? AND claim_token = '' AND fault = '' AND arrives_at <= ?", inFlight, now).
		Order("arrives_at, id").Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, wrap(OpClaimArmies, err, nil)
	}
	for _, id := range ids {
		// 影响行数为 0 说明被别的实例抢先认领，跳过
		res := db.Model(&model.Army{}).
			Where("id = ? AND claim_token = '' AND status IN ? AND arrives_at <= ?", id, inFlight, now).
			Updates(map[string]any{
				"status":      string(domain.ArmyArrived),
				"claim_token": token,
				"claimed_at":  now,
			})
		if res.Error != nil {
			return nil, wrap(OpClaimArmies, res.Error, map[string]any{"army_id": id})
		}
	}

	var rows []model.Army
	err = db.Where("claim_token = ? AND status = ?", token, string(domain.ArmyArrived)).
		Order("arrives_at, id").Find(&rows).Error
	if err != nil {
		return nil, wrap(OpClaimArmies, err, nil)
	}
	return armies(rows)
}

func (s *Store) MarkArmyFaulted(ctx context.Context, id domain.ArmyID, token, reason string) error {
	if r := []rune(reason); len(r) > 500 {
		reason = string(r[:500])
	}
	res := s.db.WithContext(ctx).Model(&model.Army{}).
		Where("id = ? AND claim_token = ?", int64(id), token).
		Update("fault", reason)
	if res.Error != nil {
		return wrap(OpFaultArmy, res.Error, map[string]any{"army_id": int64(id)})
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Army{}).Where("id = ?", int64(id)).Count(&n).Error; err != nil {
		return wrap(OpFaultArmy, err, map[string]any{"army_id": int64(id)})
	}
	if n == 0 {
		return domain.ErrArmyNotFound.WithData("army_id", int64(id))
	}
	return nil
}

func (s *Store) ReleaseArmyClaim(ctx context.Context, id domain.ArmyID) error {
	return s.InTx(ctx, func(t port.Tx) error {
		a, err := t.LockArmy(ctx, id)
		if err != nil {
			return err
		}
		if err := a.Release(); err != nil {
			return err
		}
		return t.SaveArmy(ctx, a)
	})
}

func (s *Store) ListFaultedArmies(ctx context.Context, limit int) ([]domain.Army, error) {
	var rows []model.Army
	q := s.db.WithContext(ctx).Where("fault <> ''").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap(OpListFaulted, err, nil)
	}
	return armies(rows)
}

func (s *Store) ClaimDueTraining(ctx context.Context, now time.Time, token string, limit int) ([]domain.TrainingItem, error) {
	db := s.db.WithContext(ctx)
	ids, err := s.claimQueue(db, &model.TrainingItem{}, now, token, limit)
	if err != nil {
		return nil, wrap(OpClaimTraining, err, nil)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []model.TrainingItem
	if err := db.Where("claim_token = ? AND status = ?", token, string(domain.QueueActive)).Order("ends_at, id").Find(&rows).Error; err != nil {
		return nil, wrap(OpClaimTraining, err, nil)
	}
	out := make([]domain.TrainingItem, 0, len(rows))
	for i := range rows {
		it, err := mapper.TrainingFromModel(&rows[i])
		if err != nil {
			return nil, wrap(OpClaimTraining, err, nil)
		}
		out = append(out, *it)
	}
	return out, nil
}

func (s *Store) ClaimDueUpgrades(ctx context.Context, now time.Time, token string, limit int) ([]domain.UpgradeItem, error) {
	db := s.db.WithContext(ctx)
	ids, err := s.claimQueue(db, &model.UpgradeItem{}, now, token, limit)
	if err != nil {
		return nil, wrap(OpClaimUpgrades, err, nil)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []model.UpgradeItem
	if err := db.Where("claim_token = ? AND status = ?", token, string(domain.QueueActive)).Order("ends_at, id").Find(&rows).Error; err != nil {
		return nil, wrap(OpClaimUpgrades, err, nil)
	}
	out := make([]domain.UpgradeItem, 0, len(rows))
	for i := range rows {
		it, err := mapper.UpgradeFromModel(&rows[i])
		if err != nil {
			return nil, wrap(OpClaimUpgrades, err, nil)
		}
		out = append(out, *it)
	}
	return out, nil
}

// claimQueue 训练和升级两张表结构相同，认领逻辑共用。返回本次抢到的 id。
func (s *Store) claimQueue(db *gorm.DB, table any, now time.Time, token string, limit int) ([]int64, error) {
	now = now.UTC()
	var ids []int64
	err := db.Model(table).
		Where("status = ? AND claim_token = '' AND ends_at <= ?", string(domain.QueueActive), now).
		Order("ends_at, id").Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	won := make([]int64, 0, len(ids))
	for _, id := range ids {
		res := db.Model(table).
			Where("id = ? AND claim_token = '' AND status = ?", id, string(domain.QueueActive)).
			Update("claim_token", token)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			won = append(won, id)
		}
	}
	return won, nil
}

func (s *Store) ReleaseTrainingClaim(ctx context.Context, id domain.QueueItemID, token string) error {
	err := s.db.WithContext(ctx).Model(&model.TrainingItem{}).
		Where("id = ? AND claim_token = ?", int64(id), token).
		Update("claim_token", "").Error
	return wrap(OpReleaseTraining, err, map[string]any{"item_id": int64(id)})
}

func (s *Store) ReleaseUpgradeClaim(ctx context.Context, id domain.QueueItemID, token string) error {
	err := s.db.WithContext(ctx).Model(&model.UpgradeItem{}).
		Where("id = ? AND claim_token = ?", int64(id), token).
		Update("claim_token", "").Error
	return wrap(OpReleaseUpgrade, err, map[string]any{"item_id": int64(id)})
}

func (s *Store) ListSettlementIDs(ctx context.Context, afterID domain.SettlementID, limit int) ([]domain.SettlementID, error) {
	return s.pageIDs(ctx, s.db.WithContext(ctx).Where("id > ?", int64(afterID)), limit)
}

func (s *Store) ListStarvingSettlementIDs(ctx context.Context, afterID domain.SettlementID, limit int) ([]domain.SettlementID, error) {
	q := s.db.WithContext(ctx).Where("id > ? AND (stock_crop < 0 OR crop_upkeep > prod_crop)", int64(afterID))
	return s.pageIDs(ctx, q, limit)
}

func (s *Store) pageIDs(ctx context.Context, q *gorm.DB, limit int) ([]domain.SettlementID, error) {
	q = q.Model(&model.Settlement{}).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var raw []int64
	if err := q.Pluck("id", &raw).Error; err != nil {
		return nil, wrap(OpListSettlements, err, nil)
	}
	out := make([]domain.SettlementID, 0, len(raw))
	for _, id := range raw {
		out = append(out, domain.SettlementID(id))
	}
	return out, nil
}

func (s *Store) ClaimPendingReports(ctx context.Context, token string, limit int) ([]domain.Report, error) {
	db := s.db.WithContext(ctx)
	var seqs []int64
	err := db.Model(&model.ReportOutbox{}).
		Where("delivered_at IS NULL AND claim_token = ''").
		Order("seq").Limit(limit).
		Pluck("seq", &seqs).Error
	if err != nil {
		return nil, wrap(OpClaimReports, err, nil)
	}
	for _, seq := range seqs {
		res := db.Model(&model.ReportOutbox{}).
			Where("seq = ? AND claim_token = '' AND delivered_at IS NULL", seq).
			Update("claim_token", token)
		if res.Error != nil {
			return nil, wrap(OpClaimReports, res.Error, map[string]any{"seq": seq})
		}
	}
	var rows []model.ReportOutbox
	if err := db.Where("claim_token = ? AND delivered_at IS NULL", token).Order("seq").Find(&rows).Error; err != nil {
		return nil, wrap(OpClaimReports, err, nil)
	}
	out := make([]domain.Report, 0, len(rows))
	for i := range rows {
		r, err := mapper.ReportFromOutbox(&rows[i])
		if err != nil {
			return nil, wrap(OpClaimReports, err, map[string]any{"report_id": rows[i].ID})
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) MarkReportsDelivered(ctx context.Context, token string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&model.ReportOutbox{}).
		Where("claim_token = ? AND id IN ?", token, ids).
		Update("delivered_at", time.Now().UTC()).Error
	return wrap(OpDeliverReports, err, map[string]any{"count": len(ids)})
}

func (s *Store) ReleaseReportClaim(ctx context.Context, id, token string) error {
	err := s.db.WithContext(ctx).Model(&model.ReportOutbox{}).
		Where("id = ? AND claim_token = ? AND delivered_at IS NULL", id, token).
		Update("claim_token", "").Error
	return wrap(OpReleaseReport, err, map[string]any{"report_id": id})
}

func armies(rows []model.Army) ([]domain.Army, error) {
	out := make([]domain.Army, 0, len(rows))
	for i := range rows {
		a, err := mapper.ArmyFromModel(&rows[i])
		if err != nil {
			return nil, wrap(OpClaimArmies, err, map[string]any{"army_id": rows[i].ID})
		}
		out = append(out, *a)
	}
	return out, nil
}

package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/domain"
	"Hegemony/internal/game/infra/persistence/mapper"
	"Hegemony/internal/game/infra/persistence/model"
)

const (
	OpLockSettlement   = "repo.game.LockSettlement"
	OpFindSettlement   = "repo.game.FindSettlementAt"
	OpCreateSettlement = "repo.game.CreateSettlement"
	OpSaveSettlement   = "repo.game.SaveSettlement"
	OpLoadGarrison     = "repo.game.LoadGarrison"
	OpSaveGarrison     = "repo.game.SaveGarrison"
	OpLockArmy         = "repo.game.LockArmy"
	OpSaveArmy         = "repo.game.SaveArmy"
	OpListArmies       = "repo.game.ListArmies"
	OpArrivalAhead     = "repo.game.ArrivalAhead"
	OpTrainingQueue    = "repo.game.TrainingQueue"
	OpSaveTraining     = "repo.game.SaveTraining"
	OpUpgradeQueue     = "repo.game.UpgradeQueue"
	OpSaveUpgrade      = "repo.game.SaveUpgrade"
	OpAppendReport     = "repo.game.AppendReport"
)

type tx struct {
	db *gorm.DB
}

var _ port.Tx = (*tx)(nil)

func (t *tx) forUpdate(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *tx) LockSettlement(ctx context.Context, id domain.SettlementID) (*domain.Settlement, error) {
	var m model.Settlement
	err := t.forUpdate(ctx).Where("id = ?", int64(id)).First(&m).Error
	switch {
	case err == nil:
		s, err := mapper.SettlementFromModel(&m)
		return s, wrap(OpLockSettlement, err, nil)
	case notFound(err):
		return nil, domain.ErrSettlementNotFound.WithData("settlement_id", int64(id))
	default:
		return nil, wrap(OpLockSettlement, err, map[string]any{"settlement_id": int64(id)})
	}
}

// FindSettlementAt 普通读，不加锁：空坐标上的 FOR UPDATE 是间隙锁，两个开拓会互相死锁。
// 抢同一坐标靠 uk_coord 唯一索引，后插入的一方拿到 ErrCoordinateTaken。
func (t *tx) FindSettlementAt(ctx context.Context, p domain.Point) (*domain.Settlement, bool, error) {
	var m model.Settlement
	err := t.db.WithContext(ctx).Where("x = ? AND y = ?", p.X, p.Y).First(&m).Error
	switch {
	case err == nil:
		s, err := mapper.SettlementFromModel(&m)
		if err != nil {
			return nil, false, wrap(OpFindSettlement, err, nil)
		}
		return s, true, nil
	case notFound(err):
		return nil, false, nil
	default:
		return nil, false, wrap(OpFindSettlement, err, map[string]any{"x": p.X, "y": p.Y})
	}
}

func (t *tx) CreateSettlement(ctx context.Context, s *domain.Settlement) error {
	m, err := mapper.SettlementToModel(s)
	if err != nil {
		return wrap(OpCreateSettlement, err, nil)
	}
	err = t.db.WithContext(ctx).Create(m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrCoordinateTaken.WithData("x", s.X).WithData("y", s.Y)
	}
	return wrap(OpCreateSettlement, err, map[string]any{"settlement_id": int64(s.ID)})
}

func (t *tx) SaveSettlement(ctx context.Context, s *domain.Settlement) error {
	m, err := mapper.SettlementToModel(s)
	if err != nil {
		return wrap(OpSaveSettlement, err, nil)
	}
	return wrap(OpSaveSettlement, t.db.WithContext(ctx).Save(m).Error, map[string]any{"settlement_id": int64(s.ID)})
}

func (t *tx) LoadGarrison(ctx context.Context, id domain.SettlementID) (domain.Garrison, error) {
	var m model.Garrison
	err := t.forUpdate(ctx).Where("settlement_id = ?", int64(id)).First(&m).Error
	switch {
	case err == nil:
		g, err := mapper.GarrisonFromModel(&m)
		return g, wrap(OpLoadGarrison, err, nil)
	case notFound(err):
		return domain.Garrison{}, nil
	default:
		return nil, wrap(OpLoadGarrison, err, map[string]any{"settlement_id": int64(id)})
	}
}

func (t *tx) SaveGarrison(ctx context.Context, id domain.SettlementID, g domain.Garrison) error {
	m, err := mapper.GarrisonToModel(id, g, time.Now())
	if err != nil {
		return wrap(OpSaveGarrison, err, nil)
	}
	return wrap(OpSaveGarrison, t.db.WithContext(ctx).Save(m).Error, map[string]any{"settlement_id": int64(id)})
}

func (t *tx) LockArmy(ctx context.Context, id domain.ArmyID) (*domain.Army, error) {
	var m model.Army
	err := t.forUpdate(ctx).Where("id = ?", int64(id)).First(&m).Error
	switch {
	case err == nil:
		a, err := mapper.ArmyFromModel(&m)
		return a, wrap(OpLockArmy, err, nil)
	case notFound(err):
		return nil, domain.ErrArmyNotFound.WithData("army_id", int64(id))
	default:
		return nil, wrap(OpLockArmy, err, map[string]any{"army_id": int64(id)})
	}
}

func (t *tx) CreateArmy(ctx context.Context, a *domain.Army) error {
	m, err := mapper.ArmyToModel(a)
	if err != nil {
		return wrap(OpSaveArmy, err, nil)
	}
	return wrap(OpSaveArmy, t.db.WithContext(ctx).Create(m).Error, map[string]any{"army_id": int64(a.ID)})
}

func (t *tx) SaveArmy(ctx context.Context, a *domain.Army) error {
	m, err := mapper.ArmyToModel(a)
	if err != nil {
		return wrap(OpSaveArmy, err, nil)
	}
	return wrap(OpSaveArmy, t.db.WithContext(ctx).Save(m).Error, map[string]any{"army_id": int64(a.ID)})
}

func (t *tx) StationedAt(ctx context.Context, id domain.SettlementID) ([]domain.Army, error) {
	var rows []model.Army
	err := t.forUpdate(ctx).
		Where("dest_settlement_id = ? AND status = ?", int64(id), string(domain.ArmyStationed)).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, wrap(OpListArmies, err, map[string]any{"settlement_id": int64(id)})
	}
	return armies(rows)
}

func (t *tx) ArmiesOwnedBy(ctx context.Context, owner domain.PlayerID) ([]domain.Army, error) {
	var rows []model.Army
	err := t.db.WithContext(ctx).
		Where("owner_id = ? AND status <> ?", int64(owner), string(domain.ArmyTerminated)).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, wrap(OpListArmies, err, map[string]any{"owner_id": int64(owner)})
	}
	return armies(rows)
}

func (t *tx) ArrivalAhead(ctx context.Context, a *domain.Army) (bool, error) {
	at := a.ArrivesAt.UTC()
	q := t.db.WithContext(ctx).Model(&model.Army{}).
		Where("id <> ? AND fault = '' AND status IN ?", int64(a.ID), unresolved).
		Where("(arrives_at < ? OR (arrives_at = ? AND id < ?))", at, at, int64(a.ID))
	sid, p := a.Bound()
	if sid != 0 {
		q = q.Where("((is_returning = ? AND origin_id = ?) OR (is_returning = ? AND dest_settlement_id = ?))",
			true, int64(sid), false, int64(sid))
	} else {
		q = q.Where("is_returning = ? AND dest_settlement_id = 0 AND dest_x = ? AND dest_y = ?", false, p.X, p.Y)
	}
	var ids []int64
	if err := q.Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, wrap(OpArrivalAhead, err, map[string]any{"army_id": int64(a.ID)})
	}
	return len(ids) > 0, nil
}

func (t *tx) TrainingQueue(ctx context.Context, id domain.SettlementID) ([]domain.TrainingItem, error) {
	var rows []model.TrainingItem
	err := t.db.WithContext(ctx).
		Where("settlement_id = ? AND status <> ?", int64(id), string(domain.QueueDone)).
		Order("seq").Find(&rows).Error
	if err != nil {
		return nil, wrap(OpTrainingQueue, err, map[string]any{"settlement_id": int64(id)})
	}
	out := make([]domain.TrainingItem, 0, len(rows))
	for i := range rows {
		it, err := mapper.TrainingFromModel(&rows[i])
		if err != nil {
			return nil, wrap(OpTrainingQueue, err, nil)
		}
		out = append(out, *it)
	}
	return out, nil
}

func (t *tx) LockTraining(ctx context.Context, id domain.QueueItemID) (*domain.TrainingItem, error) {
	var m model.TrainingItem
	err := t.forUpdate(ctx).Where("id = ?", int64(id)).First(&m).Error
	switch {
	case err == nil:
		it, err := mapper.TrainingFromModel(&m)
		return it, wrap(OpTrainingQueue, err, nil)
	case notFound(err):
		return nil, domain.ErrQueueItemNotFound.WithData("item_id", int64(id))
	default:
		return nil, wrap(OpTrainingQueue, err, map[string]any{"item_id": int64(id)})
	}
}

func (t *tx) CreateTraining(ctx context.Context, it *domain.TrainingItem) error {
	m, err := mapper.TrainingToModel(it)
	if err != nil {
		return wrap(OpSaveTraining, err, nil)
	}
	return wrap(OpSaveTraining, t.db.WithContext(ctx).Create(m).Error, map[string]any{"item_id": int64(it.ID)})
}

func (t *tx) SaveTraining(ctx context.Context, it *domain.TrainingItem) error {
	m, err := mapper.TrainingToModel(it)
	if err != nil {
		return wrap(OpSaveTraining, err, nil)
	}
	return wrap(OpSaveTraining, t.db.WithContext(ctx).Save(m).Error, map[string]any{"item_id": int64(it.ID)})
}

func (t *tx) DeleteTraining(ctx context.Context, id domain.QueueItemID) error {
	err := t.db.WithContext(ctx).Where("id = ?", int64(id)).Delete(&model.TrainingItem{}).Error
	return wrap(OpSaveTraining, err, map[string]any{"item_id": int64(id)})
}

func (t *tx) UpgradeQueue(ctx context.Context, id domain.SettlementID) ([]domain.UpgradeItem, error) {
	var rows []model.UpgradeItem
	err := t.db.WithContext(ctx).
		Where("settlement_id = ? AND status <> ?", int64(id), string(domain.QueueDone)).
		Order("seq").Find(&rows).Error
	if err != nil {
		return nil, wrap(OpUpgradeQueue, err, map[string]any{"settlement_id": int64(id)})
	}
	out := make([]domain.UpgradeItem, 0, len(rows))
	for i := range rows {
		it, err := mapper.UpgradeFromModel(&rows[i])
		if err != nil {
			return nil, wrap(OpUpgradeQueue, err, nil)
		}
		out = append(out, *it)
	}
	return out, nil
}

func (t *tx) LockUpgrade(ctx context.Context, id domain.QueueItemID) (*domain.UpgradeItem, error) {
	var m model.UpgradeItem
	err := t.forUpdate(ctx).Where("id = ?", int64(id)).First(&m).Error
	switch {
	case err == nil:
		it, err := mapper.UpgradeFromModel(&m)
		return it, wrap(OpUpgradeQueue, err, nil)
	case notFound(err):
		return nil, domain.ErrQueueItemNotFound.WithData("item_id", int64(id))
	default:
		return nil, wrap(OpUpgradeQueue, err, map[string]any{"item_id": int64(id)})
	}
}

func (t *tx) CreateUpgrade(ctx context.Context, it *domain.UpgradeItem) error {
	m, err := mapper.UpgradeToModel(it)
	if err != nil {
		return wrap(OpSaveUpgrade, err, nil)
	}
	return wrap(OpSaveUpgrade, t.db.WithContext(ctx).Create(m).Error, map[string]any{"item_id": int64(it.ID)})
}

func (t *tx) SaveUpgrade(ctx context.Context, it *domain.UpgradeItem) error {
	m, err := mapper.UpgradeToModel(it)
	if err != nil {
		return wrap(OpSaveUpgrade, err, nil)
	}
	return wrap(OpSaveUpgrade, t.db.WithContext(ctx).Save(m).Error, map[string]any{"item_id": int64(it.ID)})
}

func (t *tx) AppendReport(ctx context.Context, r *domain.Report) error {
	m, err := mapper.ReportToOutbox(r)
	if err != nil {
		return wrap(OpAppendReport, err, nil)
	}
	// 同一 id 重复写入忽略
	err = t.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
	return wrap(OpAppendReport, err, map[string]any{"report_id": r.ID})
}

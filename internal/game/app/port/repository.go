package port

import (
	"context"
	"time"

	"Hegemony/internal/game/domain"
)

// Store 游戏状态存储：事务 + 调度器用的原子认领。
//
// 认领约定：先按 (到期时间, id) 升序选出到期且未认领的行，再逐行做条件更新
// （WHERE id=? AND claim_token=''），影响行数为 0 说明被别的实例抢走，最后按 token 回读。
// 返回结果按 (到期时间, id) 升序。
type Store interface {
	// InTx 在一个事务里执行 fn，fn 返回错误时整体回滚。
	InTx(ctx context.Context, fn func(tx Tx) error) error

	ClaimDueArmies(ctx context.Context, now time.Time, token string, limit int) ([]domain.Army, error)
	// MarkArmyFaulted 记录处理失败原因，认领保持不动，之后不会被自动认领。
	MarkArmyFaulted(ctx context.Context, id domain.ArmyID, token, reason string) error
	// ReleaseArmyClaim 运维确认后放开失败军队的认领。
	ReleaseArmyClaim(ctx context.Context, id domain.ArmyID) error
	ListFaultedArmies(ctx context.Context, limit int) ([]domain.Army, error)

	ClaimDueTraining(ctx context.Context, now time.Time, token string, limit int) ([]domain.TrainingItem, error)
	ReleaseTrainingClaim(ctx context.Context, id domain.QueueItemID, token string) error
	ClaimDueUpgrades(ctx context.Context, now time.Time, token string, limit int) ([]domain.UpgradeItem, error)
	ReleaseUpgradeClaim(ctx context.Context, id domain.QueueItemID, token string) error

	// ListSettlementIDs 按 id 分页，afterID 为上一页最后一个 id。
	ListSettlementIDs(ctx context.Context, afterID domain.SettlementID, limit int) ([]domain.SettlementID, error)
	// ListStarvingSettlementIDs 粮食为负或耗粮大于产量的村庄。
	ListStarvingSettlementIDs(ctx context.Context, afterID domain.SettlementID, limit int) ([]domain.SettlementID, error)

	// 战报出库箱：到达事务里写入，投递循环认领后写入报告库。
	ClaimPendingReports(ctx context.Context, token string, limit int) ([]domain.Report, error)
	MarkReportsDelivered(ctx context.Context, token string, ids []string) error
	ReleaseReportClaim(ctx context.Context, id, token string) error
}

// Tx 事务内的读写。Lock* 在支持行锁的实现上加锁，同一村庄的并发到达因此串行。
type Tx interface {
	LockSettlement(ctx context.Context, id domain.SettlementID) (*domain.Settlement, error)
	FindSettlementAt(ctx context.Context, p domain.Point) (*domain.Settlement, bool, error)
	// CreateSettlement 坐标唯一，冲突时返回 domain.ErrCoordinateTaken。
	CreateSettlement(ctx context.Context, s *domain.Settlement) error
	SaveSettlement(ctx context.Context, s *domain.Settlement) error

	LoadGarrison(ctx context.Context, id domain.SettlementID) (domain.Garrison, error)
	SaveGarrison(ctx context.Context, id domain.SettlementID, g domain.Garrison) error

	LockArmy(ctx context.Context, id domain.ArmyID) (*domain.Army, error)
	CreateArmy(ctx context.Context, a *domain.Army) error
	SaveArmy(ctx context.Context, a *domain.Army) error
	// StationedAt 驻扎在该村庄的外来军队，按 id 升序。
	StationedAt(ctx context.Context, id domain.SettlementID) ([]domain.Army, error)
	// ArmiesOwnedBy 玩家所有未终结的军队，按 id 升序。
	ArmiesOwnedBy(ctx context.Context, owner domain.PlayerID) ([]domain.Army, error)
	// ArrivalAhead 同一落点是否还有按 (arrives_at, id) 排在 a 前面、尚未结算的军队。
	ArrivalAhead(ctx context.Context, a *domain.Army) (bool, error)

	// TrainingQueue 未完成的训练条目，按 seq 升序。
	TrainingQueue(ctx context.Context, id domain.SettlementID) ([]domain.TrainingItem, error)
	LockTraining(ctx context.Context, id domain.QueueItemID) (*domain.TrainingItem, error)
	CreateTraining(ctx context.Context, it *domain.TrainingItem) error
	SaveTraining(ctx context.Context, it *domain.TrainingItem) error
	DeleteTraining(ctx context.Context, id domain.QueueItemID) error

	// UpgradeQueue 未完成的升级条目，按 seq 升序。
	UpgradeQueue(ctx context.Context, id domain.SettlementID) ([]domain.UpgradeItem, error)
	LockUpgrade(ctx context.Context, id domain.QueueItemID) (*domain.UpgradeItem, error)
	CreateUpgrade(ctx context.Context, it *domain.UpgradeItem) error
	SaveUpgrade(ctx context.Context, it *domain.UpgradeItem) error

	// AppendReport 写入战报出库箱，同一个 id 重复写入不会产生第二条。
	AppendReport(ctx context.Context, r *domain.Report) error
}

// ReportRepository 玩家可读的战报库。
type ReportRepository interface {
	// Save 按 id 幂等写入。
	Save(ctx context.Context, r *domain.Report) error
	Get(ctx context.Context, id string) (*domain.Report, error)
	ListByRecipient(ctx context.Context, player domain.PlayerID, limit int) ([]domain.Report, error)
	MarkRead(ctx context.Context, id string, player domain.PlayerID) error
}

package domain

import "Hegemony/modules/kit/errx"

// Code 领域错误码。
//
// 约定：
//   - 指令校验类错误都是业务错误，原样同步返回给调用方，状态不变
//   - INTEGRITY_VIOLATION 只由调度器在已认领条目处理失败时产生
type Code = errx.Code

const (
	CodeInsufficientResources Code = "INSUFFICIENT_RESOURCES"
	CodeInsufficientTroops    Code = "INSUFFICIENT_TROOPS"
	CodeInvalidMission        Code = "INVALID_MISSION"
	CodeTargetUnavailable     Code = "TARGET_UNAVAILABLE"
	CodeAlreadyClaimed        Code = "ALREADY_CLAIMED"
	CodeArrivalDeferred       Code = "ARRIVAL_DEFERRED"
	CodeIntegrityViolation    Code = errx.CodeIntegrity

	CodeSettlementNotFound Code = "SETTLEMENT_NOT_FOUND"
	CodeArmyNotFound       Code = "ARMY_NOT_FOUND"
	CodeQueueItemNotFound  Code = "QUEUE_ITEM_NOT_FOUND"
	CodeReportNotFound     Code = "REPORT_NOT_FOUND"
	CodeNotOwner           Code = "NOT_OWNER"
	CodeInvalidCommand     Code = "INVALID_COMMAND"
	CodeCoordinateTaken    Code = "COORDINATE_TAKEN"
	CodeIllegalTransition  Code = "ILLEGAL_TRANSITION"
	CodeSystemUnavailable  Code = errx.CodeUnavailable
)

type Error = errx.Error

var (
	ErrInsufficientResources = errx.NewBiz(CodeInsufficientResources, "资源不足")
	ErrInsufficientTroops    = errx.NewBiz(CodeInsufficientTroops, "兵力不足")
	ErrInvalidMission        = errx.NewBiz(CodeInvalidMission, "任务与兵种不匹配")
	ErrTargetUnavailable     = errx.NewBiz(CodeTargetUnavailable, "目标不可用")
	ErrAlreadyClaimed        = errx.NewBiz(CodeAlreadyClaimed, "已在处理中")
	ErrArrivalDeferred       = errx.NewBiz(CodeArrivalDeferred, "同一落点有更早的到达未结算")
	ErrIntegrityViolation    = errx.ErrIntegrity

	ErrSettlementNotFound = errx.NewBiz(CodeSettlementNotFound, "村庄不存在")
	ErrArmyNotFound       = errx.NewBiz(CodeArmyNotFound, "军队不存在")
	ErrQueueItemNotFound  = errx.NewBiz(CodeQueueItemNotFound, "队列条目不存在")
	ErrReportNotFound     = errx.NewBiz(CodeReportNotFound, "报告不存在")
	ErrNotOwner           = errx.NewBiz(CodeNotOwner, "无权操作")
	ErrInvalidCommand     = errx.NewBiz(CodeInvalidCommand, "指令参数错误")
	ErrCoordinateTaken    = errx.NewBiz(CodeCoordinateTaken, "坐标已被占用")
	// ErrIllegalTransition 状态机收到当前状态不允许的迁移，说明数据已经不一致。
	ErrIllegalTransition = errx.NewIntegrity(CodeIllegalTransition, "非法的状态迁移")
	ErrSystemUnavailable = errx.ErrUnavailable
)

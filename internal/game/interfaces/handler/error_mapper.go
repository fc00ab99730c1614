package handler

import (
	"context"

	"Hegemony/internal/game/domain"
	"Hegemony/internal/shared/transport"
	"Hegemony/modules/kit/errx"
	"Hegemony/modules/kit/logx"
)

func mapBizCodeToClientCode(code errx.Code) int {
	switch code {
	case domain.CodeInsufficientResources:
		return transport.InsufficientResources
	case domain.CodeInsufficientTroops:
		return transport.InsufficientTroops
	case domain.CodeInvalidMission:
		return transport.InvalidMission
	case domain.CodeTargetUnavailable, domain.CodeCoordinateTaken:
		return transport.TargetUnavailable
	case domain.CodeAlreadyClaimed:
		return transport.AlreadyClaimed
	case domain.CodeSettlementNotFound, domain.CodeArmyNotFound, domain.CodeQueueItemNotFound, domain.CodeReportNotFound:
		return transport.NotFound
	case domain.CodeNotOwner:
		return transport.Forbidden
	case domain.CodeInvalidCommand, errx.CodeInvalidParam:
		return transport.InvalidParam
	default:
		return transport.SystemError
	}
}

// HandleError 把用例错误翻译成业务码和提示语。业务拒绝带原始提示，其余一律“系统繁忙”。
func HandleError(ctx context.Context, log logx.Logger, err error) (int, string) {
	e, ok := errx.From(err)
	if !ok {
		logx.ReportSysErrorWithLoggerContext(ctx, log, logx.NewSysLog("game.handler", err))
		return transport.SystemError, "系统繁忙，请稍后重试"
	}
	reason := e.Reason()
	if reason == "" {
		reason = e.CodeText()
	}
	transport.SetErrorReason(ctx, reason)

	switch e.Kind() {
	case errx.KindBiz:
		logx.ReportBizWithLoggerContext(ctx, log, logx.NewBizLog("game.handler", reason, e.Msg()))
		return mapBizCodeToClientCode(e.Code()), e.Msg()
	case errx.KindIntegrity:
		logx.ReportIntegrityWithLoggerContext(ctx, log, logx.NewSysLog("game.handler", err))
		return transport.IntegrityViolation, "系统繁忙，请稍后重试"
	default:
		logx.ReportSysErrorWithLoggerContext(ctx, log, logx.NewSysLog("game.handler", err))
		return transport.SystemError, "系统繁忙，请稍后重试"
	}
}

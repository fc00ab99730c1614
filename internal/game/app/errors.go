package app

import (
	"errors"

	"Hegemony/internal/game/domain"
	"Hegemony/modules/kit/errx"
)

// Error 复用通用错误模型，业务码见 domain/errors.go。
type Error = errx.Error

// wrapInfra 存储层错误统一转成系统错误；已经是 errx 错误（业务拒绝、完整性）的原样返回。
func wrapInfra(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errx.From(err); ok {
		return err
	}
	return domain.ErrSystemUnavailable.WithData("op", op).WithCause(err)
}

// integrity 已认领条目处理中遇到的不一致。
func integrity(op string, reason Reason, cause error) error {
	e := domain.ErrIntegrityViolation.WithData("op", op).WithReason(reason)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return e
}

func isCode(err error, target *errx.Error) bool {
	return err != nil && errors.Is(err, target)
}

package mysql

import (
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"Hegemony/internal/game/domain"
	"Hegemony/modules/kit/errx"
)

// wrap 技术错误统一包成 SERVICE_UNAVAILABLE，领域错误原样返回。
func wrap(op string, err error, data map[string]any) error {
	if err == nil {
		return nil
	}
	if _, ok := errx.From(err); ok {
		return err
	}
	e := domain.ErrSystemUnavailable.WithData("op", op).WithCause(err)
	if len(data) > 0 {
		e = e.WithDataMap(data)
	}
	return e
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// erLockDeadlock InnoDB 检测到死锁，整个事务已被回滚。
const erLockDeadlock = 1213

func deadlock(err error) bool {
	var me *mysqldriver.MySQLError
	return errors.As(err, &me) && me.Number == erLockDeadlock
}

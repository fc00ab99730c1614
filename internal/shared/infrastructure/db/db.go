package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Hegemony/internal/shared/logs"
	"Hegemony/internal/shared/serverconfig"
)

// Open 建连接池并 ping 一次。认领与结算依赖 InnoDB 行锁和条件更新，不支持非事务引擎。
func Open(ctx context.Context, cfg serverconfig.MySQLConfig) (*gorm.DB, error) {
	slow := time.Duration(cfg.SlowMS) * time.Millisecond
	if slow <= 0 {
		slow = 200 * time.Millisecond
	}
	gdb, err := gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{
		Logger:                 logs.NewGormLogger(logger.Warn, slow),
		SkipDefaultTransaction: true,
		// 开拓抢坐标靠唯一键冲突，需要翻译成 gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	maxConn := cfg.MaxConn
	if maxConn <= 0 {
		maxConn = 20
	}
	idle := cfg.MaxIdle
	if idle <= 0 {
		idle = maxConn / 2
	}
	sqlDB.SetMaxOpenConns(maxConn)
	sqlDB.SetMaxIdleConns(min(idle, maxConn))
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping mysql %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logs.Info("open mysql success",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.String("db", cfg.DBName),
		zap.Int("max_conn", maxConn),
	)
	return gdb, nil
}

// DSN 时间一律按 UTC 读写，tick 截止时间跨时区比较不会漂。
func DSN(cfg serverconfig.MySQLConfig) string {
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	q := url.Values{}
	q.Set("charset", charset)
	q.Set("parseTime", "true")
	q.Set("loc", "UTC")
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, q.Encode())
}

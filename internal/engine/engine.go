// Package engine 按配置装配存储、用例、通知中心和调度器，cmd/engine 与 cmd/tickctl 共用。
package engine

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Hegemony/internal/game/app"
	"Hegemony/internal/game/app/port"
	"Hegemony/internal/game/infra/bonus"
	"Hegemony/internal/game/infra/catalog"
	"Hegemony/internal/game/infra/persistence/memory"
	"Hegemony/internal/game/infra/persistence/mongodb"
	"Hegemony/internal/game/infra/persistence/mysql"
	"Hegemony/internal/game/infra/rules"
	"Hegemony/internal/game/infra/terrain"
	"Hegemony/internal/notify"
	terrainconf "Hegemony/internal/shared/gameconfig/terrain"
	"Hegemony/internal/shared/infrastructure/db"
	"Hegemony/internal/shared/infrastructure/mongo"
	"Hegemony/internal/shared/serverconfig"
	"Hegemony/internal/shared/utils"
	"Hegemony/internal/tick"
	"Hegemony/modules/kit/logx"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

// Options Registerer 为空时不注册指标；Zap 只给 mongo 驱动打连接日志。
type Options struct {
	Conf       serverconfig.Config
	Log        logx.Logger
	Zap        *zap.Logger
	Registerer prometheus.Registerer
}

type Engine struct {
	Store     port.Store
	Deps      app.Deps
	Reports   *app.Reports
	Hub       *notify.Hub
	Scheduler *tick.Scheduler

	closers []func(context.Context) error
}

func Build(ctx context.Context, opts Options) (*Engine, error) {
	conf := opts.Conf
	log := opts.Log
	if log == nil {
		log = logx.Nop()
	}

	cat, err := catalog.Load(conf.Logic.UnitData, conf.Logic.BuildingData)
	if err != nil {
		return nil, err
	}
	if err := terrainconf.Load(conf.Logic.TerrainData); err != nil {
		return nil, err
	}
	ids, err := utils.NewSnowflake(conf.NodeID)
	if err != nil {
		return nil, err
	}

	e := &Engine{}
	if e.Store, err = e.openStore(ctx, conf); err != nil {
		e.Close(ctx)
		return nil, err
	}
	repo, err := e.openReports(ctx, conf, opts.Zap)
	if err != nil {
		e.Close(ctx)
		return nil, err
	}

	e.Hub = notify.NewHub(log, opts.Registerer)
	e.closers = append(e.closers, func(context.Context) error {
		e.Hub.Shutdown()
		return nil
	})
	e.Deps = app.Deps{
		Store:    e.Store,
		Catalog:  cat,
		Terrain:  terrain.New(terrainconf.TerrainConf),
		Bonus:    bonus.NewConfigProvider(serverconfig.CurrentRules),
		Rules:    rules.NewSource(serverconfig.CurrentRules),
		IDs:      ids,
		Clock:    port.SystemClock{},
		Notifier: e.Hub,
		Log:      log,
	}
	e.Reports = app.NewReports(repo, log)

	e.Scheduler, err = tick.New(tick.ConfigFrom(conf.Scheduler), tick.Deps{
		Store:        e.Store,
		Arrival:      app.NewArrival(e.Deps),
		Construction: app.NewConstruction(e.Deps),
		Accrual:      app.NewAccrual(e.Deps),
		Reports:      e.Reports,
		IDs:          ids,
		Clock:        e.Deps.Clock,
		Log:          log,
		Registerer:   opts.Registerer,
	})
	if err != nil {
		e.Close(ctx)
		return nil, err
	}
	return e, nil
}

func (e *Engine) openStore(ctx context.Context, conf serverconfig.Config) (port.Store, error) {
	switch conf.Storage {
	case StorageMemory:
		return memory.NewStore(), nil
	case "", StorageMySQL:
		gdb, err := db.Open(ctx, conf.MySQL)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, func(context.Context) error { return sqlDB.Close() })
		store := mysql.NewStore(gdb)
		if conf.MySQL.Migrate {
			if err := store.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("migrate mysql: %w", err)
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", conf.Storage)
	}
}

// openReports 没配 mongodb 时战报放内存，只适合本地调试。
func (e *Engine) openReports(ctx context.Context, conf serverconfig.Config, l *zap.Logger) (port.ReportRepository, error) {
	if conf.MongoDB.URI == "" {
		return memory.NewReportRepo(), nil
	}
	conn, err := mongo.Open(ctx, conf.MongoDB, l)
	if err != nil {
		return nil, fmt.Errorf("open mongodb: %w", err)
	}
	e.closers = append(e.closers, conn.Close)
	repo := mongodb.NewReportRepo(conn.Database())
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure report indexes: %w", err)
	}
	return repo, nil
}

// Close 逆序释放，错误只影响退出日志。
func (e *Engine) Close(ctx context.Context) error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}

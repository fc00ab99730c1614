package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"Hegemony/internal/shared/serverconfig"
)

const (
	appName         = "hegemony-engine"
	defaultDatabase = "hegemony"
)

// Conn 战报库连接。client 和 database 一起持有，关闭时一并断开。
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open 连接并 ping primary，失败时不留下半开的连接。
func Open(ctx context.Context, cfg serverconfig.MongoDBConfig, l *zap.Logger) (*Conn, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is empty")
	}
	if l == nil {
		l = zap.NewNop()
	}
	timeout := time.Duration(cfg.ConnectTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if cfg.MaxPool > 0 {
		opts.SetMaxPoolSize(cfg.MaxPool)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	name := cfg.Database
	if name == "" {
		name = defaultDatabase
	}
	l.Info("open mongodb success", zap.String("database", name), zap.Uint64("max_pool", cfg.MaxPool))
	return &Conn{client: client, db: client.Database(name)}, nil
}

func (c *Conn) Database() *mongo.Database {
	return c.db
}

// Close 引擎退出时调用，ctx 约束断开等待的时长。
func (c *Conn) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

package main

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/infra/cartstore"
	"storefront/internal/infra/db"
	"storefront/internal/infra/storage"
	"storefront/internal/logger"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 各コマンド共通の初期化結果
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	gormDB *gorm.DB
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})

	gormDB, err := db.Connect(cfg.Database, cfg.Log.Level, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &app{cfg: cfg, log: log, gormDB: gormDB}, nil
}

func (a *app) Close() {
	_ = a.log.Sync()
	if sqlDB, err := a.gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// redis無効ならプロセス内メモリ
func (a *app) cartStore() (repo.CartStore, func(), error) {
	//カートの寿命は訪問者セッションcookieと揃える
	ttl := time.Duration(a.cfg.Session.MaxAge) * time.Second
	if !a.cfg.Redis.Enabled {
		a.log.Warn("redis disabled, carts are kept in memory", zap.Duration("ttl", ttl))
		return cartstore.NewMemoryStore(cartstore.WithTTL(ttl)), func() {}, nil
	}
	s, err := cartstore.NewRedisStore(a.cfg.Redis, ttl)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return s, func() { _ = s.Close() }, nil
}

type imageStore struct {
	usecase.ImageStore
	// ローカル保存時だけ使う
	uploadDir  string
	publicPath string
}

func (a *app) imageStore(ctx context.Context) (imageStore, error) {
	if a.cfg.Storage.Driver == "s3" {
		s, err := storage.NewS3ImageStore(ctx, a.cfg.Storage.S3, storage.WithLogger(a.log))
		if err != nil {
			return imageStore{}, fmt.Errorf("init s3 storage: %w", err)
		}
		return imageStore{ImageStore: s}, nil
	}
	s, err := storage.NewLocalImageStore(a.cfg.Storage.UploadDir, a.cfg.Storage.PublicPath)
	if err != nil {
		return imageStore{}, fmt.Errorf("init local storage: %w", err)
	}
	return imageStore{ImageStore: s, uploadDir: s.Dir(), publicPath: s.PublicPath()}, nil
}

package storage

import (
	"context"

	"go.uber.org/zap"

	"poly_chat_client/internal/config"
	"poly_chat_client/pkg/errorx"
)

// Open 根据配置选择存储驱动
func Open(ctx context.Context, conf *config.Config) (KVStore, error) {
	switch conf.StorageConfig.Driver {
	case "redis":
		store, err := DialRedis(ctx, conf.RedisAddr(), conf.RedisConfig.Password, conf.RedisConfig.Db, conf.AppName+":")
		if err != nil {
			return nil, err
		}
		zap.L().Info("storage ready", zap.String("driver", "redis"), zap.String("addr", conf.RedisAddr()))
		return store, nil
	case "sqlite":
		store, err := OpenSQLite(conf.SqlitePath)
		if err != nil {
			return nil, err
		}
		zap.L().Info("storage ready", zap.String("driver", "sqlite"), zap.String("path", conf.SqlitePath))
		return store, nil
	default:
		return nil, errorx.Newf(errorx.CodeInvalidParam, "unknown storage driver %q", conf.StorageConfig.Driver)
	}
}

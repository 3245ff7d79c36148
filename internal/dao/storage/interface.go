// Package storage 定义本地持久化键值存储接口
// 用于缓存当前身份和最近一次的个人资料，在任何网络请求之前恢复界面
package storage

import (
	"context"
)

// KVStore 持久化键值存储
// 遵循依赖倒置原则，上层只依赖此接口，支持 SQLite、Redis 等实现
type KVStore interface {
	// Set 写入键值对（覆盖）
	Set(ctx context.Context, key string, value string) error
	// Get 读取键对应的值（键不存在返回空字符串和 nil）
	Get(ctx context.Context, key string) (string, error)
	// GetOrError 读取键对应的值（键不存在返回 CodeNotFound）
	GetOrError(ctx context.Context, key string) (string, error)
	// Delete 删除键（不存在视为成功）
	Delete(ctx context.Context, keys ...string) error
	// Close 释放底层连接
	Close() error
}

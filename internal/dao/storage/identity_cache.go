package storage

import (
	"context"
	"encoding/json"

	"poly_chat_client/internal/model"
	"poly_chat_client/pkg/constants"
	"poly_chat_client/pkg/errorx"
)

// IdentityCache 缓存当前身份和最近一次的个人资料
// 固定键名: currentWallet / userProfile
type IdentityCache struct {
	store KVStore
}

// NewIdentityCache 基于任意 KVStore 创建身份缓存
func NewIdentityCache(store KVStore) *IdentityCache {
	return &IdentityCache{store: store}
}

// Load 读取缓存的身份和资料，未缓存时 wallet 为空
func (c *IdentityCache) Load(ctx context.Context) (wallet string, profile *model.UserInfo, err error) {
	wallet, err = c.store.Get(ctx, constants.STORAGE_KEY_WALLET)
	if err != nil || wallet == "" {
		return "", nil, err
	}
	raw, err := c.store.Get(ctx, constants.STORAGE_KEY_PROFILE)
	if err != nil {
		return wallet, nil, err
	}
	if raw == "" {
		return wallet, nil, nil
	}
	var p model.UserInfo
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		// 资料损坏时只恢复身份
		return wallet, nil, errorx.Wrap(err, errorx.CodeCacheError, "decode cached profile")
	}
	if p.WalletAddress != wallet {
		return wallet, nil, nil
	}
	return wallet, &p, nil
}

// SaveWallet 持久化当前身份
func (c *IdentityCache) SaveWallet(ctx context.Context, wallet string) error {
	return c.store.Set(ctx, constants.STORAGE_KEY_WALLET, wallet)
}

// SaveProfile 持久化个人资料
func (c *IdentityCache) SaveProfile(ctx context.Context, profile model.UserInfo) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeCacheError, "encode profile")
	}
	return c.store.Set(ctx, constants.STORAGE_KEY_PROFILE, string(raw))
}

// Clear 登出时清除身份和资料
func (c *IdentityCache) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, constants.STORAGE_KEY_WALLET, constants.STORAGE_KEY_PROFILE)
}

package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"poly_chat_client/internal/dao/storage"
	"poly_chat_client/internal/model"
	"poly_chat_client/pkg/errorx"
)

func newRedisStore(t *testing.T) (*storage.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := storage.NewRedisStore(client, "test:")
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func newSQLiteStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	s, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "nested", "kv.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func stores(t *testing.T) map[string]storage.KVStore {
	rs, _ := newRedisStore(t)
	return map[string]storage.KVStore{
		"redis":  rs,
		"sqlite": newSQLiteStore(t),
	}
}

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			v, err := s.Get(ctx, "missing")
			if err != nil || v != "" {
				t.Fatalf("Get missing = %q, %v", v, err)
			}
			if _, err := s.GetOrError(ctx, "missing"); !errorx.IsNotFound(err) {
				t.Fatalf("GetOrError missing err = %v, want not found", err)
			}

			if err := s.Set(ctx, "k", "v1"); err != nil {
				t.Fatal(err)
			}
			if err := s.Set(ctx, "k", "v2"); err != nil {
				t.Fatal(err)
			}
			v, err = s.GetOrError(ctx, "k")
			if err != nil || v != "v2" {
				t.Fatalf("GetOrError = %q, %v", v, err)
			}

			if err := s.Delete(ctx, "k", "never-set"); err != nil {
				t.Fatal(err)
			}
			v, _ = s.Get(ctx, "k")
			if v != "" {
				t.Fatalf("after delete got %q", v)
			}
		})
	}
}

func TestRedisStorePrefix(t *testing.T) {
	s, mr := newRedisStore(t)
	if err := s.Set(context.Background(), "currentWallet", "0xabc"); err != nil {
		t.Fatal(err)
	}
	got, err := mr.Get("test:currentWallet")
	if err != nil || got != "0xabc" {
		t.Fatalf("raw key = %q, %v", got, err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()
	err := s.Set(context.Background(), "k", "v")
	if errorx.GetCode(err) != errorx.CodeCacheError {
		t.Fatalf("code = %d, want CodeCacheError", errorx.GetCode(err))
	}
}

func TestIdentityCache(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			c := storage.NewIdentityCache(s)

			wallet, profile, err := c.Load(ctx)
			if err != nil || wallet != "" || profile != nil {
				t.Fatalf("empty Load = %q, %v, %v", wallet, profile, err)
			}

			if err := c.SaveWallet(ctx, "0xAbC123"); err != nil {
				t.Fatal(err)
			}
			wallet, profile, _ = c.Load(ctx)
			if wallet != "0xAbC123" || profile != nil {
				t.Fatalf("wallet only Load = %q, %v", wallet, profile)
			}

			if err := c.SaveProfile(ctx, model.UserInfo{WalletAddress: "0xAbC123", DisplayName: "alice"}); err != nil {
				t.Fatal(err)
			}
			wallet, profile, _ = c.Load(ctx)
			if profile == nil || profile.DisplayName != "alice" {
				t.Fatalf("profile = %+v", profile)
			}

			// 资料属于其他身份时忽略
			_ = c.SaveWallet(ctx, "0xother")
			_, profile, _ = c.Load(ctx)
			if profile != nil {
				t.Fatalf("stale profile restored: %+v", profile)
			}

			if err := c.Clear(ctx); err != nil {
				t.Fatal(err)
			}
			wallet, _, _ = c.Load(ctx)
			if wallet != "" {
				t.Fatalf("after Clear wallet = %q", wallet)
			}
		})
	}
}

func TestIdentityCacheCorruptProfile(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	_ = s.Set(ctx, "currentWallet", "0xabc")
	_ = s.Set(ctx, "userProfile", "{not json")
	wallet, profile, err := storage.NewIdentityCache(s).Load(ctx)
	if wallet != "0xabc" || profile != nil {
		t.Fatalf("Load = %q, %v", wallet, profile)
	}
	if errorx.GetCode(err) != errorx.CodeCacheError {
		t.Fatalf("err = %v", err)
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"poly_chat_client/pkg/errorx"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
)`

// SQLiteStore 基于单文件 SQLite 的 KVStore
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite 打开（必要时创建）数据文件并建表
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errorx.New(errorx.CodeCacheError, "sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errorx.Wrapf(err, errorx.CodeCacheError, "create storage dir %s", dir)
		}
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "open sqlite %s", path)
	}
	// 单连接，避免 SQLite 写锁竞争
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "ping sqlite %s", path)
	}
	if _, err := db.Exec(kvSchema); err != nil {
		_ = db.Close()
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "migrate sqlite %s", path)
	}
	return &SQLiteStore{db: db}, nil
}

// Set 写入或覆盖
func (s *SQLiteStore) Set(ctx context.Context, key string, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, strftime('%s','now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "sqlite set key %s", key)
	}
	return nil
}

// Get 键不存在返回空字符串和 nil
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.GetOrError(ctx, key)
	if errorx.IsNotFound(err) {
		return "", nil
	}
	return value, err
}

// GetOrError 键不存在视为 CodeNotFound
func (s *SQLiteStore) GetOrError(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", errorx.Wrapf(err, errorx.CodeNotFound, "sqlite key %s not found", key)
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "sqlite get key %s", key)
	}
	return value, nil
}

// Delete 批量删除
func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM kv WHERE key IN (?)`, keys)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeCacheError, "sqlite build delete")
	}
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "sqlite delete keys %v", keys)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

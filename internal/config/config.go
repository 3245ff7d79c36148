// Package config 提供客户端的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"poly_chat_client/pkg/constants"
)

// MainConfig 主配置，包含应用基本信息和服务端地址
type MainConfig struct {
	AppName   string `toml:"appName"`                              // 应用名称，用于日志标识等
	ServerURL string `toml:"serverURL" env:"POLY_CHAT_SERVER_URL"` // 服务端根地址，如 "http://127.0.0.1:5000"
	WsPath    string `toml:"wsPath"`                               // 长连接路径，如 "/ws"
	Mode      string `toml:"mode" env:"POLY_CHAT_MODE"`            // 运行模式："dev" 或 "release"
}

// RedisConfig Redis 连接配置（storageConfig.driver = "redis" 时使用）
type RedisConfig struct {
	Host     string `toml:"host" env:"POLY_CHAT_REDIS_HOST"`
	Port     int    `toml:"port" env:"POLY_CHAT_REDIS_PORT"`
	Password string `toml:"password"`
	Db       int    `toml:"db"`
}

// StorageConfig 本地持久化存储配置
type StorageConfig struct {
	Driver     string `toml:"driver" env:"POLY_CHAT_STORAGE_DRIVER"` // "sqlite" 或 "redis"
	SqlitePath string `toml:"sqlitePath"`                            // SQLite 数据文件路径
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// TransportConfig 长连接与 REST 请求配置
type TransportConfig struct {
	ReconnectIntervalMs int `toml:"reconnectIntervalMs"` // 断线重连间隔，无上限地重试
	HandshakeTimeoutMs  int `toml:"handshakeTimeoutMs"`  // WebSocket 握手超时
	RequestTimeoutMs    int `toml:"requestTimeoutMs"`    // 单次 REST 请求超时
}

// SyncConfig 同步相关配置
type SyncConfig struct {
	PresencePollSeconds int `toml:"presencePollSeconds"` // 在线用户轮询间隔
	TypingClearMs       int `toml:"typingClearMs"`       // 本地输入状态自动清除时间
	HistoryLimit        int `toml:"historyLimit"`        // 切换会话时拉取的历史条数
}

// WorkerConfig REST 调用 Worker Pool 配置
type WorkerConfig struct {
	Workers int `toml:"workers"`
	Buffer  int `toml:"buffer"`
}

// ValidatorConfig 参数校验配置
type ValidatorConfig struct {
	Locale string `toml:"locale"` // "en" 或 "zh"
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	LogConfig       `toml:"logConfig"`
	StorageConfig   `toml:"storageConfig"`
	RedisConfig     `toml:"redisConfig"`
	TransportConfig `toml:"transportConfig"`
	SyncConfig      `toml:"syncConfig"`
	WorkerConfig    `toml:"workerConfig"`
	ValidatorConfig `toml:"validatorConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",
		"configs/config.toml",
		"../../configs/config_local.toml",
		"../../configs/config.toml",
	}

	// .env 不存在时忽略
	_ = godotenv.Load()

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			if err := config.applyEnv(); err != nil {
				return err
			}
			config.applyDefaults()
			return nil
		}
	}

	if err := config.applyEnv(); err != nil {
		return err
	}
	config.applyDefaults()
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// LoadFrom 从指定路径加载配置并替换全局实例
func LoadFrom(path string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := conf.applyEnv(); err != nil {
		return nil, err
	}
	conf.applyDefaults()
	config = conf
	return conf, nil
}

// Decode 从 TOML 文本解析配置，不影响全局实例
func Decode(data string) (*Config, error) {
	conf := new(Config)
	if _, err := toml.Decode(data, conf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	conf.applyDefaults()
	return conf, nil
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到文件时使用默认值
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}

// 环境变量覆盖项，优先级高于配置文件，对应字段上的 env 标签
const (
	EnvServerURL     = "POLY_CHAT_SERVER_URL"
	EnvMode          = "POLY_CHAT_MODE"
	EnvStorageDriver = "POLY_CHAT_STORAGE_DRIVER"
	EnvRedisHost     = "POLY_CHAT_REDIS_HOST"
	EnvRedisPort     = "POLY_CHAT_REDIS_PORT"
)

// applyEnv 使用环境变量覆盖配置文件中的值，未设置的变量保持原值
func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// applyDefaults 为零值字段填充默认值
func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "poly_chat_client"
	}
	if c.ServerURL == "" {
		c.ServerURL = "http://127.0.0.1:5000"
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	if c.WsPath == "" {
		c.WsPath = "/ws"
	}
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.LogPath == "" {
		c.LogPath = "logs"
	}
	if c.StorageConfig.Driver == "" {
		c.StorageConfig.Driver = "sqlite"
	}
	if c.SqlitePath == "" {
		c.SqlitePath = "data/poly_chat_client.db"
	}
	if c.RedisConfig.Host == "" {
		c.RedisConfig.Host = "127.0.0.1"
	}
	if c.RedisConfig.Port == 0 {
		c.RedisConfig.Port = 6379
	}
	if c.ReconnectIntervalMs <= 0 {
		c.ReconnectIntervalMs = int(constants.RECONNECT_INTERVAL / time.Millisecond)
	}
	if c.HandshakeTimeoutMs <= 0 {
		c.HandshakeTimeoutMs = 10000
	}
	if c.RequestTimeoutMs <= 0 {
		c.RequestTimeoutMs = int(constants.REQUEST_TIMEOUT / time.Millisecond)
	}
	if c.PresencePollSeconds <= 0 {
		c.PresencePollSeconds = int(constants.PRESENCE_POLL_INTERVAL / time.Second)
	}
	if c.TypingClearMs <= 0 {
		c.TypingClearMs = int(constants.TYPING_CLEAR_DELAY / time.Millisecond)
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = constants.HISTORY_LIMIT
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Buffer <= 0 {
		c.Buffer = constants.CHANNEL_SIZE
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
}

// WebSocketURL 根据 ServerURL 和 WsPath 拼出 ws:// 或 wss:// 地址
func (c *Config) WebSocketURL() string {
	base := c.ServerURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + c.WsPath
}

// ReconnectInterval 重连间隔
func (c *Config) ReconnectInterval() time.Duration {
	return time.Duration(c.ReconnectIntervalMs) * time.Millisecond
}

// HandshakeTimeout 握手超时
func (c *Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutMs) * time.Millisecond
}

// RequestTimeout REST 请求超时
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// PresencePollInterval 在线用户轮询间隔
func (c *Config) PresencePollInterval() time.Duration {
	return time.Duration(c.PresencePollSeconds) * time.Second
}

// TypingClearDelay 本地输入状态自动清除时间
func (c *Config) TypingClearDelay() time.Duration {
	return time.Duration(c.TypingClearMs) * time.Millisecond
}

// RedisAddr host:port
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisConfig.Host, c.RedisConfig.Port)
}

package constants

import "time"

const (
	CHANNEL_SIZE            = 100              // 事件循环通道大小
	FILE_MAX_SIZE           = 16 * 1024 * 1024 // 上传文件最大大小（字节）
	SEARCH_MIN_LENGTH       = 3                // 用户搜索最少字符数
	HISTORY_LIMIT           = 50               // 历史消息条数
	DEFAULT_ROOM            = "General"        // 默认公共房间
	DELETED_PLACEHOLDER     = "This message was deleted"
	PRIVATE_ROOM_DESC       = "Private conversation"
	TYPING_CLEAR_DELAY      = 2 * time.Second  // 本地输入状态自动清除
	PRESENCE_POLL_INTERVAL  = 10 * time.Second // 在线用户轮询间隔
	RECONNECT_INTERVAL      = 3 * time.Second  // 断线重连间隔
	REQUEST_TIMEOUT         = 10 * time.Second // 单次 REST 请求超时
	NOTIFICATION_TTL        = 3 * time.Second  // 通知展示时长
	STORAGE_KEY_WALLET      = "currentWallet"  // 持久化：当前钱包地址
	STORAGE_KEY_PROFILE     = "userProfile"    // 持久化：当前用户资料
	SHORT_ADDRESS_PREFIX    = 6                // 默认昵称 "User 0x1234"
	TRANSPORT_WRITE_TIMEOUT = 5 * time.Second
)

package constants

import "time"

const (
	CHANNEL_SIZE  = 100   // 通道大小
	FILE_MAX_SIZE = 50000 // 上传文件最大大小 (KB)

	// TYPING_EXPIRY 输入状态广播的本地超时
	// 超过该时长未收到新的 typing 信号，消费方应自行清除对方的输入状态
	TYPING_EXPIRY = 2 * time.Second

	// ONLINE_KEY_TTL 在线状态 Redis Key 的过期时间
	// 连接存活期间由网关周期性续期
	ONLINE_KEY_TTL = 5 * time.Minute

	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天

	REDIS_TIMEOUT = 30 // 列表类缓存过期时间（分钟）
)

// 消息保留窗口，对应会话的 auto_delete_preference
const (
	RETENTION_WINDOW_24H = 24 * time.Hour
	RETENTION_WINDOW_7D  = 7 * 24 * time.Hour
)

// 一次性媒体消息被消费后的占位文案
const (
	PHOTO_EXPIRED_TEXT = "Photo expired"
	VOICE_EXPIRED_TEXT = "Voice message expired"
)

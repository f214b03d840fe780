// Package retention 实现消失内容策略：
// 一次性媒体的消费改写与按会话偏好的过期消息清理
// 本文件为纯策略函数，便于单测
package retention

import (
	"time"

	"vanish_chat_server/internal/model"
	"vanish_chat_server/pkg/constants"
)

// Window 返回偏好对应的保留窗口
// ok=false 表示该偏好没有时间窗口（off / on-close）
func Window(pref int8) (time.Duration, bool) {
	switch pref {
	case model.AutoDelete24h:
		return constants.RETENTION_WINDOW_24H, true
	case model.AutoDelete7d:
		return constants.RETENTION_WINDOW_7D, true
	}
	return 0, false
}

// CutoffFor 计算窗口清理的截止时间，早于该时间的消息应被清除
func CutoffFor(pref int8, now time.Time) (time.Time, bool) {
	window, ok := Window(pref)
	if !ok {
		return time.Time{}, false
	}
	return now.Add(-window), true
}

// IsSweepable 判断偏好是否需要后台定时清理
func IsSweepable(pref int8) bool {
	_, ok := Window(pref)
	return ok
}

// PlaceholderFor 返回一次性媒体被消费后的占位文案
// 非媒体类型返回空串
func PlaceholderFor(messageType int8) string {
	switch messageType {
	case model.MessageTypeImage:
		return constants.PHOTO_EXPIRED_TEXT
	case model.MessageTypeAudio:
		return constants.VOICE_EXPIRED_TEXT
	}
	return ""
}

// RetentionLabel 偏好的展示文案，用于偏好变更后的系统消息
func RetentionLabel(pref int8) string {
	switch pref {
	case model.AutoDeleteOff:
		return "off"
	case model.AutoDeleteOnClose:
		return "on chat close"
	case model.AutoDelete24h:
		return "24 hours"
	case model.AutoDelete7d:
		return "7 days"
	}
	return "unknown"
}

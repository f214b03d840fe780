// Package model 定义数据库实体模型
// 本文件定义消息模型
package model

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// 消息类型
const (
	MessageTypeText   int8 = 0 // 文本
	MessageTypeImage  int8 = 1 // 图片（一次性查看）
	MessageTypeAudio  int8 = 2 // 语音（一次性播放）
	MessageTypeSystem int8 = 3 // 系统提示/已失效媒体占位
)

// Message 消息模型
// 对应数据库 message 表
// 媒体消息（image/audio）带一次性查看契约：接收方首次消费后该行被原地改写为
// system 占位（内容清空、对象删除），行本身不会因此被物理删除
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 使用雪花算法生成的 int64 类型 ID
	Uuid int64 `gorm:"column:uuid;uniqueIndex;type:bigint;not null;comment:消息雪花ID"`

	// ChatUuid 所属会话
	ChatUuid string `gorm:"column:chat_uuid;index;type:char(20);not null;comment:会话uuid"`

	// SendId 发送者用户 uuid
	SendId string `gorm:"column:send_id;index;type:char(20);not null;comment:发送者uuid"`

	// Type 消息类型，见 MessageType* 常量
	Type int8 `gorm:"column:type;not null;comment:消息类型，0.文本，1.图片，2.语音，3.系统"`

	// Content 文本内容；媒体失效后为占位文案
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// Url 媒体对象在对象存储中的 key
	// 媒体被消费或删除后清空
	Url string `gorm:"column:url;type:varchar(255);comment:媒体对象key"`

	// ReplyToId 被回复消息的雪花 ID（弱引用）
	// 目标消息被删除时此字段置 NULL，不允许悬挂
	ReplyToId sql.NullInt64 `gorm:"column:reply_to_id;index;comment:被回复消息ID"`

	// IsRead 接收方是否已读
	IsRead bool `gorm:"column:is_read;not null;default:false;comment:是否已读"`

	// SendAt 发送时间，可见性过滤与保留窗口均以此为准
	SendAt time.Time `gorm:"column:send_at;index;not null;comment:发送时间"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}

// IsOneTimeMedia 是否为一次性媒体消息（尚未被消费）
func (m *Message) IsOneTimeMedia() bool {
	return m.Type == MessageTypeImage || m.Type == MessageTypeAudio
}

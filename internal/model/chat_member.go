package model

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

// ChatMember 会话成员关联表
// JoinedAt 决定成员可见的历史消息下界；LastReadAt 为已读游标，只允许单调前移
type ChatMember struct {
	gorm.Model
	ChatUuid   string       `gorm:"column:chat_uuid;uniqueIndex:idx_chat_user;type:char(20);not null;comment:会话uuid"`
	UserUuid   string       `gorm:"column:user_uuid;uniqueIndex:idx_chat_user;index;type:char(20);not null;comment:用户uuid"`
	JoinedAt   time.Time    `gorm:"column:joined_at;type:datetime;not null;comment:加入时间"`
	LastReadAt sql.NullTime `gorm:"column:last_read_at;type:datetime;comment:已读游标"`
}

func (ChatMember) TableName() string {
	return "chat_member"
}

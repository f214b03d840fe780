package model

import "gorm.io/gorm"

// MessageReaction 消息表情回应
// (message_uuid, user_uuid) 唯一：同一用户对同一消息至多持有一个回应，
// 再次回应采用替换语义而非叠加
type MessageReaction struct {
	gorm.Model
	MessageUuid int64  `gorm:"column:message_uuid;uniqueIndex:idx_message_user;type:bigint;not null;comment:消息ID"`
	UserUuid    string `gorm:"column:user_uuid;uniqueIndex:idx_message_user;type:char(20);not null;comment:用户uuid"`
	Emoji       string `gorm:"column:emoji;type:varchar(16);not null;comment:表情"`
}

func (MessageReaction) TableName() string {
	return "message_reaction"
}

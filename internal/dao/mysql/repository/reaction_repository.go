// Package repository 提供数据访问层的具体实现
// 本文件实现 ReactionRepository 接口
package repository

import (
	"vanish_chat_server/internal/model"

	"gorm.io/gorm"
)

// reactionRepository ReactionRepository 接口的实现
type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository 创建 ReactionRepository 实例
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) FindByMessageUuid(messageUuid int64) ([]model.MessageReaction, error) {
	var reactions []model.MessageReaction
	if err := r.db.Where("message_uuid = ?", messageUuid).Find(&reactions).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息回应 message=%d", messageUuid)
	}
	return reactions, nil
}

func (r *reactionRepository) FindByMessageUuids(messageUuids []int64) ([]model.MessageReaction, error) {
	var reactions []model.MessageReaction
	if len(messageUuids) == 0 {
		return reactions, nil
	}
	if err := r.db.Where("message_uuid IN ?", messageUuids).Find(&reactions).Error; err != nil {
		return nil, wrapDBError(err, "批量查询消息回应")
	}
	return reactions, nil
}

func (r *reactionRepository) Create(reaction *model.MessageReaction) error {
	if err := r.db.Create(reaction).Error; err != nil {
		return wrapDBError(err, "创建消息回应")
	}
	return nil
}

func (r *reactionRepository) DeleteByMessageAndUser(messageUuid int64, userUuid string) error {
	if err := r.db.Where("message_uuid = ? AND user_uuid = ?", messageUuid, userUuid).
		Delete(&model.MessageReaction{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息回应 message=%d user=%s", messageUuid, userUuid)
	}
	return nil
}

func (r *reactionRepository) DeleteByMessageUuid(messageUuid int64) error {
	if err := r.db.Where("message_uuid = ?", messageUuid).
		Delete(&model.MessageReaction{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息全部回应 message=%d", messageUuid)
	}
	return nil
}

// DeleteByChatUuid 删除会话内全部回应（会话删除级联，子查询按消息归属匹配）
func (r *reactionRepository) DeleteByChatUuid(chatUuid string) error {
	sub := r.db.Model(&model.Message{}).Select("uuid").Where("chat_uuid = ?", chatUuid)
	if err := r.db.Where("message_uuid IN (?)", sub).
		Delete(&model.MessageReaction{}).Error; err != nil {
		return wrapDBErrorf(err, "删除会话全部回应 chat_uuid=%s", chatUuid)
	}
	return nil
}

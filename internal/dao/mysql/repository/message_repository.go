// Package repository 提供数据访问层的具体实现
// 本文件实现 MessageRepository 接口
package repository

import (
	"database/sql"
	"time"

	"vanish_chat_server/internal/model"

	"gorm.io/gorm"
)

// messageRepository MessageRepository 接口的实现
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%d", uuid)
	}
	return &message, nil
}

// FindVisibleByChat 查找会话中对 viewer 可见的消息
// 加入时间之前的历史消息被过滤掉，底层行对其他成员仍然保留
func (r *messageRepository) FindVisibleByChat(chatUuid string, joinedAt time.Time) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("chat_uuid = ? AND send_at >= ?", chatUuid, joinedAt).
		Order("send_at ASC").Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询可见消息 chat_uuid=%s", chatUuid)
	}
	return messages, nil
}

func (r *messageRepository) FindLastByChat(chatUuid string) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("chat_uuid = ?", chatUuid).
		Order("send_at DESC").First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询最后一条消息 chat_uuid=%s", chatUuid)
	}
	return &message, nil
}

func (r *messageRepository) FindReadByChat(chatUuid string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.Where("chat_uuid = ? AND is_read = ?", chatUuid, true).
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询已读消息 chat_uuid=%s", chatUuid)
	}
	return messages, nil
}

func (r *messageRepository) FindOlderThan(chatUuid string, cutoff time.Time, limit int) ([]model.Message, error) {
	var messages []model.Message
	q := r.db.Where("chat_uuid = ? AND send_at < ?", chatUuid, cutoff).Order("send_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询过期消息 chat_uuid=%s", chatUuid)
	}
	return messages, nil
}

func (r *messageRepository) CountByChatUuid(chatUuid string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).Where("chat_uuid = ?", chatUuid).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计会话消息 chat_uuid=%s", chatUuid)
	}
	return count, nil
}

// CountUnread 统计 viewer 的未读数
// 已读游标为 NULL 时计入他人发来的全部消息
func (r *messageRepository) CountUnread(chatUuid, viewerUuid string, lastReadAt sql.NullTime) (int64, error) {
	var count int64
	q := r.db.Model(&model.Message{}).Where("chat_uuid = ? AND send_id <> ?", chatUuid, viewerUuid)
	if lastReadAt.Valid {
		q = q.Where("send_at > ?", lastReadAt.Time)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计未读消息 chat_uuid=%s", chatUuid)
	}
	return count, nil
}

func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "创建消息")
	}
	return nil
}

func (r *messageRepository) MarkReadByChat(chatUuid, viewerUuid string) error {
	if err := r.db.Model(&model.Message{}).
		Where("chat_uuid = ? AND send_id <> ? AND is_read = ?", chatUuid, viewerUuid, false).
		Update("is_read", true).Error; err != nil {
		return wrapDBErrorf(err, "标记消息已读 chat_uuid=%s", chatUuid)
	}
	return nil
}

// RewriteAsSystem 将媒体消息原地改写为 system 占位
// 行不删除，仅类型、内容、对象 key 被不可逆地覆盖
func (r *messageRepository) RewriteAsSystem(uuid int64, placeholder string) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"type":    model.MessageTypeSystem,
			"content": placeholder,
			"url":     "",
		}).Error; err != nil {
		return wrapDBErrorf(err, "改写媒体消息 uuid=%d", uuid)
	}
	return nil
}

func (r *messageRepository) NullReplyRefs(targetUuid int64) error {
	if err := r.db.Model(&model.Message{}).Where("reply_to_id = ?", targetUuid).
		Update("reply_to_id", nil).Error; err != nil {
		return wrapDBErrorf(err, "置空回复引用 target=%d", targetUuid)
	}
	return nil
}

func (r *messageRepository) DeleteByUuid(uuid int64) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Message{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息 uuid=%d", uuid)
	}
	return nil
}

func (r *messageRepository) DeleteByChatUuid(chatUuid string) error {
	if err := r.db.Where("chat_uuid = ?", chatUuid).Delete(&model.Message{}).Error; err != nil {
		return wrapDBErrorf(err, "删除会话全部消息 chat_uuid=%s", chatUuid)
	}
	return nil
}

// FindMediaKeysByChat 收集会话内全部媒体对象 key
func (r *messageRepository) FindMediaKeysByChat(chatUuid string) ([]string, error) {
	var keys []string
	if err := r.db.Model(&model.Message{}).
		Where("chat_uuid = ? AND url <> ''", chatUuid).
		Pluck("url", &keys).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询媒体对象 chat_uuid=%s", chatUuid)
	}
	return keys, nil
}

// Package repository 提供数据访问层的具体实现
// 本文件实现 ChatRepository 接口
package repository

import (
	"time"

	"vanish_chat_server/internal/model"

	"gorm.io/gorm"
)

// chatRepository ChatRepository 接口的实现
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建 ChatRepository 实例
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindByUuid(uuid string) (*model.ChatInfo, error) {
	var chat model.ChatInfo
	if err := r.db.Where("uuid = ?", uuid).First(&chat).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &chat, nil
}

func (r *chatRepository) FindByUuids(uuids []string) ([]model.ChatInfo, error) {
	var chats []model.ChatInfo
	if len(uuids) == 0 {
		return chats, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&chats).Error; err != nil {
		return nil, wrapDBError(err, "批量查询会话")
	}
	return chats, nil
}

// FindDirectChatBetween 查找两个用户之间的非群聊会话
// 对 chat_member 做两次 JOIN，两个方向各占一条成员记录
func (r *chatRepository) FindDirectChatBetween(userA, userB string) (*model.ChatInfo, error) {
	var chat model.ChatInfo
	err := r.db.Table("chat_info").
		Joins("JOIN chat_member ma ON ma.chat_uuid = chat_info.uuid AND ma.user_uuid = ? AND ma.deleted_at IS NULL", userA).
		Joins("JOIN chat_member mb ON mb.chat_uuid = chat_info.uuid AND mb.user_uuid = ? AND mb.deleted_at IS NULL", userB).
		Where("chat_info.is_group = ? AND chat_info.deleted_at IS NULL", false).
		First(&chat).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询单聊会话 %s<->%s", userA, userB)
	}
	return &chat, nil
}

// FindByAutoDeletePrefs 查找配置了指定自动删除偏好的正常会话
func (r *chatRepository) FindByAutoDeletePrefs(prefs []int8) ([]model.ChatInfo, error) {
	var chats []model.ChatInfo
	if len(prefs) == 0 {
		return chats, nil
	}
	if err := r.db.Where("auto_delete_preference IN ? AND status <> ?", prefs, model.ChatStatusBlocked).
		Find(&chats).Error; err != nil {
		return nil, wrapDBError(err, "查询自动删除会话")
	}
	return chats, nil
}

func (r *chatRepository) Create(chat *model.ChatInfo) error {
	if err := r.db.Create(chat).Error; err != nil {
		return wrapDBError(err, "创建会话")
	}
	return nil
}

func (r *chatRepository) Update(chat *model.ChatInfo) error {
	if err := r.db.Save(chat).Error; err != nil {
		return wrapDBErrorf(err, "更新会话 uuid=%s", chat.Uuid)
	}
	return nil
}

func (r *chatRepository) UpdateStatus(uuid string, status int8) error {
	if err := r.db.Model(&model.ChatInfo{}).Where("uuid = ?", uuid).
		Update("status", status).Error; err != nil {
		return wrapDBErrorf(err, "更新会话状态 uuid=%s", uuid)
	}
	return nil
}

func (r *chatRepository) UpdateAutoDelete(uuid string, pref int8, at time.Time) error {
	if err := r.db.Model(&model.ChatInfo{}).Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"auto_delete_preference": pref,
			"auto_delete_updated_at": at,
		}).Error; err != nil {
		return wrapDBErrorf(err, "更新自动删除偏好 uuid=%s", uuid)
	}
	return nil
}

func (r *chatRepository) SoftDeleteByUuid(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.ChatInfo{}).Error; err != nil {
		return wrapDBErrorf(err, "删除会话 uuid=%s", uuid)
	}
	return nil
}

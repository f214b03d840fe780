// Package repository 提供数据访问层的具体实现
// 本文件实现 ChatMemberRepository 接口
package repository

import (
	"time"

	"vanish_chat_server/internal/model"

	"gorm.io/gorm"
)

// chatMemberRepository ChatMemberRepository 接口的实现
type chatMemberRepository struct {
	db *gorm.DB
}

// NewChatMemberRepository 创建 ChatMemberRepository 实例
func NewChatMemberRepository(db *gorm.DB) ChatMemberRepository {
	return &chatMemberRepository{db: db}
}

func (r *chatMemberRepository) FindByChatAndUser(chatUuid, userUuid string) (*model.ChatMember, error) {
	var member model.ChatMember
	if err := r.db.Where("chat_uuid = ? AND user_uuid = ?", chatUuid, userUuid).
		First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询成员 chat_uuid=%s user_uuid=%s", chatUuid, userUuid)
	}
	return &member, nil
}

func (r *chatMemberRepository) FindByChatUuid(chatUuid string) ([]model.ChatMember, error) {
	var members []model.ChatMember
	if err := r.db.Where("chat_uuid = ?", chatUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话成员 chat_uuid=%s", chatUuid)
	}
	return members, nil
}

func (r *chatMemberRepository) FindByUserUuid(userUuid string) ([]model.ChatMember, error) {
	var members []model.ChatMember
	if err := r.db.Where("user_uuid = ?", userUuid).Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户会话 user_uuid=%s", userUuid)
	}
	return members, nil
}

// FindMembersWithUserInfo 查询成员详细信息（包含用户基本资料）
// 通过 LEFT JOIN 关联用户表获取昵称、用户名和头像
func (r *chatMemberRepository) FindMembersWithUserInfo(chatUuid string) ([]ChatMemberWithUserInfo, error) {
	var members []ChatMemberWithUserInfo
	if err := r.db.Table("chat_member").
		Select("user_info.uuid as user_id, user_info.nickname, user_info.handle, user_info.avatar, chat_member.joined_at, chat_member.last_read_at").
		Joins("LEFT JOIN user_info ON chat_member.user_uuid = user_info.uuid").
		Where("chat_member.chat_uuid = ? AND chat_member.deleted_at IS NULL", chatUuid).
		Scan(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询成员详情 chat_uuid=%s", chatUuid)
	}
	return members, nil
}

func (r *chatMemberRepository) CountByChatUuid(chatUuid string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.ChatMember{}).Where("chat_uuid = ?", chatUuid).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计会话成员 chat_uuid=%s", chatUuid)
	}
	return count, nil
}

func (r *chatMemberRepository) Create(member *model.ChatMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBError(err, "创建会话成员")
	}
	return nil
}

func (r *chatMemberRepository) Delete(chatUuid, userUuid string) error {
	if err := r.db.Where("chat_uuid = ? AND user_uuid = ?", chatUuid, userUuid).
		Delete(&model.ChatMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除成员 chat_uuid=%s user_uuid=%s", chatUuid, userUuid)
	}
	return nil
}

func (r *chatMemberRepository) DeleteByChatUuid(chatUuid string) error {
	if err := r.db.Where("chat_uuid = ?", chatUuid).Delete(&model.ChatMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除会话全部成员 chat_uuid=%s", chatUuid)
	}
	return nil
}

func (r *chatMemberRepository) DeleteByUserUuid(userUuid string) error {
	if err := r.db.Where("user_uuid = ?", userUuid).Delete(&model.ChatMember{}).Error; err != nil {
		return wrapDBErrorf(err, "删除用户全部成员记录 user_uuid=%s", userUuid)
	}
	return nil
}

// AdvanceLastReadAt 前移已读游标
// WHERE 条件保证单调性：时间早于或等于已存储游标的写入不影响任何行，
// 与并发写入消息天然可交换，无需额外加锁
func (r *chatMemberRepository) AdvanceLastReadAt(chatUuid, userUuid string, at time.Time) error {
	if err := r.db.Model(&model.ChatMember{}).
		Where("chat_uuid = ? AND user_uuid = ? AND (last_read_at IS NULL OR last_read_at < ?)",
			chatUuid, userUuid, at).
		Update("last_read_at", at).Error; err != nil {
		return wrapDBErrorf(err, "更新已读游标 chat_uuid=%s user_uuid=%s", chatUuid, userUuid)
	}
	return nil
}

// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"database/sql"
	"time"

	"vanish_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.UserInfo, error)
	// FindByHandle 根据用户名查找用户
	FindByHandle(handle string) (*model.UserInfo, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.UserInfo, error)
	// SearchByHandle 按用户名前缀搜索（排除指定用户）
	SearchByHandle(prefix, excludeUuid string, limit int) ([]model.UserInfo, error)
	// Create 创建新用户
	Create(user *model.UserInfo) error
	// Update 更新用户信息
	Update(user *model.UserInfo) error
	// UpdateOnlineStatus 更新在线标志与时间戳
	UpdateOnlineStatus(uuid string, online bool, at time.Time) error
	// SoftDeleteByUuid 软删除用户（账号注销）
	SoftDeleteByUuid(uuid string) error
}

// ChatRepository 会话数据访问接口
type ChatRepository interface {
	// FindByUuid 根据 UUID 查找会话
	FindByUuid(uuid string) (*model.ChatInfo, error)
	// FindByUuids 批量根据 UUID 查找会话
	FindByUuids(uuids []string) ([]model.ChatInfo, error)
	// FindDirectChatBetween 查找两个用户之间的非群聊会话
	FindDirectChatBetween(userA, userB string) (*model.ChatInfo, error)
	// FindByAutoDeletePrefs 查找配置了指定自动删除偏好的会话（供后台清理任务使用）
	FindByAutoDeletePrefs(prefs []int8) ([]model.ChatInfo, error)
	// Create 创建新会话
	Create(chat *model.ChatInfo) error
	// Update 更新会话信息
	Update(chat *model.ChatInfo) error
	// UpdateStatus 更新会话状态
	UpdateStatus(uuid string, status int8) error
	// UpdateAutoDelete 更新自动删除偏好
	UpdateAutoDelete(uuid string, pref int8, at time.Time) error
	// SoftDeleteByUuid 软删除会话
	SoftDeleteByUuid(uuid string) error
}

// ChatMemberRepository 会话成员数据访问接口
type ChatMemberRepository interface {
	// FindByChatAndUser 查找成员关系，用于成员资格校验
	FindByChatAndUser(chatUuid, userUuid string) (*model.ChatMember, error)
	// FindByChatUuid 查找会话全部成员
	FindByChatUuid(chatUuid string) ([]model.ChatMember, error)
	// FindByUserUuid 查找用户加入的所有会话成员记录
	FindByUserUuid(userUuid string) ([]model.ChatMember, error)
	// FindMembersWithUserInfo 查找成员详情（JOIN 用户表取昵称和头像）
	FindMembersWithUserInfo(chatUuid string) ([]ChatMemberWithUserInfo, error)
	// CountByChatUuid 统计会话成员数
	CountByChatUuid(chatUuid string) (int64, error)
	// Create 添加成员
	Create(member *model.ChatMember) error
	// Delete 删除单个成员
	Delete(chatUuid, userUuid string) error
	// DeleteByChatUuid 删除会话全部成员（会话删除级联）
	DeleteByChatUuid(chatUuid string) error
	// DeleteByUserUuid 删除用户的全部成员记录（账号注销级联）
	DeleteByUserUuid(userUuid string) error
	// AdvanceLastReadAt 前移已读游标
	// 单调：仅当新时间晚于已存储时间才写入，否则不做任何事（非错误）
	AdvanceLastReadAt(chatUuid, userUuid string, at time.Time) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindByUuid 根据雪花 ID 查找消息
	FindByUuid(uuid int64) (*model.Message, error)
	// FindVisibleByChat 查找会话中对 viewer 可见的消息
	// 可见性 = send_at >= 成员的 joined_at，加入前的历史不可见（过滤而非删除）
	FindVisibleByChat(chatUuid string, joinedAt time.Time) ([]model.Message, error)
	// FindLastByChat 查找会话最后一条消息，空会话返回 CodeNotFound
	FindLastByChat(chatUuid string) (*model.Message, error)
	// FindReadByChat 查找会话中已读消息（on-close 清理候选）
	FindReadByChat(chatUuid string) ([]model.Message, error)
	// FindOlderThan 查找会话中早于 cutoff 的消息（窗口清理候选）
	FindOlderThan(chatUuid string, cutoff time.Time, limit int) ([]model.Message, error)
	// CountByChatUuid 统计会话消息数
	CountByChatUuid(chatUuid string) (int64, error)
	// CountUnread 统计 viewer 的未读数（排除自己发的消息）
	CountUnread(chatUuid, viewerUuid string, lastReadAt sql.NullTime) (int64, error)
	// Create 写入消息
	Create(message *model.Message) error
	// MarkReadByChat 将会话内他人发来的消息置为已读
	MarkReadByChat(chatUuid, viewerUuid string) error
	// RewriteAsSystem 将媒体消息原地改写为 system 占位（内容替换、对象 key 清空）
	RewriteAsSystem(uuid int64, placeholder string) error
	// NullReplyRefs 将所有指向 target 的 reply_to_id 置 NULL（删除前修复弱引用）
	NullReplyRefs(targetUuid int64) error
	// DeleteByUuid 删除单条消息
	DeleteByUuid(uuid int64) error
	// DeleteByChatUuid 删除会话全部消息（会话删除级联）
	DeleteByChatUuid(chatUuid string) error
	// FindMediaKeysByChat 收集会话内全部媒体对象 key（会话删除时清理对象存储）
	FindMediaKeysByChat(chatUuid string) ([]string, error)
}

// ReactionRepository 消息回应数据访问接口
type ReactionRepository interface {
	// FindByMessageUuid 查找某条消息的全部回应
	FindByMessageUuid(messageUuid int64) ([]model.MessageReaction, error)
	// FindByMessageUuids 批量查找多条消息的回应
	FindByMessageUuids(messageUuids []int64) ([]model.MessageReaction, error)
	// Create 写入回应
	Create(reaction *model.MessageReaction) error
	// DeleteByMessageAndUser 删除某用户对某消息的回应（替换语义的前半步）
	DeleteByMessageAndUser(messageUuid int64, userUuid string) error
	// DeleteByMessageUuid 删除某消息的全部回应（消息删除级联）
	DeleteByMessageUuid(messageUuid int64) error
	// DeleteByChatUuid 删除会话内全部回应（会话删除级联）
	DeleteByChatUuid(chatUuid string) error
}

// ChatMemberWithUserInfo 成员详细信息（含用户资料）
type ChatMemberWithUserInfo struct {
	UserId     string       `json:"userId"`
	Nickname   string       `json:"nickname"`
	Handle     string       `json:"handle"`
	Avatar     string       `json:"avatar"`
	JoinedAt   time.Time    `json:"joinedAt"`
	LastReadAt sql.NullTime `json:"lastReadAt"`
}

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db       *gorm.DB
	User     UserRepository
	Chat     ChatRepository
	Member   ChatMemberRepository
	Message  MessageRepository
	Reaction ReactionRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:       db,
		User:     NewUserRepository(db),
		Chat:     NewChatRepository(db),
		Member:   NewChatMemberRepository(db),
		Message:  NewMessageRepository(db),
		Reaction: NewReactionRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// ChatTransaction 在会话行锁保护下执行事务
// 先对 chat_info 行做 SELECT ... FOR UPDATE，实现单会话单写者：
// 回应替换的读改写、回复引用置空后删除、request 接受与空请求清理的竞争
// 都必须经由此入口串行化
func (r *Repositories) ChatTransaction(chatUuid string, fn func(txRepos *Repositories, chat *model.ChatInfo) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var chat model.ChatInfo
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("uuid = ?", chatUuid).First(&chat).Error; err != nil {
			return wrapDBErrorf(err, "锁定会话 uuid=%s", chatUuid)
		}
		return fn(NewRepositories(tx), &chat)
	})
}

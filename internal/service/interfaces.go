// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 调用者身份一律由 Handler 从 JWT 上下文取出后作为首参传入，不信任请求体
package service

import (
	"context"

	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/dto/respond"
)

// UserService 用户业务接口
// 处理注册、登录、令牌刷新与资料管理
type UserService interface {
	// Register 用户注册，成功即视为登录
	Register(req request.RegisterRequest) (*respond.LoginRespond, error)
	// Login 密码登录
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// RefreshToken 用 Refresh Token 换取新的 Access Token
	RefreshToken(req request.RefreshTokenRequest) (*respond.RefreshTokenRespond, error)
	// Logout 退出登录，作废服务端的 Refresh Token
	Logout(userId string) error
	// UpdateUserInfo 更新个人资料，handle 仅允许首次设置
	UpdateUserInfo(userId string, req request.UpdateUserInfoRequest) error
	// GetUserInfo 获取用户资料
	GetUserInfo(uuid string) (*respond.GetUserInfoRespond, error)
	// SearchUsers 按用户名前缀搜索，结果不含调用者本人
	SearchUsers(callerId, keyword string) ([]respond.GetUserInfoRespond, error)
	// DeleteAccount 注销账号（软删除，级联退出所有会话）
	DeleteAccount(userId string) error
}

// LifecycleService 会话生命周期业务接口
// 覆盖会话的创建、请求审批、关闭、拉黑与删除
type LifecycleService interface {
	// CreateDirectChat 创建单聊；已有会话直接复用，否则以 request 状态落库
	CreateDirectChat(callerId string, req request.CreateDirectChatRequest) (*respond.GetChatInfoRespond, error)
	// CreateGroupChat 创建群聊，创建者为永久管理员
	CreateGroupChat(callerId string, req request.CreateGroupChatRequest) (*respond.GetChatInfoRespond, error)
	// AcceptRequest 接受会话请求，request -> active
	AcceptRequest(callerId, chatId string) error
	// RejectRequest 拒绝会话请求，整个会话与消息一并清除
	RejectRequest(callerId, chatId string) error
	// CloseChat 关闭会话：触发 on-close 清理；创建者关闭空 request 会话则直接清除
	CloseChat(callerId, chatId string) error
	// BlockChat 拉黑，终态，双方都无法再发消息
	BlockChat(callerId, chatId string) error
	// DeleteChat 删除会话及其全部消息、回应与媒体对象
	DeleteChat(callerId, chatId string) error
	// UpdateRetention 修改自动删除偏好并广播系统消息
	UpdateRetention(callerId string, req request.UpdateRetentionRequest) error
	// GetChatList 获取会话列表；blocked 不展示，request 对接收方仅在有消息后可见
	GetChatList(callerId string) ([]respond.ChatListRespond, error)
	// GetRequestList 获取待处理的会话请求
	GetRequestList(callerId string) ([]respond.ChatListRespond, error)
	// GetChatInfo 获取会话详情
	GetChatInfo(callerId, chatId string) (*respond.GetChatInfoRespond, error)
}

// MembershipService 成员与已读业务接口
type MembershipService interface {
	// AddMember 添加群成员（仅群聊，仅管理员）
	AddMember(callerId string, req request.AddMemberRequest) error
	// RemoveMember 移除成员或主动退出；创建者不可被他人移除
	RemoveMember(callerId string, req request.RemoveMemberRequest) error
	// SetAdmin 设置/取消管理员；创建者的管理员身份不可撤销
	SetAdmin(callerId string, req request.SetAdminRequest) error
	// MarkRead 标记会话已读，已读游标单调前移
	MarkRead(callerId, chatId string) error
	// GetMemberList 获取成员列表
	GetMemberList(callerId, chatId string) ([]respond.ChatMemberRespond, error)
}

// MessageService 消息业务接口
type MessageService interface {
	// SendMessage 发送消息并向成员广播
	SendMessage(callerId string, req request.SendMessageRequest) (*respond.MessageRespond, error)
	// GetMessageList 拉取会话消息，只含加入后发送的部分
	GetMessageList(callerId, chatId string) ([]respond.MessageRespond, error)
	// DeleteMessage 删除自己发送的消息
	DeleteMessage(callerId, messageId string) error
	// React 添加表情回应，同一用户同一消息只保留最新一个
	React(callerId string, req request.ReactRequest) error
	// Unreact 撤销表情回应
	Unreact(callerId string, req request.UnreactRequest) error
}

// RetentionService 消失内容策略业务接口
type RetentionService interface {
	// ConsumeMedia 消费一次性媒体：换取一次性下载地址并原地改写为占位
	ConsumeMedia(callerId, messageId string) (*respond.ConsumeMediaRespond, error)
	// SweepOnce 对所有配置了时间窗口的会话执行一轮过期清理
	SweepOnce(ctx context.Context) error
	// Run 启动后台清理循环，ctx 取消时退出
	Run(ctx context.Context)
}

// PresenceService 在线状态与输入状态业务接口
type PresenceService interface {
	// SetOnline 标记上线（网关连接建立时调用）
	SetOnline(userId string) error
	// SetOffline 标记离线
	SetOffline(userId string) error
	// Heartbeat 心跳续期在线标记
	Heartbeat(userId string) error
	// IsOnline 查询用户是否在线
	IsOnline(userId string) (bool, error)
	// Typing 广播输入状态，不落库，尽力而为
	Typing(callerId string, req request.TypingRequest) error
}

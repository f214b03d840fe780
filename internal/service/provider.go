// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"vanish_chat_server/internal/dao/mysql/repository"
	myredis "vanish_chat_server/internal/dao/redis"
	"vanish_chat_server/internal/infrastructure/push"
	"vanish_chat_server/internal/infrastructure/storage"
	"vanish_chat_server/internal/service/event"
	"vanish_chat_server/internal/service/lifecycle"
	"vanish_chat_server/internal/service/membership"
	"vanish_chat_server/internal/service/message"
	"vanish_chat_server/internal/service/presence"
	"vanish_chat_server/internal/service/retention"
	"vanish_chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// Handler 层通过 service.Svc 访问各个 Service
type Services struct {
	User       UserService
	Lifecycle  LifecycleService
	Membership MembershipService
	Message    MessageService
	Retention  RetentionService
	Presence   PresenceService
}

// NewServices 创建并注入所有 Service 实例
// repos: Repository 层聚合；cache: Redis 缓存；publisher: 事件发布器
// store: 对象存储；sender: 推送发送器
func NewServices(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	publisher event.Publisher,
	store storage.ObjectStorage,
	sender push.Sender,
) *Services {
	presenceSvc := presence.NewPresenceService(repos, cache, publisher)
	retentionSvc := retention.NewRetentionService(repos, cache, publisher, store)
	lifecycleSvc := lifecycle.NewLifecycleService(repos, cache, publisher, store, presenceSvc)
	membershipSvc := membership.NewMembershipService(repos, cache, publisher, store)
	messageSvc := message.NewMessageService(repos, cache, publisher, store, sender, presenceSvc)
	userSvc := user.NewUserService(repos, cache, membershipSvc)

	return &Services{
		User:       userSvc,
		Lifecycle:  lifecycleSvc,
		Membership: membershipSvc,
		Message:    messageSvc,
		Retention:  retentionSvc,
		Presence:   presenceSvc,
	}
}

// Svc 全局 Services 实例
var Svc *Services

// InitServices 初始化全局 Services 实例
// 在 main.go 中调用，需在 Repository、Redis、存储与事件组件之后
func InitServices(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	publisher event.Publisher,
	store storage.ObjectStorage,
	sender push.Sender,
) {
	Svc = NewServices(repos, cache, publisher, store, sender)
}

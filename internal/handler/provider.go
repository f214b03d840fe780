// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
// 遵循依赖倒置原则，通过构造函数注入 Service 依赖
package handler

import (
	"vanish_chat_server/internal/gateway/websocket"
	"vanish_chat_server/internal/infrastructure/storage"
	"vanish_chat_server/internal/service"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，Router 层通过此结构访问各个 Handler
type Handlers struct {
	User    *UserHandler
	Chat    *ChatHandler
	Message *MessageHandler
	Media   *MediaHandler
	Ws      *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// svc: Service 层聚合；store: 对象存储；hub: WebSocket 连接管理器
func NewHandlers(svc *service.Services, store storage.ObjectStorage, hub *websocket.Hub) *Handlers {
	return &Handlers{
		User:    NewUserHandler(svc.User),
		Chat:    NewChatHandler(svc.Lifecycle, svc.Membership),
		Message: NewMessageHandler(svc.Message, svc.Retention),
		Media:   NewMediaHandler(store),
		Ws:      NewWsHandler(hub, svc.Presence),
	}
}

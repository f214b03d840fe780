// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"vanish_chat_server/internal/gateway/websocket"
	"vanish_chat_server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 连接处理器
type WsHandler struct {
	hub         *websocket.Hub
	presenceSvc service.PresenceService
}

// NewWsHandler 创建 WebSocket 处理器实例
func NewWsHandler(hub *websocket.Hub, presenceSvc service.PresenceService) *WsHandler {
	return &WsHandler{
		hub:         hub,
		presenceSvc: presenceSvc,
	}
}

// WsLogin WebSocket 登录（升级 HTTP 连接为 WebSocket）
// GET /ws
// 经过 JWT 中间件，身份取自上下文；连接建立即标记在线
// 连接摘除时的离线标记由网关的 DisconnectHandler 回调完成
func (h *WsHandler) WsLogin(c *gin.Context) {
	userId := c.GetString("user_id")
	if err := websocket.NewClientInit(c, h.hub, userId); err != nil {
		// 升级失败时 gorilla 已写入 HTTP 错误响应，这里只记录
		zap.L().Error("ws 连接建立失败", zap.String("user_id", userId), zap.Error(err))
		return
	}
	if err := h.presenceSvc.SetOnline(userId); err != nil {
		zap.L().Warn("标记在线失败", zap.String("user_id", userId), zap.Error(err))
	}
}

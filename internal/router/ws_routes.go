// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWsRoutes 注册 WebSocket 路由（需要认证）
func (rt *Router) RegisterWsRoutes(rg *gin.RouterGroup) {
	// GET /ws - 升级为 WebSocket 连接
	rg.GET("/ws", rt.handlers.Ws.WsLogin)
}

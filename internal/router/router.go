// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"vanish_chat_server/internal/handler"
	"vanish_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合实例
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
// 注册/登录/刷新令牌与签名下载为公开接口，其余接口一律经过 JWT 认证
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterPublicRoutes(r)

	api := r.Group("/")
	api.Use(middleware.JWTAuth())
	{
		rt.RegisterUserRoutes(api)    // 用户路由
		rt.RegisterChatRoutes(api)    // 会话与成员路由
		rt.RegisterMessageRoutes(api) // 消息路由
		rt.RegisterMediaRoutes(api)   // 媒体上传路由
		rt.RegisterWsRoutes(api)      // WebSocket 路由
	}
}

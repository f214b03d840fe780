// Package router 提供 HTTP 路由注册
// 本文件定义用户与认证相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 注册公开路由（无需认证）
func (rt *Router) RegisterPublicRoutes(r *gin.Engine) {
	r.POST("/register", rt.handlers.User.Register)
	r.POST("/login", rt.handlers.User.Login)

	authGroup := r.Group("/auth")
	{
		// POST /auth/refresh - 使用 Refresh Token 换取新的 Access Token
		authGroup.POST("/refresh", rt.handlers.User.RefreshToken)
	}

	// 媒体下载不走 JWT，凭 URL 签名放行
	r.GET("/media/*key", rt.handlers.Media.Download)
}

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.POST("/logout", rt.handlers.User.Logout)                 // 退出登录
		userGroup.POST("/updateUserInfo", rt.handlers.User.UpdateUserInfo) // 修改个人资料
		userGroup.GET("/getUserInfo", rt.handlers.User.GetUserInfo)        // 获取用户资料
		userGroup.GET("/search", rt.handlers.User.SearchUsers)             // 按用户名搜索
		userGroup.POST("/deleteAccount", rt.handlers.User.DeleteAccount)   // 注销账号
	}
}

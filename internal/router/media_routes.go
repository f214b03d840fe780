// Package router 提供 HTTP 路由注册
// 本文件定义媒体上传路由（下载走公开的签名路由）
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMediaRoutes 注册媒体相关路由（需要认证）
func (rt *Router) RegisterMediaRoutes(rg *gin.RouterGroup) {
	mediaGroup := rg.Group("/media")
	{
		mediaGroup.POST("/upload", rt.handlers.Media.Upload) // 上传媒体文件
	}
}

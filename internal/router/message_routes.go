// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.POST("/send", rt.handlers.Message.SendMessage)          // 发送消息
		messageGroup.GET("/list", rt.handlers.Message.GetMessageList)        // 获取消息记录
		messageGroup.POST("/delete", rt.handlers.Message.DeleteMessage)      // 删除自己的消息
		messageGroup.POST("/consumeMedia", rt.handlers.Message.ConsumeMedia) // 消费一次性媒体
		messageGroup.POST("/react", rt.handlers.Message.React)               // 添加表情回应
		messageGroup.POST("/unreact", rt.handlers.Message.Unreact)           // 撤销表情回应
	}
}

// Package router 提供 HTTP 路由注册
// 本文件定义会话生命周期与成员相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册会话相关路由（需要认证）
// 包括会话的创建、请求审批、关闭、拉黑、删除与成员管理
func (rt *Router) RegisterChatRoutes(rg *gin.RouterGroup) {
	chatGroup := rg.Group("/chat")
	{
		chatGroup.POST("/createDirect", rt.handlers.Chat.CreateDirectChat)   // 发起单聊
		chatGroup.POST("/createGroup", rt.handlers.Chat.CreateGroupChat)     // 创建群聊
		chatGroup.POST("/accept", rt.handlers.Chat.AcceptRequest)            // 接受会话请求
		chatGroup.POST("/reject", rt.handlers.Chat.RejectRequest)            // 拒绝会话请求
		chatGroup.POST("/close", rt.handlers.Chat.CloseChat)                 // 关闭会话
		chatGroup.POST("/block", rt.handlers.Chat.BlockChat)                 // 拉黑会话
		chatGroup.POST("/delete", rt.handlers.Chat.DeleteChat)               // 删除会话
		chatGroup.POST("/updateRetention", rt.handlers.Chat.UpdateRetention) // 修改自动删除偏好
		chatGroup.GET("/list", rt.handlers.Chat.GetChatList)                 // 获取会话列表
		chatGroup.GET("/requestList", rt.handlers.Chat.GetRequestList)       // 获取待处理请求
		chatGroup.GET("/info", rt.handlers.Chat.GetChatInfo)                 // 获取会话详情

		chatGroup.POST("/addMember", rt.handlers.Chat.AddMember)       // 添加群成员
		chatGroup.POST("/removeMember", rt.handlers.Chat.RemoveMember) // 移除成员/退出
		chatGroup.POST("/setAdmin", rt.handlers.Chat.SetAdmin)         // 设置/取消管理员
		chatGroup.POST("/markRead", rt.handlers.Chat.MarkRead)         // 标记已读
		chatGroup.GET("/memberList", rt.handlers.Chat.GetMemberList)   // 获取成员列表
	}
}

// Package handler 提供 HTTP 请求处理器
// 本文件处理会话生命周期与成员相关的 API 请求
package handler

import (
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/service"
	"vanish_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ChatHandler 会话请求处理器
// 聚合生命周期与成员两类业务接口
type ChatHandler struct {
	lifecycleSvc  service.LifecycleService
	membershipSvc service.MembershipService
}

// NewChatHandler 创建会话处理器实例
func NewChatHandler(lifecycleSvc service.LifecycleService, membershipSvc service.MembershipService) *ChatHandler {
	return &ChatHandler{
		lifecycleSvc:  lifecycleSvc,
		membershipSvc: membershipSvc,
	}
}

// CreateDirectChat 发起单聊
// POST /chat/createDirect
// 无历史往来时会话以 request 状态创建，等待对方接受
func (h *ChatHandler) CreateDirectChat(c *gin.Context) {
	var req request.CreateDirectChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	data, err := h.lifecycleSvc.CreateDirectChat(callerId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CreateGroupChat 创建群聊
// POST /chat/createGroup
func (h *ChatHandler) CreateGroupChat(c *gin.Context) {
	var req request.CreateGroupChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	data, err := h.lifecycleSvc.CreateGroupChat(callerId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AcceptRequest 接受会话请求
// POST /chat/accept
func (h *ChatHandler) AcceptRequest(c *gin.Context) {
	var req request.ChatActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.lifecycleSvc.AcceptRequest(callerId, req.ChatId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RejectRequest 拒绝会话请求（会话与消息一并清除）
// POST /chat/reject
func (h *ChatHandler) RejectRequest(c *gin.Context) {
	var req request.ChatActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.lifecycleSvc.RejectRequest(callerId, req.ChatId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// CloseChat 关闭会话
// POST /chat/close
// 配置了关闭即清理的会话会在此时删除已读消息
func (h *ChatHandler) CloseChat(c *gin.Context) {
	var req request.ChatActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.lifecycleSvc.CloseChat(callerId, req.ChatId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// BlockChat 拉黑会话
// POST /chat/block
func (h *ChatHandler) BlockChat(c *gin.Context) {
	var req request.ChatActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.lifecycleSvc.BlockChat(callerId, req.ChatId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteChat 删除会话及其全部内容
// POST /chat/delete
func (h *ChatHandler) DeleteChat(c *gin.Context) {
	var req request.ChatActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.lifecycleSvc.DeleteChat(callerId, req.ChatId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UpdateRetention 修改消息自动删除偏好
// POST /chat/updateRetention
func (h *ChatHandler) UpdateRetention(c *gin.Context) {
	var req request.UpdateRetentionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.lifecycleSvc.UpdateRetention(callerId, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetChatList 获取会话列表
// GET /chat/list
func (h *ChatHandler) GetChatList(c *gin.Context) {
	callerId := c.GetString("user_id")
	data, err := h.lifecycleSvc.GetChatList(callerId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetRequestList 获取待处理的会话请求列表
// GET /chat/requestList
func (h *ChatHandler) GetRequestList(c *gin.Context) {
	callerId := c.GetString("user_id")
	data, err := h.lifecycleSvc.GetRequestList(callerId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetChatInfo 获取会话详情
// GET /chat/info?chatId=xxx
func (h *ChatHandler) GetChatInfo(c *gin.Context) {
	chatId := c.Query("chatId")
	if chatId == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "chatId 不能为空"))
		return
	}
	callerId := c.GetString("user_id")
	data, err := h.lifecycleSvc.GetChatInfo(callerId, chatId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AddMember 添加群成员
// POST /chat/addMember
func (h *ChatHandler) AddMember(c *gin.Context) {
	var req request.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.membershipSvc.AddMember(callerId, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RemoveMember 移除群成员或主动退出
// POST /chat/removeMember
func (h *ChatHandler) RemoveMember(c *gin.Context) {
	var req request.RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.membershipSvc.RemoveMember(callerId, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// SetAdmin 设置/取消群管理员
// POST /chat/setAdmin
func (h *ChatHandler) SetAdmin(c *gin.Context) {
	var req request.SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.membershipSvc.SetAdmin(callerId, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// MarkRead 标记会话已读
// POST /chat/markRead
func (h *ChatHandler) MarkRead(c *gin.Context) {
	var req request.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.membershipSvc.MarkRead(callerId, req.ChatId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetMemberList 获取成员列表
// GET /chat/memberList?chatId=xxx
func (h *ChatHandler) GetMemberList(c *gin.Context) {
	chatId := c.Query("chatId")
	if chatId == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "chatId 不能为空"))
		return
	}
	callerId := c.GetString("user_id")
	data, err := h.membershipSvc.GetMemberList(callerId, chatId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

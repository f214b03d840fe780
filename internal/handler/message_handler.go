// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
package handler

import (
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc   service.MessageService
	retentionSvc service.RetentionService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService, retentionSvc service.RetentionService) *MessageHandler {
	return &MessageHandler{
		messageSvc:   messageSvc,
		retentionSvc: retentionSvc,
	}
}

// SendMessage 发送消息
// POST /message/send
// 请求体: request.SendMessageRequest
// 响应: respond.MessageRespond
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	data, err := h.messageSvc.SendMessage(callerId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMessageList 拉取会话消息记录
// GET /message/list?chatId=xxx
// 只返回调用者加入会话之后发送的消息
func (h *MessageHandler) GetMessageList(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	data, err := h.messageSvc.GetMessageList(callerId, req.ChatId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMessage 删除自己发送的消息
// POST /message/delete
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	var req request.DeleteMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.messageSvc.DeleteMessage(callerId, req.MessageId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ConsumeMedia 消费一次性媒体消息
// POST /message/consumeMedia
// 响应: respond.ConsumeMediaRespond（一次性下载地址，行已被改写为占位）
func (h *MessageHandler) ConsumeMedia(c *gin.Context) {
	var req request.ConsumeMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	data, err := h.retentionSvc.ConsumeMedia(callerId, req.MessageId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// React 添加表情回应
// POST /message/react
// 同一用户对同一消息只保留最新一个回应
func (h *MessageHandler) React(c *gin.Context) {
	var req request.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.messageSvc.React(callerId, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Unreact 撤销表情回应
// POST /message/unreact
func (h *MessageHandler) Unreact(c *gin.Context) {
	var req request.UnreactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.messageSvc.Unreact(callerId, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

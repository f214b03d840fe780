// Package handler 提供 HTTP 请求处理器
// 本文件处理用户相关的 API 请求
// 调用者身份一律取自 JWT 中间件写入的上下文，不信任请求体
package handler

import (
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
// 通过构造函数注入 UserService，遵循依赖倒置原则
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Register 用户注册
// POST /register
// 请求体: request.RegisterRequest
// 响应: respond.LoginRespond (用户信息 + 令牌对，注册即登录)
func (h *UserHandler) Register(c *gin.Context) {
	// 1. 绑定并验证请求参数
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	// 2. 调用 Service 层处理业务逻辑
	data, err := h.userSvc.Register(req)
	if err != nil {
		HandleError(c, err)
		return
	}

	// 3. 返回成功响应
	HandleSuccess(c, data)
}

// Login 用户登录（密码登录）
// POST /login
// 请求体: request.LoginRequest
// 响应: respond.LoginRespond (用户信息 + JWT Token)
func (h *UserHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Login(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RefreshToken 刷新 Access Token
// POST /auth/refresh
// 请求体: request.RefreshTokenRequest
// 响应: respond.RefreshTokenRespond
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.RefreshToken(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Logout 退出登录
// POST /user/logout
func (h *UserHandler) Logout(c *gin.Context) {
	callerId := c.GetString("user_id")
	if err := h.userSvc.Logout(callerId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UpdateUserInfo 修改个人资料
// POST /user/updateUserInfo
// 请求体: request.UpdateUserInfoRequest
func (h *UserHandler) UpdateUserInfo(c *gin.Context) {
	var req request.UpdateUserInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	if err := h.userSvc.UpdateUserInfo(callerId, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetUserInfo 获取用户资料
// GET /user/getUserInfo?userId=xxx
// userId 缺省时返回调用者自己的资料
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	userId := c.Query("userId")
	if userId == "" {
		userId = c.GetString("user_id")
	}
	data, err := h.userSvc.GetUserInfo(userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SearchUsers 按用户名前缀搜索用户
// GET /user/search?keyword=xxx
func (h *UserHandler) SearchUsers(c *gin.Context) {
	var req request.SearchUserRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	callerId := c.GetString("user_id")
	data, err := h.userSvc.SearchUsers(callerId, req.Keyword)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteAccount 注销账号
// POST /user/deleteAccount
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	callerId := c.GetString("user_id")
	if err := h.userSvc.DeleteAccount(callerId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Package request 定义 HTTP 请求参数结构
// 字段校验通过 binding tag 由 validator 完成
package request

// RegisterRequest 用户注册
type RegisterRequest struct {
	Handle   string `json:"handle" binding:"required,min=3,max=30"`
	Nickname string `json:"nickname" binding:"required,max=30"`
	Password string `json:"password" binding:"required,min=6,max=64"`
}

// LoginRequest 密码登录
type LoginRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Access Token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateUserInfoRequest 更新个人资料
// Handle 仅允许首次设置，已设置后传入不同值会被拒绝
type UpdateUserInfoRequest struct {
	Nickname  string `json:"nickname" binding:"omitempty,max=30"`
	Handle    string `json:"handle" binding:"omitempty,min=3,max=30"`
	Avatar    string `json:"avatar" binding:"omitempty,max=255"`
	Signature string `json:"signature" binding:"omitempty,max=100"`
	PushToken string `json:"pushToken" binding:"omitempty,max=255"`
}

// SearchUserRequest 按用户名前缀搜索
type SearchUserRequest struct {
	Keyword string `form:"keyword" binding:"required,min=1,max=30"`
}

// Package respond 定义 HTTP 响应数据结构
package respond

// LoginRespond 登录/注册响应
type LoginRespond struct {
	Uuid         string `json:"uuid"`
	Handle       string `json:"handle"`
	Nickname     string `json:"nickname"`
	Avatar       string `json:"avatar"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshTokenRespond 刷新令牌响应
type RefreshTokenRespond struct {
	AccessToken string `json:"accessToken"`
}

// GetUserInfoRespond 用户资料
type GetUserInfoRespond struct {
	Uuid      string `json:"uuid"`
	Handle    string `json:"handle"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	Signature string `json:"signature"`
	IsOnline  bool   `json:"isOnline"`
}

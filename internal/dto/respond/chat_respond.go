package respond

import "time"

// ChatListRespond 会话列表项
// 单聊的 Name/Avatar 取对方用户资料
type ChatListRespond struct {
	ChatId               string     `json:"chatId"`
	IsGroup              bool       `json:"isGroup"`
	Name                 string     `json:"name"`
	Avatar               string     `json:"avatar"`
	Status               int8       `json:"status"`
	AutoDeletePreference int8       `json:"autoDeletePreference"`
	UnreadCount          int64      `json:"unreadCount"`
	LastMessage          string     `json:"lastMessage"`
	LastMessageAt        *time.Time `json:"lastMessageAt,omitempty"`
	PeerOnline           bool       `json:"peerOnline"`
}

// GetChatInfoRespond 会话详情
type GetChatInfoRespond struct {
	ChatId               string   `json:"chatId"`
	IsGroup              bool     `json:"isGroup"`
	Name                 string   `json:"name"`
	Avatar               string   `json:"avatar"`
	Status               int8     `json:"status"`
	CreatedBy            string   `json:"createdBy"`
	AdminIds             []string `json:"adminIds"`
	AutoDeletePreference int8     `json:"autoDeletePreference"`
}

// ChatMemberRespond 成员列表项
type ChatMemberRespond struct {
	UserId    string    `json:"userId"`
	Handle    string    `json:"handle"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar"`
	JoinedAt  time.Time `json:"joinedAt"`
	IsAdmin   bool      `json:"isAdmin"`
	IsCreator bool      `json:"isCreator"`
}

// Package event 定义业务事件的发布接口与事件类型
// 业务层只依赖本包发布事件，不关心投递走本地 channel 还是 Kafka
package event

// 事件类型，随事件信封下发给客户端
const (
	KindNewMessage      = "new_message"      // 新消息
	KindMessageDeleted  = "message_deleted"  // 消息被发送者删除
	KindMessageExpired  = "message_expired"  // 消息被保留策略清除/媒体被消费
	KindReactionUpdated = "reaction_updated" // 回应变更
	KindChatCreated     = "chat_created"     // 新会话（含 request）
	KindChatUpdated     = "chat_updated"     // 会话状态/设置变更
	KindChatDeleted     = "chat_deleted"     // 会话被删除
	KindMemberAdded     = "member_added"     // 成员加入
	KindMemberRemoved   = "member_removed"   // 成员移除/退出
	KindTyping          = "typing"           // 输入状态
	KindRead            = "read"             // 已读游标前移
	KindPresence        = "presence"         // 上下线
)

// Publisher 事件发布接口
// channel 模式由 websocket.Hub 实现，kafka 模式由 mq.KafkaPublisher 实现
type Publisher interface {
	// Publish 向一组用户广播事件，投递是尽力而为的
	Publish(userIds []string, kind string, payload any) error
}

// TypingPayload 输入状态事件内容
type TypingPayload struct {
	ChatId   string `json:"chatId"`
	UserId   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// ReadPayload 已读事件内容
type ReadPayload struct {
	ChatId string `json:"chatId"`
	UserId string `json:"userId"`
	ReadAt string `json:"readAt"`
}

// PresencePayload 上下线事件内容
type PresencePayload struct {
	UserId   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// ChatPayload 会话级事件内容
type ChatPayload struct {
	ChatId string `json:"chatId"`
}

// MemberPayload 成员级事件内容
type MemberPayload struct {
	ChatId string `json:"chatId"`
	UserId string `json:"userId"`
}

// MessageRefPayload 指向单条消息的事件内容
// MessageId 以字符串传输，避免 JavaScript 端精度丢失
type MessageRefPayload struct {
	ChatId    string `json:"chatId"`
	MessageId string `json:"messageId"`
}

package respond

import "time"

// ReactionRespond 消息回应
type ReactionRespond struct {
	UserId string `json:"userId"`
	Emoji  string `json:"emoji"`
}

// MessageRespond 消息列表项
// MessageId/ReplyToId 以字符串传输，避免 JavaScript 端 int64 精度丢失；
// 未消费的媒体消息不下发对象地址，内容需通过 consumeMedia 换取
type MessageRespond struct {
	MessageId string            `json:"messageId"`
	ChatId    string            `json:"chatId"`
	SendId    string            `json:"sendId"`
	Type      int8              `json:"type"`
	Content   string            `json:"content"`
	HasMedia  bool              `json:"hasMedia"`
	ReplyToId string            `json:"replyToId,omitempty"`
	IsRead    bool              `json:"isRead"`
	SendAt    time.Time         `json:"sendAt"`
	Reactions []ReactionRespond `json:"reactions"`
}

// ConsumeMediaRespond 一次性媒体消费结果
// URL 为一次性的带签名下载地址，行改写后不可再次获取
type ConsumeMediaRespond struct {
	MessageId string `json:"messageId"`
	Url       string `json:"url"`
}

// UploadMediaRespond 媒体上传结果
type UploadMediaRespond struct {
	Key string `json:"key"`
}

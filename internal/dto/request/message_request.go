package request

// SendMessageRequest 发送消息
// type: 0 文本，1 图片，2 语音；媒体消息的 url 为上传后拿到的对象 key
// 消息 ID 一律以字符串传输，避免 JavaScript 端 int64 精度丢失
type SendMessageRequest struct {
	ChatId    string `json:"chatId" binding:"required"`
	Type      int8   `json:"type" binding:"min=0,max=2"`
	Content   string `json:"content" binding:"omitempty,max=4000"`
	Url       string `json:"url" binding:"omitempty,max=255"`
	ReplyToId string `json:"replyToId" binding:"omitempty"`
}

// GetMessageListRequest 拉取会话消息
type GetMessageListRequest struct {
	ChatId string `form:"chatId" binding:"required"`
}

// DeleteMessageRequest 删除自己发送的消息
type DeleteMessageRequest struct {
	MessageId string `json:"messageId" binding:"required"`
}

// ConsumeMediaRequest 消费一次性媒体消息
type ConsumeMediaRequest struct {
	MessageId string `json:"messageId" binding:"required"`
}

// ReactRequest 对消息添加表情回应（替换语义）
type ReactRequest struct {
	MessageId string `json:"messageId" binding:"required"`
	Emoji     string `json:"emoji" binding:"required,max=16"`
}

// UnreactRequest 撤销表情回应
type UnreactRequest struct {
	MessageId string `json:"messageId" binding:"required"`
}

// TypingRequest 输入状态信号（ws 入站）
type TypingRequest struct {
	Kind     string `json:"kind"`
	ChatId   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

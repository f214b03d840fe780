package websocket

import "encoding/json"

// Event 下发给客户端的事件信封
// Kind 标识事件类型（new_message / chat_updated / typing 等），
// Payload 为事件内容，原样透传给前端
type Event struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeEvent 序列化事件信封
func EncodeEvent(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Kind: kind, Payload: raw})
}

// InboundHandler 处理客户端上行消息（目前只有输入状态上报）
// 由上层注入，避免 gateway 反向依赖业务层
type InboundHandler func(userId string, data []byte)

// inboundHandler 存储注入的实现
var inboundHandler InboundHandler

// SetInboundHandler 注入上行消息处理器
func SetInboundHandler(h InboundHandler) {
	inboundHandler = h
}

// DisconnectHandler 连接摘除后的回调（用户真正离线时触发）
type DisconnectHandler func(userId string)

// disconnectHandler 存储注入的实现
var disconnectHandler DisconnectHandler

// SetDisconnectHandler 注入离线回调
func SetDisconnectHandler(h DisconnectHandler) {
	disconnectHandler = h
}

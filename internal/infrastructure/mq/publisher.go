package mq

import (
	"context"
	"encoding/json"
	"time"

	ws "vanish_chat_server/internal/gateway/websocket"
	"vanish_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// eventEnvelope Kafka 上的事件信封
// 收件人列表随事件一起上 Kafka，每个实例消费后只投递本地在线者
type eventEnvelope struct {
	UserIds []string        `json:"userIds"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// KafkaPublisher 通过 Kafka 扇出事件的发布器
type KafkaPublisher struct{}

// NewKafkaPublisher 创建 Kafka 事件发布器
func NewKafkaPublisher() *KafkaPublisher {
	return &KafkaPublisher{}
}

// Publish 写事件到 Kafka，由各实例的消费者负责本地投递
func (p *KafkaPublisher) Publish(userIds []string, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "序列化事件内容")
	}
	value, err := json.Marshal(eventEnvelope{
		UserIds: userIds,
		Kind:    kind,
		Payload: raw,
	})
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "序列化事件信封")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// key 用事件类型，同类事件进同一分区保持顺序
	if err := KafkaService.WriteEvent(ctx, []byte(kind), value); err != nil {
		return errorx.Wrap(err, errorx.CodeRetryableIO, "写入事件队列")
	}
	return nil
}

// StartConsumer 消费事件并投递给本地 Hub，ctx 取消时退出
func StartConsumer(ctx context.Context, hub *ws.Hub) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("kafka consumer panic", zap.Any("panic", r))
			}
		}()
		for {
			kafkaMessage, err := KafkaService.EventReader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				zap.L().Error("kafka read failed", zap.Error(err))
				continue
			}
			var envelope eventEnvelope
			if err := json.Unmarshal(kafkaMessage.Value, &envelope); err != nil {
				zap.L().Error("kafka event decode failed", zap.Error(err))
				continue
			}
			data, err := ws.EncodeEvent(envelope.Kind, envelope.Payload)
			if err != nil {
				zap.L().Error("kafka event encode failed", zap.Error(err))
				continue
			}
			hub.Deliver(envelope.UserIds, data)
		}
	}()
}

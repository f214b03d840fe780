// Package mq 提供跨实例的事件扇出
// 多实例部署时事件先写入 Kafka，各实例消费后投递给本地连接；
// 单实例部署（messageMode = channel）不经过本包
package mq

import (
	"context"
	"time"

	myconfig "vanish_chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type kafkaService struct {
	EventWriter *kafka.Writer
	EventReader *kafka.Reader
	KafkaConn   *kafka.Conn
}

// KafkaService 全局 kafka 实例
var KafkaService = new(kafkaService)

// KafkaInit 初始化 kafka 读写器
func (k *kafkaService) KafkaInit() {
	kafkaConfig := myconfig.GetConfig().KafkaConfig
	k.EventWriter = &kafka.Writer{
		Addr:                   kafka.TCP(kafkaConfig.HostPort),
		Topic:                  kafkaConfig.EventTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           kafkaConfig.Timeout * time.Second,
		RequiredAcks:           kafka.RequireNone,
		AllowAutoTopicCreation: false,
	}
	k.EventReader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{kafkaConfig.HostPort},
		Topic:          kafkaConfig.EventTopic,
		CommitInterval: kafkaConfig.Timeout * time.Second,
		GroupID:        "vanish_chat_events",
		StartOffset:    kafka.LastOffset,
	})
}

// KafkaClose 关闭读写器
func (k *kafkaService) KafkaClose() {
	if k.EventWriter != nil {
		if err := k.EventWriter.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
	if k.EventReader != nil {
		if err := k.EventReader.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}
}

// CreateTopic 创建事件 topic，已存在则无操作
func (k *kafkaService) CreateTopic() {
	kafkaConfig := myconfig.GetConfig().KafkaConfig

	var err error
	k.KafkaConn, err = kafka.Dial("tcp", kafkaConfig.HostPort)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}

	topicConfigs := []kafka.TopicConfig{
		{
			Topic:             kafkaConfig.EventTopic,
			NumPartitions:     kafkaConfig.Partition,
			ReplicationFactor: 1,
		},
	}

	if err = k.KafkaConn.CreateTopics(topicConfigs...); err != nil {
		zap.L().Error(err.Error())
	}
}

// WriteEvent 向事件 topic 写入一条消息
func (k *kafkaService) WriteEvent(ctx context.Context, key, value []byte) error {
	return k.EventWriter.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// Package push 提供推送通知中转
// 通过 Expo Push API 做尽力而为投递：失败仅记录日志，绝不向调用方传播，
// 消息发送的成败与推送投递无关
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"vanish_chat_server/internal/config"
	"vanish_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// Sender 推送发送接口
type Sender interface {
	// Send 向单个设备令牌投递通知
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// expoSender Expo Push API 实现
type expoSender struct {
	endpoint string
	client   *http.Client
}

// sender 全局推送实例；未启用时为 noopSender
var sender Sender = noopSender{}

// Init 初始化推送服务
func Init() {
	conf := config.GetConfig().PushConfig
	if !conf.Enabled {
		zap.L().Info("Push delivery disabled by config")
		return
	}
	endpoint := conf.Endpoint
	if endpoint == "" {
		endpoint = "https://exp.host/--/api/v2/push/send"
	}
	sender = &expoSender{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// GetSender 获取推送实例
func GetSender() Sender {
	return sender
}

// expoMessage Expo Push API 请求体
type expoMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

func (e *expoSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	payload, err := json.Marshal(expoMessage{
		To:    token,
		Title: title,
		Body:  body,
		Data:  data,
		Sound: "default",
	})
	if err != nil {
		return errorx.Wrap(err, errorx.CodeRetryableIO, "序列化推送消息")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errorx.Wrap(err, errorx.CodeRetryableIO, "构建推送请求")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeRetryableIO, "推送请求失败")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errorx.Newf(errorx.CodeRetryableIO, "推送服务返回 %d", resp.StatusCode)
	}
	return nil
}

// noopSender 推送未启用时的空实现
type noopSender struct{}

func (noopSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return nil
}

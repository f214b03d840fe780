package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub 维护本实例上的所有在线连接
// 同一用户重复登录时踢掉旧连接，保证单连接在线
type Hub struct {
	clients sync.Map // userId -> *Client
	Login   chan *Client
	Logout  chan *Client
}

// GlobalHub 全局连接管理器
var GlobalHub *Hub

// InitHub 初始化全局 Hub
func InitHub() *Hub {
	GlobalHub = &Hub{
		Login:  make(chan *Client, 16),
		Logout: make(chan *Client, 16),
	}
	return GlobalHub
}

// Start 登录登出事件循环，ctx 取消时退出
func (h *Hub) Start(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("ws hub panic", zap.Any("panic", r))
		}
	}()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.Login:
			if old, loaded := h.clients.Swap(client.Uuid, client); loaded {
				// 旧连接被新登录顶掉
				h.closeClient(old.(*Client))
			}
			zap.L().Info("ws client online", zap.String("user", client.Uuid))
		case client := <-h.Logout:
			// 只有当前注册的连接才摘除，防止新连接被旧连接的退出误删
			if cur, ok := h.clients.Load(client.Uuid); ok && cur.(*Client) == client {
				h.clients.Delete(client.Uuid)
				if disconnectHandler != nil {
					disconnectHandler(client.Uuid)
				}
			}
			h.closeClient(client)
			zap.L().Info("ws client offline", zap.String("user", client.Uuid))
		}
	}
}

func (h *Hub) closeClient(c *Client) {
	defer func() {
		// 重复 close 的兜底
		recover()
	}()
	_ = c.Conn.Close()
	close(c.Send)
}

func (h *Hub) closeAll() {
	h.clients.Range(func(key, value any) bool {
		h.closeClient(value.(*Client))
		h.clients.Delete(key)
		return true
	})
}

// GetClient 获取在线连接，nil 表示不在本实例上
func (h *Hub) GetClient(userId string) *Client {
	if v, ok := h.clients.Load(userId); ok {
		return v.(*Client)
	}
	return nil
}

// Deliver 向一组用户投递已编码的事件，只送达本实例在线者
// 下行通道满时丢弃该用户的这条事件，客户端重连后通过 REST 拉取补齐
func (h *Hub) Deliver(userIds []string, data []byte) {
	for _, uid := range userIds {
		client := h.GetClient(uid)
		if client == nil {
			continue
		}
		select {
		case client.Send <- data:
		default:
			zap.L().Warn("ws send channel full, event dropped", zap.String("user", uid))
		}
	}
}

// Publish 实现事件发布接口（channel 模式下直接本地投递）
func (h *Hub) Publish(userIds []string, kind string, payload any) error {
	data, err := EncodeEvent(kind, payload)
	if err != nil {
		return err
	}
	h.Deliver(userIds, data)
	return nil
}

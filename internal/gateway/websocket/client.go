package websocket

import (
	"net/http"

	"vanish_chat_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client 一条 websocket 连接
type Client struct {
	Conn *websocket.Conn
	Uuid string
	Send chan []byte // 下行通道
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	// 客户端来自移动端应用，不做 Origin 校验
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Read 读取客户端上行消息并交给注入的处理器
func (c *Client) Read(hub *Hub) {
	defer func() {
		hub.Logout <- c
	}()
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			zap.L().Debug("ws read closed", zap.String("user", c.Uuid), zap.Error(err))
			return
		}
		if inboundHandler != nil {
			inboundHandler(c.Uuid, data)
		}
	}
}

// Write 从下行通道读取消息写入 websocket
func (c *Client) Write() {
	for data := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
			zap.L().Debug("ws write closed", zap.String("user", c.Uuid), zap.Error(err))
			return
		}
	}
}

// NewClientInit 升级连接并注册到 Hub
// 由 ws handler 在 JWT 校验通过后调用
func NewClientInit(c *gin.Context, hub *Hub, userId string) error {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("ws upgrade failed", zap.Error(err))
		return err
	}
	client := &Client{
		Conn: conn,
		Uuid: userId,
		Send: make(chan []byte, constants.CHANNEL_SIZE),
	}
	hub.Login <- client
	go client.Read(hub)
	go client.Write()
	return nil
}

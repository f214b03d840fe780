package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vanish_chat_server/internal/config"
	dao "vanish_chat_server/internal/dao/mysql"
	myredis "vanish_chat_server/internal/dao/redis"
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/gateway/websocket"
	"vanish_chat_server/internal/handler"
	"vanish_chat_server/internal/https_server"
	"vanish_chat_server/internal/infrastructure/logger"
	"vanish_chat_server/internal/infrastructure/mq"
	"vanish_chat_server/internal/infrastructure/push"
	"vanish_chat_server/internal/infrastructure/storage"
	"vanish_chat_server/internal/service"
	"vanish_chat_server/internal/service/event"
	"vanish_chat_server/pkg/util/jwt"
	"vanish_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 与雪花节点
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 6. 初始化对象存储与推送
	if err := storage.Init(); err != nil {
		zap.L().Fatal("对象存储初始化失败", zap.Error(err))
	}
	push.Init()
	zap.L().Info("基础设施初始化成功")

	// 7. 初始化 WebSocket Hub 与事件发布器
	// channel 模式下事件直接投递本地 Hub；kafka 模式下经 Kafka 中转，
	// 多实例部署时各实例消费同一事件流，只投递本实例在线者
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.InitHub()
	go hub.Start(ctx)

	var publisher event.Publisher
	if conf.KafkaConfig.MessageMode == "kafka" {
		mq.KafkaService.KafkaInit()
		mq.KafkaService.CreateTopic()
		publisher = mq.NewKafkaPublisher()
		mq.StartConsumer(ctx, hub)
	} else {
		publisher = hub
	}
	zap.L().Info("事件通道初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 8. 初始化 Service 层 (依赖注入)
	service.InitServices(dao.Repos, myredis.GetCacheService(), publisher, storage.GetStorage(), push.GetSender())
	zap.L().Info("Service 层初始化成功")

	// 9. 注入网关回调
	// 上行消息只有轻量信号（typing / heartbeat），解码失败直接丢弃
	websocket.SetInboundHandler(func(userId string, data []byte) {
		var req request.TypingRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		switch req.Kind {
		case "typing":
			_ = service.Svc.Presence.Typing(userId, req)
		case "heartbeat":
			_ = service.Svc.Presence.Heartbeat(userId)
		}
	})
	websocket.SetDisconnectHandler(func(userId string) {
		_ = service.Svc.Presence.SetOffline(userId)
	})

	// 10. 初始化翻译器与 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}
	handlers := handler.NewHandlers(service.Svc, storage.GetStorage(), hub)
	engine := https_server.Init(handlers)
	zap.L().Info("HTTP 服务器初始化成功")

	// 11. 启动后台清理任务
	go service.Svc.Retention.Run(ctx)

	// 12. 启动服务
	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	<-quit
	zap.L().Info("关闭服务器...")

	cancel()
	if conf.KafkaConfig.MessageMode == "kafka" {
		mq.KafkaService.KafkaClose()
	}

	zap.L().Info("服务器已关闭")
}

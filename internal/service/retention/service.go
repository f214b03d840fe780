package retention

import (
	"context"
	"strconv"
	"time"

	"vanish_chat_server/internal/config"
	"vanish_chat_server/internal/dao/mysql/repository"
	myredis "vanish_chat_server/internal/dao/redis"
	"vanish_chat_server/internal/dto/respond"
	"vanish_chat_server/internal/infrastructure/storage"
	"vanish_chat_server/internal/model"
	"vanish_chat_server/internal/service/event"
	"vanish_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// retentionService 消失内容策略业务实现
type retentionService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	publisher event.Publisher
	store     storage.ObjectStorage
}

// NewRetentionService 构造函数，注入所有依赖
func NewRetentionService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	publisher event.Publisher,
	store storage.ObjectStorage,
) *retentionService {
	return &retentionService{
		repos:     repos,
		cache:     cache,
		publisher: publisher,
		store:     store,
	}
}

// removeMessageTx 事务内删除单条消息及其关联数据
// 顺序固定：先置空指向它的回复引用，再删回应，最后删消息本身，
// 保证任何时刻都不存在指向已删除消息的引用
func removeMessageTx(tx *repository.Repositories, message *model.Message) error {
	if err := tx.Message.NullReplyRefs(message.Uuid); err != nil {
		return err
	}
	if err := tx.Reaction.DeleteByMessageUuid(message.Uuid); err != nil {
		return err
	}
	return tx.Message.DeleteByUuid(message.Uuid)
}

// SweepOnCloseTx 事务内清除会话中的已读消息（on-close 偏好）
// 由 lifecycle 在关闭会话的会话锁事务中调用
// 返回待清理的媒体对象 key 与清除条数
func SweepOnCloseTx(tx *repository.Repositories, chat *model.ChatInfo) ([]string, int, error) {
	messages, err := tx.Message.FindReadByChat(chat.Uuid)
	if err != nil {
		return nil, 0, err
	}
	var keys []string
	removed := 0
	for i := range messages {
		message := &messages[i]
		if err := removeMessageTx(tx, message); err != nil {
			return nil, 0, err
		}
		if message.Url != "" {
			keys = append(keys, message.Url)
		}
		removed++
	}
	return keys, removed, nil
}

// ConsumeMedia 消费一次性媒体消息
// 返回带签名的一次性下载地址，消息行原地改写为 system 占位；
// 改写后再次消费返回 NotFound，与从未存在过的消息不可区分
func (s *retentionService) ConsumeMedia(callerId, messageId string) (*respond.ConsumeMediaRespond, error) {
	uuid, err := strconv.ParseInt(messageId, 10, 64)
	if err != nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "无效的消息ID")
	}

	// 1. 锁外预检，把明显无效的请求挡在会话锁之前
	message, err := s.repos.Message.FindByUuid(uuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.ErrNotFound
		}
		zap.L().Error("查询媒体消息失败", zap.Int64("message_id", uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if _, err := s.repos.Member.FindByChatAndUser(message.ChatUuid, callerId); err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotAuthorized, "您不是该会话成员")
		}
		return nil, errorx.ErrServerBusy
	}
	if message.SendId == callerId {
		return nil, errorx.New(errorx.CodeNotAuthorized, "发送者不能消费自己的媒体消息")
	}

	// 2. 会话锁内改写，并发消费只有一个赢家
	var signedURL string
	var objectKey string
	err = s.repos.ChatTransaction(message.ChatUuid, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		current, err := tx.Message.FindByUuid(uuid)
		if err != nil {
			return err
		}
		if !current.IsOneTimeMedia() {
			// 已被并发消费或已被清理
			return errorx.ErrNotFound
		}
		signedURL, err = s.store.SignedURL(current.Url)
		if err != nil {
			return err
		}
		objectKey = current.Url
		return tx.Message.RewriteAsSystem(uuid, PlaceholderFor(current.Type))
	})
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.ErrNotFound
		}
		zap.L().Error("消费媒体消息失败", zap.Int64("message_id", uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 3. 签名地址过期后清理对象，行改写先行，对象清理尽力而为
	s.scheduleObjectDelete(objectKey)

	// 4. 通知会话成员该消息已变为占位
	if members, err := s.repos.Member.FindByChatUuid(message.ChatUuid); err == nil {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserUuid)
		}
		if err := s.publisher.Publish(ids, event.KindMessageExpired, event.MessageRefPayload{
			ChatId:    message.ChatUuid,
			MessageId: messageId,
		}); err != nil {
			zap.L().Warn("发布媒体消费事件失败", zap.Error(err))
		}
	}

	zap.L().Info("一次性媒体已消费",
		zap.Int64("message_id", uuid),
		zap.String("caller_id", callerId),
	)
	return &respond.ConsumeMediaRespond{MessageId: messageId, Url: signedURL}, nil
}

// scheduleObjectDelete 在签名地址过期后删除对象
func (s *retentionService) scheduleObjectDelete(key string) {
	if key == "" {
		return
	}
	grace := time.Duration(config.GetConfig().StorageConfig.SignExpiryMin) * time.Minute
	if grace <= 0 {
		grace = 15 * time.Minute
	}
	go func() {
		time.Sleep(grace)
		if err := s.store.Delete(context.Background(), key); err != nil {
			zap.L().Warn("清理已消费媒体对象失败", zap.String("key", key), zap.Error(err))
		}
	}()
}

// SweepOnce 对配置了时间窗口的会话执行一轮过期清理
// 每个会话单独开会话锁事务，单个会话出错不影响其余会话
func (s *retentionService) SweepOnce(ctx context.Context) error {
	chats, err := s.repos.Chat.FindByAutoDeletePrefs([]int8{model.AutoDelete24h, model.AutoDelete7d})
	if err != nil {
		zap.L().Error("查询待清理会话失败", zap.Error(err))
		return errorx.Wrap(err, errorx.CodeRetryableIO, "查询待清理会话")
	}

	batchSize := config.GetConfig().RetentionConfig.SweepBatchSize
	for i := range chats {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.sweepChat(chats[i].Uuid, batchSize); err != nil {
			zap.L().Error("清理会话过期消息失败",
				zap.String("chat_id", chats[i].Uuid),
				zap.Error(err),
			)
		}
	}
	return nil
}

// sweepChat 清理单个会话中超出保留窗口的消息
func (s *retentionService) sweepChat(chatUuid string, batchSize int) error {
	var keys []string
	removed := 0
	err := s.repos.ChatTransaction(chatUuid, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		// 偏好以锁内读到的为准，避免清理与偏好修改竞争
		cutoff, ok := CutoffFor(chat.AutoDeletePreference, time.Now())
		if !ok {
			return nil
		}
		messages, err := tx.Message.FindOlderThan(chatUuid, cutoff, batchSize)
		if err != nil {
			return err
		}
		for i := range messages {
			message := &messages[i]
			if err := removeMessageTx(tx, message); err != nil {
				return err
			}
			if message.Url != "" {
				keys = append(keys, message.Url)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return err
	}
	if removed == 0 {
		return nil
	}

	// 对象清理与事件通知在事务提交后进行
	for _, key := range keys {
		if err := s.store.Delete(context.Background(), key); err != nil {
			zap.L().Warn("清理过期媒体对象失败", zap.String("key", key), zap.Error(err))
		}
	}
	if members, err := s.repos.Member.FindByChatUuid(chatUuid); err == nil {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserUuid)
			uid := m.UserUuid
			s.cache.SubmitTask(func() {
				if err := s.cache.Delete(context.Background(), "chat_list_"+uid); err != nil {
					zap.L().Error("清除会话列表缓存失败", zap.Error(err))
				}
			})
		}
		if err := s.publisher.Publish(ids, event.KindMessageExpired, event.ChatPayload{ChatId: chatUuid}); err != nil {
			zap.L().Warn("发布消息过期事件失败", zap.Error(err))
		}
	}
	zap.L().Info("会话过期消息已清理",
		zap.String("chat_id", chatUuid),
		zap.Int("removed", removed),
	)
	return nil
}

// Run 后台清理循环
// 启动时先清理一轮，此后按配置间隔周期执行，ctx 取消时退出
func (s *retentionService) Run(ctx context.Context) {
	interval := time.Duration(config.GetConfig().RetentionConfig.SweepIntervalMin) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	zap.L().Info("Retention sweeper started", zap.Duration("interval", interval))

	if err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
		zap.L().Error("retention sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Retention sweeper stopped")
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				zap.L().Error("retention sweep failed", zap.Error(err))
			}
		}
	}
}

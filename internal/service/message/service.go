// Package message 实现消息收发、删除与表情回应业务
package message

import (
	"context"
	"strconv"
	"time"

	"vanish_chat_server/internal/dao/mysql/repository"
	myredis "vanish_chat_server/internal/dao/redis"
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/dto/respond"
	"vanish_chat_server/internal/infrastructure/push"
	"vanish_chat_server/internal/infrastructure/storage"
	"vanish_chat_server/internal/model"
	"vanish_chat_server/internal/service/event"
	"vanish_chat_server/internal/service/lifecycle"
	"vanish_chat_server/pkg/errorx"
	"vanish_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// OnlineChecker 在线状态查询接口，由 presence 服务实现
// 离线成员走推送通道，在线成员走 websocket 事件
type OnlineChecker interface {
	IsOnline(userId string) (bool, error)
}

// messageService 消息业务实现
type messageService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	publisher event.Publisher
	store     storage.ObjectStorage
	push      push.Sender
	online    OnlineChecker
}

// NewMessageService 构造函数，注入所有依赖
func NewMessageService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	publisher event.Publisher,
	store storage.ObjectStorage,
	sender push.Sender,
	online OnlineChecker,
) *messageService {
	return &messageService{
		repos:     repos,
		cache:     cache,
		publisher: publisher,
		store:     store,
		push:      sender,
		online:    online,
	}
}

func (s *messageService) requireMember(chatId, userId string) (*model.ChatMember, error) {
	member, err := s.repos.Member.FindByChatAndUser(chatId, userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotAuthorized, "您不是该会话成员")
		}
		zap.L().Error("查询成员关系失败", zap.String("chat_id", chatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return member, nil
}

func (s *messageService) clearChatListCache(userIds []string) {
	s.cache.SubmitTask(func() {
		for _, uid := range userIds {
			if err := s.cache.Delete(context.Background(), "chat_list_"+uid); err != nil {
				zap.L().Error("清除会话列表缓存失败", zap.String("user_id", uid), zap.Error(err))
			}
		}
	})
}

// parseMessageId 解析字符串形式的雪花 ID
func parseMessageId(messageId string) (int64, error) {
	uuid, err := strconv.ParseInt(messageId, 10, 64)
	if err != nil {
		return 0, errorx.New(errorx.CodeInvalidParam, "无效的消息ID")
	}
	return uuid, nil
}

// SendMessage 发送消息
// request 状态只有发起方能发；媒体消息只存对象 key，不透出地址
func (s *messageService) SendMessage(callerId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	if _, err := s.requireMember(req.ChatId, callerId); err != nil {
		return nil, err
	}

	// 1. 按类型校验内容
	switch req.Type {
	case model.MessageTypeText:
		if req.Content == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
		}
	case model.MessageTypeImage, model.MessageTypeAudio:
		if req.Url == "" {
			return nil, errorx.New(errorx.CodeInvalidParam, "媒体消息缺少对象key")
		}
	default:
		return nil, errorx.New(errorx.CodeInvalidParam, "不支持的消息类型")
	}

	var replyTo int64
	if req.ReplyToId != "" {
		var err error
		if replyTo, err = parseMessageId(req.ReplyToId); err != nil {
			return nil, err
		}
	}

	// 2. 会话锁内写入，发送与状态变更、清理互斥
	message := &model.Message{
		Uuid:     snowflake.GenerateID(),
		ChatUuid: req.ChatId,
		SendId:   callerId,
		Type:     req.Type,
		Content:  req.Content,
		Url:      req.Url,
		SendAt:   time.Now(),
	}
	err := s.repos.ChatTransaction(req.ChatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		if err := lifecycle.CheckSend(chat, callerId); err != nil {
			return err
		}
		if replyTo != 0 {
			// 回复引用创建时必须有效，之后目标被删会被置空
			target, err := tx.Message.FindByUuid(replyTo)
			if err != nil {
				if errorx.GetCode(err) == errorx.CodeNotFound {
					return errorx.New(errorx.CodeInvalidParam, "回复的消息不存在")
				}
				return err
			}
			if target.ChatUuid != req.ChatId {
				return errorx.New(errorx.CodeInvalidParam, "不能回复其他会话的消息")
			}
			message.ReplyToId.Int64 = replyTo
			message.ReplyToId.Valid = true
		}
		return tx.Message.Create(message)
	})
	if err != nil {
		switch errorx.GetCode(err) {
		case errorx.CodeInvalidParam, errorx.CodeInvalidTransition:
			return nil, err
		}
		zap.L().Error("发送消息失败", zap.String("chat_id", req.ChatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 3. 广播事件，离线成员走推送
	s.notifyNewMessage(callerId, message)

	rsp := buildMessageRespond(message, nil)
	return &rsp, nil
}

// notifyNewMessage 新消息的事件广播与离线推送
func (s *messageService) notifyNewMessage(callerId string, message *model.Message) {
	members, err := s.repos.Member.FindByChatUuid(message.ChatUuid)
	if err != nil {
		zap.L().Error("查询会话成员失败", zap.String("chat_id", message.ChatUuid), zap.Error(err))
		return
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserUuid)
	}
	if err := s.publisher.Publish(ids, event.KindNewMessage, event.MessageRefPayload{
		ChatId:    message.ChatUuid,
		MessageId: strconv.FormatInt(message.Uuid, 10),
	}); err != nil {
		zap.L().Warn("发布新消息事件失败", zap.Error(err))
	}
	s.clearChatListCache(ids)

	// 推送在后台进行，不阻塞发送方
	s.cache.SubmitTask(func() {
		sender, err := s.repos.User.FindByUuid(callerId)
		if err != nil {
			return
		}
		body := message.Content
		switch message.Type {
		case model.MessageTypeImage:
			body = "[Photo]"
		case model.MessageTypeAudio:
			body = "[Voice message]"
		}
		for _, uid := range ids {
			if uid == callerId {
				continue
			}
			online, err := s.online.IsOnline(uid)
			if err != nil || online {
				continue
			}
			recipient, err := s.repos.User.FindByUuid(uid)
			if err != nil || recipient.PushToken == "" {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := s.push.Send(ctx, recipient.PushToken, sender.Nickname, body, map[string]string{
				"chatId": message.ChatUuid,
			}); err != nil {
				zap.L().Warn("推送投递失败", zap.String("user_id", uid), zap.Error(err))
			}
			cancel()
		}
	})
}

// GetMessageList 拉取会话消息
// 只返回加入之后发送的消息；未消费的媒体不下发对象地址
func (s *messageService) GetMessageList(callerId, chatId string) ([]respond.MessageRespond, error) {
	member, err := s.requireMember(chatId, callerId)
	if err != nil {
		return nil, err
	}
	messages, err := s.repos.Message.FindVisibleByChat(chatId, member.JoinedAt)
	if err != nil {
		zap.L().Error("查询消息列表失败", zap.String("chat_id", chatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 批量取回应，按消息归组
	uuids := make([]int64, 0, len(messages))
	for i := range messages {
		uuids = append(uuids, messages[i].Uuid)
	}
	reactions, err := s.repos.Reaction.FindByMessageUuids(uuids)
	if err != nil {
		zap.L().Error("查询消息回应失败", zap.String("chat_id", chatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	grouped := make(map[int64][]respond.ReactionRespond, len(reactions))
	for _, r := range reactions {
		grouped[r.MessageUuid] = append(grouped[r.MessageUuid], respond.ReactionRespond{
			UserId: r.UserUuid,
			Emoji:  r.Emoji,
		})
	}

	list := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		list = append(list, buildMessageRespond(&messages[i], grouped[messages[i].Uuid]))
	}
	return list, nil
}

// buildMessageRespond 组装消息响应，媒体只透出 hasMedia 标记
func buildMessageRespond(message *model.Message, reactions []respond.ReactionRespond) respond.MessageRespond {
	if reactions == nil {
		reactions = []respond.ReactionRespond{}
	}
	rsp := respond.MessageRespond{
		MessageId: strconv.FormatInt(message.Uuid, 10),
		ChatId:    message.ChatUuid,
		SendId:    message.SendId,
		Type:      message.Type,
		Content:   message.Content,
		HasMedia:  message.IsOneTimeMedia(),
		IsRead:    message.IsRead,
		SendAt:    message.SendAt,
		Reactions: reactions,
	}
	if message.ReplyToId.Valid {
		rsp.ReplyToId = strconv.FormatInt(message.ReplyToId.Int64, 10)
	}
	return rsp
}

// DeleteMessage 删除自己发送的消息
// 指向它的回复引用先置空再删行，保证不存在悬空引用
func (s *messageService) DeleteMessage(callerId, messageId string) error {
	uuid, err := parseMessageId(messageId)
	if err != nil {
		return err
	}
	message, err := s.repos.Message.FindByUuid(uuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.ErrNotFound
		}
		return errorx.ErrServerBusy
	}
	if message.SendId != callerId {
		return errorx.New(errorx.CodeNotAuthorized, "只能删除自己发送的消息")
	}

	var mediaKey string
	err = s.repos.ChatTransaction(message.ChatUuid, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		current, err := tx.Message.FindByUuid(uuid)
		if err != nil {
			return err
		}
		mediaKey = current.Url
		if err := tx.Message.NullReplyRefs(uuid); err != nil {
			return err
		}
		if err := tx.Reaction.DeleteByMessageUuid(uuid); err != nil {
			return err
		}
		return tx.Message.DeleteByUuid(uuid)
	})
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.ErrNotFound
		}
		zap.L().Error("删除消息失败", zap.Int64("message_id", uuid), zap.Error(err))
		return errorx.ErrServerBusy
	}

	if mediaKey != "" {
		go func() {
			if err := s.store.Delete(context.Background(), mediaKey); err != nil {
				zap.L().Warn("清理媒体对象失败", zap.String("key", mediaKey), zap.Error(err))
			}
		}()
	}
	if members, err := s.repos.Member.FindByChatUuid(message.ChatUuid); err == nil {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserUuid)
		}
		if err := s.publisher.Publish(ids, event.KindMessageDeleted, event.MessageRefPayload{
			ChatId:    message.ChatUuid,
			MessageId: messageId,
		}); err != nil {
			zap.L().Warn("发布消息删除事件失败", zap.Error(err))
		}
		s.clearChatListCache(ids)
	}
	zap.L().Info("消息已删除", zap.Int64("message_id", uuid), zap.String("caller_id", callerId))
	return nil
}

// React 添加表情回应
// 替换语义：同一用户对同一消息只保留最新的一个回应
func (s *messageService) React(callerId string, req request.ReactRequest) error {
	uuid, err := parseMessageId(req.MessageId)
	if err != nil {
		return err
	}
	message, err := s.repos.Message.FindByUuid(uuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.ErrNotFound
		}
		return errorx.ErrServerBusy
	}
	if _, err := s.requireMember(message.ChatUuid, callerId); err != nil {
		return err
	}

	// 会话锁内做删旧插新，并发回应不会残留两条
	err = s.repos.ChatTransaction(message.ChatUuid, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		if _, err := tx.Message.FindByUuid(uuid); err != nil {
			return err
		}
		if err := tx.Reaction.DeleteByMessageAndUser(uuid, callerId); err != nil {
			return err
		}
		return tx.Reaction.Create(&model.MessageReaction{
			MessageUuid: uuid,
			UserUuid:    callerId,
			Emoji:       req.Emoji,
		})
	})
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.ErrNotFound
		}
		zap.L().Error("添加回应失败", zap.Int64("message_id", uuid), zap.Error(err))
		return errorx.ErrServerBusy
	}

	s.notifyReaction(message.ChatUuid, req.MessageId)
	return nil
}

// Unreact 撤销表情回应，无回应时幂等返回
func (s *messageService) Unreact(callerId string, req request.UnreactRequest) error {
	uuid, err := parseMessageId(req.MessageId)
	if err != nil {
		return err
	}
	message, err := s.repos.Message.FindByUuid(uuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.ErrNotFound
		}
		return errorx.ErrServerBusy
	}
	if _, err := s.requireMember(message.ChatUuid, callerId); err != nil {
		return err
	}
	if err := s.repos.Reaction.DeleteByMessageAndUser(uuid, callerId); err != nil {
		zap.L().Error("撤销回应失败", zap.Int64("message_id", uuid), zap.Error(err))
		return errorx.ErrServerBusy
	}

	s.notifyReaction(message.ChatUuid, req.MessageId)
	return nil
}

func (s *messageService) notifyReaction(chatId, messageId string) {
	members, err := s.repos.Member.FindByChatUuid(chatId)
	if err != nil {
		return
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserUuid)
	}
	if err := s.publisher.Publish(ids, event.KindReactionUpdated, event.MessageRefPayload{
		ChatId:    chatId,
		MessageId: messageId,
	}); err != nil {
		zap.L().Warn("发布回应变更事件失败", zap.Error(err))
	}
}

package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"vanish_chat_server/internal/dao/mysql/repository"
	myredis "vanish_chat_server/internal/dao/redis"
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/dto/respond"
	"vanish_chat_server/internal/infrastructure/storage"
	"vanish_chat_server/internal/model"
	"vanish_chat_server/internal/service/event"
	"vanish_chat_server/internal/service/retention"
	"vanish_chat_server/pkg/constants"
	"vanish_chat_server/pkg/errorx"
	"vanish_chat_server/pkg/util/random"
	"vanish_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// OnlineChecker 在线状态查询接口，由 presence 服务实现
type OnlineChecker interface {
	IsOnline(userId string) (bool, error)
}

// lifecycleService 会话生命周期业务实现
type lifecycleService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	publisher event.Publisher
	store     storage.ObjectStorage
	online    OnlineChecker
}

// NewLifecycleService 构造函数，注入所有依赖
func NewLifecycleService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	publisher event.Publisher,
	store storage.ObjectStorage,
	online OnlineChecker,
) *lifecycleService {
	return &lifecycleService{
		repos:     repos,
		cache:     cache,
		publisher: publisher,
		store:     store,
		online:    online,
	}
}

// requireMember 成员资格校验，非成员一律返回无权限
func (s *lifecycleService) requireMember(chatId, userId string) (*model.ChatMember, error) {
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

// clearChatListCache 异步清理会话列表缓存
func (s *lifecycleService) clearChatListCache(userIds ...string) {
	s.cache.SubmitTask(func() {
		for _, uid := range userIds {
			if err := s.cache.Delete(context.Background(), "chat_list_"+uid); err != nil {
				zap.L().Error("清除会话列表缓存失败", zap.String("user_id", uid), zap.Error(err))
			}
		}
	})
}

// deleteMediaObjects 异步清理对象存储中的媒体文件，失败仅记日志
func (s *lifecycleService) deleteMediaObjects(keys []string) {
	if len(keys) == 0 {
		return
	}
	go func() {
		for _, key := range keys {
			if err := s.store.Delete(context.Background(), key); err != nil {
				zap.L().Warn("清理媒体对象失败", zap.String("key", key), zap.Error(err))
			}
		}
	}()
}

// purgeChatTx 事务内清除会话及其全部消息、回应与成员记录
// 返回待清理的媒体对象 key，对象删除在事务提交后进行
func purgeChatTx(tx *repository.Repositories, chatUuid string) ([]string, error) {
	keys, err := tx.Message.FindMediaKeysByChat(chatUuid)
	if err != nil {
		return nil, err
	}
	if err := tx.Reaction.DeleteByChatUuid(chatUuid); err != nil {
		return nil, err
	}
	if err := tx.Message.DeleteByChatUuid(chatUuid); err != nil {
		return nil, err
	}
	if err := tx.Member.DeleteByChatUuid(chatUuid); err != nil {
		return nil, err
	}
	if err := tx.Chat.SoftDeleteByUuid(chatUuid); err != nil {
		return nil, err
	}
	return keys, nil
}

func memberIds(members []model.ChatMember) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserUuid)
	}
	return ids
}

// CreateDirectChat 创建单聊
// 与目标用户已有会话时直接复用；全新会话以 request 状态落库，
// 在对方接受前对对方不可见
func (s *lifecycleService) CreateDirectChat(callerId string, req request.CreateDirectChatRequest) (*respond.GetChatInfoRespond, error) {
	if req.TargetId == callerId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能和自己创建会话")
	}

	// 1. 目标用户必须存在
	target, err := s.repos.User.FindByUuid(req.TargetId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "目标用户不存在")
		}
		zap.L().Error("查询目标用户失败", zap.String("target_id", req.TargetId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 2. 幂等：已有会话直接复用
	existing, err := s.repos.Chat.FindDirectChatBetween(callerId, req.TargetId)
	if err == nil {
		if existing.Status == model.ChatStatusBlocked {
			return nil, errorx.New(errorx.CodeInvalidTransition, "无法向该用户发起会话")
		}
		return s.buildChatInfoRespond(existing, callerId)
	}
	if errorx.GetCode(err) != errorx.CodeNotFound {
		zap.L().Error("查询已有单聊失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 3. 创建会话与两条成员记录
	now := time.Now()
	chat := &model.ChatInfo{
		Uuid:      fmt.Sprintf("C%s", random.GetNowAndLenRandomString(13)),
		IsGroup:   false,
		CreatedBy: callerId,
		Status:    model.ChatStatusRequest,
	}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Chat.Create(chat); err != nil {
			return err
		}
		for _, uid := range []string{callerId, req.TargetId} {
			if err := tx.Member.Create(&model.ChatMember{
				ChatUuid: chat.Uuid,
				UserUuid: uid,
				JoinedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("创建单聊失败",
			zap.String("caller_id", callerId),
			zap.String("target_id", req.TargetId),
			zap.Error(err),
		)
		return nil, errorx.ErrServerBusy
	}

	// 4. request 在对方收到消息前不可见，事件只发给发起方
	if err := s.publisher.Publish([]string{callerId}, event.KindChatCreated, event.ChatPayload{ChatId: chat.Uuid}); err != nil {
		zap.L().Warn("发布会话创建事件失败", zap.Error(err))
	}
	s.clearChatListCache(callerId)

	zap.L().Info("单聊创建成功",
		zap.String("chat_id", chat.Uuid),
		zap.String("caller_id", callerId),
		zap.String("target_id", req.TargetId),
	)
	return &respond.GetChatInfoRespond{
		ChatId:               chat.Uuid,
		IsGroup:              false,
		Name:                 target.Nickname,
		Avatar:               target.Avatar,
		Status:               chat.Status,
		CreatedBy:            callerId,
		AdminIds:             []string{},
		AutoDeletePreference: chat.AutoDeletePreference,
	}, nil
}

// CreateGroupChat 创建群聊
// 群聊没有请求流程，创建即 active；创建者为永久管理员
func (s *lifecycleService) CreateGroupChat(callerId string, req request.CreateGroupChatRequest) (*respond.GetChatInfoRespond, error) {
	// 1. 去重并确保创建者在成员列表中
	seen := map[string]bool{callerId: true}
	members := []string{callerId}
	for _, uid := range req.MemberIds {
		if !seen[uid] {
			seen[uid] = true
			members = append(members, uid)
		}
	}

	// 2. 校验成员都存在
	users, err := s.repos.User.FindByUuids(members)
	if err != nil {
		zap.L().Error("批量查询群成员失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if len(users) != len(members) {
		return nil, errorx.New(errorx.CodeNotFound, "部分成员不存在")
	}

	// 3. 创建群与成员记录
	now := time.Now()
	chat := &model.ChatInfo{
		Uuid:      fmt.Sprintf("C%s", random.GetNowAndLenRandomString(13)),
		IsGroup:   true,
		Name:      req.Name,
		Avatar:    req.Avatar,
		CreatedBy: callerId,
		Status:    model.ChatStatusActive,
	}
	if err := chat.SetAdminList([]string{callerId}); err != nil {
		return nil, errorx.ErrServerBusy
	}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Chat.Create(chat); err != nil {
			return err
		}
		for _, uid := range members {
			if err := tx.Member.Create(&model.ChatMember{
				ChatUuid: chat.Uuid,
				UserUuid: uid,
				JoinedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("创建群聊失败", zap.String("caller_id", callerId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if err := s.publisher.Publish(members, event.KindChatCreated, event.ChatPayload{ChatId: chat.Uuid}); err != nil {
		zap.L().Warn("发布群聊创建事件失败", zap.Error(err))
	}
	s.clearChatListCache(members...)

	zap.L().Info("群聊创建成功",
		zap.String("chat_id", chat.Uuid),
		zap.String("caller_id", callerId),
		zap.Int("member_count", len(members)),
	)
	return &respond.GetChatInfoRespond{
		ChatId:               chat.Uuid,
		IsGroup:              true,
		Name:                 chat.Name,
		Avatar:               chat.Avatar,
		Status:               chat.Status,
		CreatedBy:            callerId,
		AdminIds:             []string{callerId},
		AutoDeletePreference: chat.AutoDeletePreference,
	}, nil
}

// AcceptRequest 接受会话请求，request -> active
// 已是 active 时幂等返回成功
func (s *lifecycleService) AcceptRequest(callerId, chatId string) error {
	if _, err := s.requireMember(chatId, callerId); err != nil {
		return err
	}
	var changed bool
	err := s.repos.ChatTransaction(chatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		ok, err := CheckAccept(chat, callerId)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		changed = true
		return tx.Chat.UpdateStatus(chatId, model.ChatStatusActive)
	})
	if err != nil {
		if errorx.IsCode(err, errorx.CodeInvalidTransition) || errorx.IsCode(err, errorx.CodeInvalidParam) {
			return err
		}
		zap.L().Error("接受会话请求失败", zap.String("chat_id", chatId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if !changed {
		return nil
	}

	members, err := s.repos.Member.FindByChatUuid(chatId)
	if err == nil {
		ids := memberIds(members)
		if err := s.publisher.Publish(ids, event.KindChatUpdated, event.ChatPayload{ChatId: chatId}); err != nil {
			zap.L().Warn("发布会话更新事件失败", zap.Error(err))
		}
		s.clearChatListCache(ids...)
	}
	zap.L().Info("会话请求已接受", zap.String("chat_id", chatId), zap.String("caller_id", callerId))
	return nil
}

// RejectRequest 拒绝会话请求
// 拒绝即整体清除：会话、消息、回应、成员与媒体对象全部删除
func (s *lifecycleService) RejectRequest(callerId, chatId string) error {
	if _, err := s.requireMember(chatId, callerId); err != nil {
		return err
	}
	var mediaKeys []string
	var ids []string
	err := s.repos.ChatTransaction(chatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		if err := CheckReject(chat, callerId); err != nil {
			return err
		}
		members, err := tx.Member.FindByChatUuid(chatId)
		if err != nil {
			return err
		}
		ids = memberIds(members)
		mediaKeys, err = purgeChatTx(tx, chatId)
		return err
	})
	if err != nil {
		if errorx.IsCode(err, errorx.CodeInvalidTransition) || errorx.IsCode(err, errorx.CodeInvalidParam) {
			return err
		}
		zap.L().Error("拒绝会话请求失败", zap.String("chat_id", chatId), zap.Error(err))
		return errorx.ErrServerBusy
	}

	s.deleteMediaObjects(mediaKeys)
	if err := s.publisher.Publish(ids, event.KindChatDeleted, event.ChatPayload{ChatId: chatId}); err != nil {
		zap.L().Warn("发布会话删除事件失败", zap.Error(err))
	}
	s.clearChatListCache(ids...)
	zap.L().Info("会话请求已拒绝并清除", zap.String("chat_id", chatId), zap.String("caller_id", callerId))
	return nil
}

// CloseChat 关闭会话
// 发起方关闭尚无消息的 request 会话时整体清除；
// 偏好为 on-close 时清除已读消息；其余情况仅是客户端侧关闭，无副作用
func (s *lifecycleService) CloseChat(callerId, chatId string) error {
	if _, err := s.requireMember(chatId, callerId); err != nil {
		return err
	}
	var (
		mediaKeys []string
		purged    bool
		removed   int
		ids       []string
	)
	err := s.repos.ChatTransaction(chatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		members, err := tx.Member.FindByChatUuid(chatId)
		if err != nil {
			return err
		}
		ids = memberIds(members)

		count, err := tx.Message.CountByChatUuid(chatId)
		if err != nil {
			return err
		}
		if IsEmptyRequestCloseByCreator(chat, callerId, count) {
			purged = true
			mediaKeys, err = purgeChatTx(tx, chatId)
			return err
		}
		if chat.AutoDeletePreference == model.AutoDeleteOnClose {
			mediaKeys, removed, err = retention.SweepOnCloseTx(tx, chat)
			return err
		}
		return nil
	})
	if err != nil {
		zap.L().Error("关闭会话失败", zap.String("chat_id", chatId), zap.Error(err))
		return errorx.ErrServerBusy
	}

	s.deleteMediaObjects(mediaKeys)
	if purged {
		if err := s.publisher.Publish(ids, event.KindChatDeleted, event.ChatPayload{ChatId: chatId}); err != nil {
			zap.L().Warn("发布会话删除事件失败", zap.Error(err))
		}
		s.clearChatListCache(ids...)
		zap.L().Info("空请求会话已清除", zap.String("chat_id", chatId), zap.String("caller_id", callerId))
		return nil
	}
	if removed > 0 {
		if err := s.publisher.Publish(ids, event.KindMessageExpired, event.ChatPayload{ChatId: chatId}); err != nil {
			zap.L().Warn("发布消息过期事件失败", zap.Error(err))
		}
		s.clearChatListCache(ids...)
		zap.L().Info("关闭会话触发已读消息清理",
			zap.String("chat_id", chatId),
			zap.Int("removed", removed),
		)
	}
	return nil
}

// BlockChat 拉黑会话，终态
func (s *lifecycleService) BlockChat(callerId, chatId string) error {
	if _, err := s.requireMember(chatId, callerId); err != nil {
		return err
	}
	var changed bool
	err := s.repos.ChatTransaction(chatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		ok, err := CheckBlock(chat)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		changed = true
		return tx.Chat.UpdateStatus(chatId, model.ChatStatusBlocked)
	})
	if err != nil {
		if errorx.IsCode(err, errorx.CodeInvalidParam) {
			return err
		}
		zap.L().Error("拉黑会话失败", zap.String("chat_id", chatId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if !changed {
		return nil
	}

	members, err := s.repos.Member.FindByChatUuid(chatId)
	if err == nil {
		ids := memberIds(members)
		if err := s.publisher.Publish(ids, event.KindChatUpdated, event.ChatPayload{ChatId: chatId}); err != nil {
			zap.L().Warn("发布会话更新事件失败", zap.Error(err))
		}
		s.clearChatListCache(ids...)
	}
	zap.L().Info("会话已拉黑", zap.String("chat_id", chatId), zap.String("caller_id", callerId))
	return nil
}

// DeleteChat 删除会话及其全部数据
func (s *lifecycleService) DeleteChat(callerId, chatId string) error {
	if _, err := s.requireMember(chatId, callerId); err != nil {
		return err
	}
	var mediaKeys []string
	var ids []string
	err := s.repos.ChatTransaction(chatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		if err := CheckDelete(chat, callerId); err != nil {
			return err
		}
		members, err := tx.Member.FindByChatUuid(chatId)
		if err != nil {
			return err
		}
		ids = memberIds(members)
		mediaKeys, err = purgeChatTx(tx, chatId)
		return err
	})
	if err != nil {
		if errorx.IsCode(err, errorx.CodeNotAuthorized) {
			return err
		}
		zap.L().Error("删除会话失败", zap.String("chat_id", chatId), zap.Error(err))
		return errorx.ErrServerBusy
	}

	s.deleteMediaObjects(mediaKeys)
	if err := s.publisher.Publish(ids, event.KindChatDeleted, event.ChatPayload{ChatId: chatId}); err != nil {
		zap.L().Warn("发布会话删除事件失败", zap.Error(err))
	}
	s.clearChatListCache(ids...)
	zap.L().Info("会话已删除", zap.String("chat_id", chatId), zap.String("caller_id", callerId))
	return nil
}

// UpdateRetention 修改自动删除偏好
// 变更落库的同一事务中写入一条系统消息，所有成员都能看到变更记录
func (s *lifecycleService) UpdateRetention(callerId string, req request.UpdateRetentionRequest) error {
	if _, err := s.requireMember(req.ChatId, callerId); err != nil {
		return err
	}
	var sysMessageId int64
	err := s.repos.ChatTransaction(req.ChatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		if err := CheckUpdateRetention(chat, callerId); err != nil {
			return err
		}
		if chat.AutoDeletePreference == req.Preference {
			return nil
		}
		now := time.Now()
		if err := tx.Chat.UpdateAutoDelete(req.ChatId, req.Preference, now); err != nil {
			return err
		}
		sysMessage := &model.Message{
			Uuid:     snowflake.GenerateID(),
			ChatUuid: req.ChatId,
			SendId:   callerId,
			Type:     model.MessageTypeSystem,
			Content:  fmt.Sprintf("Disappearing messages set to %s", retention.RetentionLabel(req.Preference)),
			SendAt:   now,
		}
		if err := tx.Message.Create(sysMessage); err != nil {
			return err
		}
		sysMessageId = sysMessage.Uuid
		return nil
	})
	if err != nil {
		if errorx.IsCode(err, errorx.CodeNotAuthorized) || errorx.IsCode(err, errorx.CodeInvalidTransition) {
			return err
		}
		zap.L().Error("修改自动删除偏好失败", zap.String("chat_id", req.ChatId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if sysMessageId == 0 {
		// 偏好未变化，幂等返回
		return nil
	}

	members, err := s.repos.Member.FindByChatUuid(req.ChatId)
	if err == nil {
		ids := memberIds(members)
		if err := s.publisher.Publish(ids, event.KindChatUpdated, event.ChatPayload{ChatId: req.ChatId}); err != nil {
			zap.L().Warn("发布会话更新事件失败", zap.Error(err))
		}
		if err := s.publisher.Publish(ids, event.KindNewMessage, event.MessageRefPayload{
			ChatId:    req.ChatId,
			MessageId: fmt.Sprintf("%d", sysMessageId),
		}); err != nil {
			zap.L().Warn("发布新消息事件失败", zap.Error(err))
		}
		s.clearChatListCache(ids...)
	}
	zap.L().Info("自动删除偏好已修改",
		zap.String("chat_id", req.ChatId),
		zap.Int8("preference", req.Preference),
	)
	return nil
}

// GetChatList 获取会话列表
// blocked 不展示；request 对接收方仅在收到至少一条消息后展示
func (s *lifecycleService) GetChatList(callerId string) ([]respond.ChatListRespond, error) {
	cacheKey := "chat_list_" + callerId

	// 1. 尝试读缓存
	rspString, err := s.cache.Get(context.Background(), cacheKey)
	if err == nil && rspString != "" {
		var rsp []respond.ChatListRespond
		if err := json.Unmarshal([]byte(rspString), &rsp); err == nil {
			return rsp, nil
		}
		zap.L().Error("Unmarshal chat list cache failed", zap.Error(err))
	} else if err != nil {
		zap.L().Error(err.Error())
	}

	// 2. 查库
	list, err := s.buildChatList(callerId, false)
	if err != nil {
		return nil, err
	}

	// 3. 回写缓存
	s.cache.SubmitTask(func() {
		rspBytes, err := json.Marshal(list)
		if err != nil {
			zap.L().Error("Marshal failed", zap.Error(err))
			return
		}
		_ = s.cache.Set(context.Background(), cacheKey, string(rspBytes), time.Minute*constants.REDIS_TIMEOUT)
	})

	return list, nil
}

// GetRequestList 获取待处理的会话请求（调用者为接收方且已有消息）
func (s *lifecycleService) GetRequestList(callerId string) ([]respond.ChatListRespond, error) {
	return s.buildChatList(callerId, true)
}

// buildChatList 组装会话列表
// requestsOnly 为 true 时只返回待处理请求，否则返回常规会话列表
func (s *lifecycleService) buildChatList(callerId string, requestsOnly bool) ([]respond.ChatListRespond, error) {
	memberships, err := s.repos.Member.FindByUserUuid(callerId)
	if err != nil {
		zap.L().Error("查询用户会话成员记录失败", zap.String("caller_id", callerId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	list := make([]respond.ChatListRespond, 0, len(memberships))
	for _, membership := range memberships {
		chat, err := s.repos.Chat.FindByUuid(membership.ChatUuid)
		if err != nil {
			if errorx.GetCode(err) != errorx.CodeNotFound {
				zap.L().Error("查询会话失败", zap.String("chat_id", membership.ChatUuid), zap.Error(err))
			}
			continue
		}
		if chat.Status == model.ChatStatusBlocked {
			continue
		}

		// 常规列表里不混入待处理请求，请求列表里不混入常规会话
		isPendingRequest := chat.Status == model.ChatStatusRequest && callerId != chat.CreatedBy
		if requestsOnly != isPendingRequest {
			continue
		}
		if chat.Status == model.ChatStatusRequest {
			count, err := s.repos.Message.CountByChatUuid(chat.Uuid)
			if err != nil {
				zap.L().Error("统计会话消息失败", zap.String("chat_id", chat.Uuid), zap.Error(err))
				continue
			}
			if !RequestVisibleToCaller(chat, callerId, count) {
				continue
			}
		}

		item := respond.ChatListRespond{
			ChatId:               chat.Uuid,
			IsGroup:              chat.IsGroup,
			Name:                 chat.Name,
			Avatar:               chat.Avatar,
			Status:               chat.Status,
			AutoDeletePreference: chat.AutoDeletePreference,
		}

		// 单聊取对方资料做名称与在线状态
		if !chat.IsGroup {
			if peer := s.peerOf(chat.Uuid, callerId); peer != nil {
				item.Name = peer.Nickname
				item.Avatar = peer.Avatar
				if online, err := s.online.IsOnline(peer.Uuid); err == nil {
					item.PeerOnline = online
				}
			}
		}

		unread, err := s.repos.Message.CountUnread(chat.Uuid, callerId, membership.LastReadAt)
		if err == nil {
			item.UnreadCount = unread
		}

		if last, err := s.repos.Message.FindLastByChat(chat.Uuid); err == nil {
			item.LastMessage = previewOf(last)
			at := last.SendAt
			item.LastMessageAt = &at
		}

		list = append(list, item)
	}

	// 按最后消息时间倒序，空会话沉底
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].LastMessageAt, list[j].LastMessageAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	return list, nil
}

// peerOf 查找单聊中的对方用户资料，失败返回 nil
func (s *lifecycleService) peerOf(chatUuid, callerId string) *model.UserInfo {
	members, err := s.repos.Member.FindByChatUuid(chatUuid)
	if err != nil {
		return nil
	}
	for _, m := range members {
		if m.UserUuid != callerId {
			peer, err := s.repos.User.FindByUuid(m.UserUuid)
			if err != nil {
				return nil
			}
			return peer
		}
	}
	return nil
}

// previewOf 会话列表的最后一条消息摘要
func previewOf(message *model.Message) string {
	switch message.Type {
	case model.MessageTypeImage:
		return "[Photo]"
	case model.MessageTypeAudio:
		return "[Voice message]"
	}
	return message.Content
}

// GetChatInfo 获取会话详情
func (s *lifecycleService) GetChatInfo(callerId, chatId string) (*respond.GetChatInfoRespond, error) {
	if _, err := s.requireMember(chatId, callerId); err != nil {
		return nil, err
	}
	chat, err := s.repos.Chat.FindByUuid(chatId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
		}
		zap.L().Error("查询会话失败", zap.String("chat_id", chatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return s.buildChatInfoRespond(chat, callerId)
}

func (s *lifecycleService) buildChatInfoRespond(chat *model.ChatInfo, callerId string) (*respond.GetChatInfoRespond, error) {
	rsp := &respond.GetChatInfoRespond{
		ChatId:               chat.Uuid,
		IsGroup:              chat.IsGroup,
		Name:                 chat.Name,
		Avatar:               chat.Avatar,
		Status:               chat.Status,
		CreatedBy:            chat.CreatedBy,
		AdminIds:             chat.AdminList(),
		AutoDeletePreference: chat.AutoDeletePreference,
	}
	if !chat.IsGroup {
		if peer := s.peerOf(chat.Uuid, callerId); peer != nil {
			rsp.Name = peer.Nickname
			rsp.Avatar = peer.Avatar
		}
	}
	return rsp, nil
}

// Package presence 实现在线状态与输入状态业务
// 在线标记存 Redis 并带 TTL，心跳续期；输入状态纯广播，不落任何存储
package presence

import (
	"context"
	"time"

	"vanish_chat_server/internal/dao/mysql/repository"
	myredis "vanish_chat_server/internal/dao/redis"
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/service/event"
	"vanish_chat_server/pkg/constants"
	"vanish_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// presenceService 在线状态业务实现
type presenceService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	publisher event.Publisher
}

// NewPresenceService 构造函数，注入所有依赖
func NewPresenceService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	publisher event.Publisher,
) *presenceService {
	return &presenceService{
		repos:     repos,
		cache:     cache,
		publisher: publisher,
	}
}

func onlineKey(userId string) string {
	return "online_" + userId
}

// SetOnline 标记上线
// Redis 标记为准（带 TTL 防僵尸），库里的标志位仅作冗余展示
func (s *presenceService) SetOnline(userId string) error {
	if err := s.cache.Set(context.Background(), onlineKey(userId), "1", constants.ONLINE_KEY_TTL); err != nil {
		zap.L().Error("写入在线标记失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	s.cache.SubmitTask(func() {
		if err := s.repos.User.UpdateOnlineStatus(userId, true, time.Now()); err != nil {
			zap.L().Error("更新在线标志失败", zap.String("user_id", userId), zap.Error(err))
		}
	})
	s.broadcastPresence(userId, true)
	return nil
}

// SetOffline 标记离线
func (s *presenceService) SetOffline(userId string) error {
	if err := s.cache.Delete(context.Background(), onlineKey(userId)); err != nil {
		zap.L().Error("删除在线标记失败", zap.String("user_id", userId), zap.Error(err))
	}
	s.cache.SubmitTask(func() {
		if err := s.repos.User.UpdateOnlineStatus(userId, false, time.Now()); err != nil {
			zap.L().Error("更新离线标志失败", zap.String("user_id", userId), zap.Error(err))
		}
	})
	s.broadcastPresence(userId, false)
	return nil
}

// Heartbeat 心跳续期在线标记
func (s *presenceService) Heartbeat(userId string) error {
	if err := s.cache.Set(context.Background(), onlineKey(userId), "1", constants.ONLINE_KEY_TTL); err != nil {
		zap.L().Error("续期在线标记失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// IsOnline 查询用户是否在线
// Redis 异常时降级读库里的冗余标志
func (s *presenceService) IsOnline(userId string) (bool, error) {
	val, err := s.cache.Get(context.Background(), onlineKey(userId))
	if err == nil {
		return val != "", nil
	}
	zap.L().Warn("读取在线标记失败，降级查库", zap.String("user_id", userId), zap.Error(err))
	user, err := s.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return false, nil
		}
		return false, errorx.ErrServerBusy
	}
	return user.IsOnline, nil
}

// Typing 广播输入状态
// 不落库，失败不报错；消费端超过 TYPING_EXPIRY 未收到新信号自行清除
func (s *presenceService) Typing(callerId string, req request.TypingRequest) error {
	member, err := s.repos.Member.FindByChatAndUser(req.ChatId, callerId)
	if err != nil || member == nil {
		// 非成员的 typing 信号直接丢弃
		return nil
	}
	members, err := s.repos.Member.FindByChatUuid(req.ChatId)
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.UserUuid != callerId {
			ids = append(ids, m.UserUuid)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.publisher.Publish(ids, event.KindTyping, event.TypingPayload{
		ChatId:   req.ChatId,
		UserId:   callerId,
		IsTyping: req.IsTyping,
	}); err != nil {
		zap.L().Debug("广播输入状态失败", zap.Error(err))
	}
	return nil
}

// broadcastPresence 将上下线事件广播给所有共同会话的成员
func (s *presenceService) broadcastPresence(userId string, online bool) {
	s.cache.SubmitTask(func() {
		memberships, err := s.repos.Member.FindByUserUuid(userId)
		if err != nil {
			return
		}
		seen := map[string]bool{userId: true}
		var ids []string
		for _, membership := range memberships {
			members, err := s.repos.Member.FindByChatUuid(membership.ChatUuid)
			if err != nil {
				continue
			}
			for _, m := range members {
				if !seen[m.UserUuid] {
					seen[m.UserUuid] = true
					ids = append(ids, m.UserUuid)
				}
			}
		}
		if len(ids) == 0 {
			return
		}
		if err := s.publisher.Publish(ids, event.KindPresence, event.PresencePayload{
			UserId:   userId,
			IsOnline: online,
		}); err != nil {
			zap.L().Debug("广播在线状态失败", zap.Error(err))
		}
	})
}

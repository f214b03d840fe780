// Package membership 实现会话成员与已读游标业务
package membership

import (
	"context"
	"sort"
	"time"

	"vanish_chat_server/internal/dao/mysql/repository"
	myredis "vanish_chat_server/internal/dao/redis"
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/dto/respond"
	"vanish_chat_server/internal/infrastructure/storage"
	"vanish_chat_server/internal/model"
	"vanish_chat_server/internal/service/event"
	"vanish_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// membershipService 成员业务实现
type membershipService struct {
	repos     *repository.Repositories
	cache     myredis.AsyncCacheService
	publisher event.Publisher
	store     storage.ObjectStorage
}

// NewMembershipService 构造函数，注入所有依赖
func NewMembershipService(
	repos *repository.Repositories,
	cache myredis.AsyncCacheService,
	publisher event.Publisher,
	store storage.ObjectStorage,
) *membershipService {
	return &membershipService{
		repos:     repos,
		cache:     cache,
		publisher: publisher,
		store:     store,
	}
}

func (s *membershipService) requireMember(chatId, userId string) (*model.ChatMember, error) {
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

func (s *membershipService) clearChatListCache(userIds ...string) {
	s.cache.SubmitTask(func() {
		for _, uid := range userIds {
			if err := s.cache.Delete(context.Background(), "chat_list_"+uid); err != nil {
				zap.L().Error("清除会话列表缓存失败", zap.String("user_id", uid), zap.Error(err))
			}
		}
	})
}

// AddMember 添加群成员
// 仅群聊支持，仅管理员可操作；joined_at 即入群时刻，
// 新成员看不到入群前的历史消息
func (s *membershipService) AddMember(callerId string, req request.AddMemberRequest) error {
	if _, err := s.requireMember(req.ChatId, callerId); err != nil {
		return err
	}

	// 待加用户必须存在
	if _, err := s.repos.User.FindByUuid(req.UserId); err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.New(errorx.CodeNotFound, "用户不存在")
		}
		return errorx.ErrServerBusy
	}

	err := s.repos.ChatTransaction(req.ChatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		if !chat.IsGroup {
			return errorx.New(errorx.CodeInvalidParam, "单聊不支持添加成员")
		}
		if chat.Status != model.ChatStatusActive {
			return errorx.New(errorx.CodeInvalidTransition, "会话不在正常状态")
		}
		if !chat.IsAdmin(callerId) {
			return errorx.New(errorx.CodeNotAuthorized, "仅管理员可以添加成员")
		}
		if _, err := tx.Member.FindByChatAndUser(req.ChatId, req.UserId); err == nil {
			return errorx.New(errorx.CodeAlreadyExists, "该用户已是群成员")
		} else if errorx.GetCode(err) != errorx.CodeNotFound {
			return err
		}
		return tx.Member.Create(&model.ChatMember{
			ChatUuid: req.ChatId,
			UserUuid: req.UserId,
			JoinedAt: time.Now(),
		})
	})
	if err != nil {
		switch errorx.GetCode(err) {
		case errorx.CodeInvalidParam, errorx.CodeInvalidTransition,
			errorx.CodeNotAuthorized, errorx.CodeAlreadyExists:
			return err
		}
		zap.L().Error("添加群成员失败",
			zap.String("chat_id", req.ChatId),
			zap.String("user_id", req.UserId),
			zap.Error(err),
		)
		return errorx.ErrServerBusy
	}

	if members, err := s.repos.Member.FindByChatUuid(req.ChatId); err == nil {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserUuid)
		}
		if err := s.publisher.Publish(ids, event.KindMemberAdded, event.MemberPayload{
			ChatId: req.ChatId,
			UserId: req.UserId,
		}); err != nil {
			zap.L().Warn("发布成员加入事件失败", zap.Error(err))
		}
		s.clearChatListCache(ids...)
	}
	zap.L().Info("群成员已添加",
		zap.String("chat_id", req.ChatId),
		zap.String("user_id", req.UserId),
		zap.String("caller_id", callerId),
	)
	return nil
}

// RemoveMember 移除成员或主动退出
// 规则：创建者不可被他人移除；移除他人需管理员；
// 单聊退出视为拉黑（会话进入终态）；群聊最后一名成员退出时整个会话清除；
// 退出后若群内无管理员，入群最早的成员自动接任
func (s *membershipService) RemoveMember(callerId string, req request.RemoveMemberRequest) error {
	if _, err := s.requireMember(req.ChatId, callerId); err != nil {
		return err
	}
	isSelf := callerId == req.UserId

	var (
		purged    bool
		ids       []string
		mediaKeys []string
	)
	err := s.repos.ChatTransaction(req.ChatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		members, err := tx.Member.FindByChatUuid(req.ChatId)
		if err != nil {
			return err
		}
		for _, m := range members {
			ids = append(ids, m.UserUuid)
		}

		// 单聊：只允许自己退出，效果等同拉黑
		if !chat.IsGroup {
			if !isSelf {
				return errorx.New(errorx.CodeNotAuthorized, "单聊不能移除对方")
			}
			if chat.Status == model.ChatStatusBlocked {
				return nil
			}
			return tx.Chat.UpdateStatus(req.ChatId, model.ChatStatusBlocked)
		}

		// 群聊权限
		if !isSelf {
			if !chat.IsAdmin(callerId) {
				return errorx.New(errorx.CodeNotAuthorized, "仅管理员可以移除成员")
			}
			if req.UserId == chat.CreatedBy {
				return errorx.New(errorx.CodeNotAuthorized, "创建者不能被移除")
			}
		}
		if _, err := tx.Member.FindByChatAndUser(req.ChatId, req.UserId); err != nil {
			if errorx.GetCode(err) == errorx.CodeNotFound {
				return errorx.New(errorx.CodeNotFound, "该用户不是群成员")
			}
			return err
		}
		if err := tx.Member.Delete(req.ChatId, req.UserId); err != nil {
			return err
		}

		remaining, err := tx.Member.FindByChatUuid(req.ChatId)
		if err != nil {
			return err
		}
		if len(remaining) == 0 {
			// 最后一名成员退出，会话整体清除
			purged = true
			mediaKeys, err = tx.Message.FindMediaKeysByChat(req.ChatId)
			if err != nil {
				return err
			}
			if err := tx.Reaction.DeleteByChatUuid(req.ChatId); err != nil {
				return err
			}
			if err := tx.Message.DeleteByChatUuid(req.ChatId); err != nil {
				return err
			}
			return tx.Chat.SoftDeleteByUuid(req.ChatId)
		}

		// 维护管理员列表：被移除者出列；无管理员时入群最早者接任
		admins := chat.AdminList()
		filtered := admins[:0]
		for _, id := range admins {
			if id != req.UserId {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) == 0 {
			sort.Slice(remaining, func(i, j int) bool {
				return remaining[i].JoinedAt.Before(remaining[j].JoinedAt)
			})
			filtered = append(filtered, remaining[0].UserUuid)
			zap.L().Info("群管理员自动接任",
				zap.String("chat_id", req.ChatId),
				zap.String("new_admin", remaining[0].UserUuid),
			)
		}
		if err := chat.SetAdminList(filtered); err != nil {
			return err
		}
		return tx.Chat.Update(chat)
	})
	if err != nil {
		switch errorx.GetCode(err) {
		case errorx.CodeNotAuthorized, errorx.CodeNotFound:
			return err
		}
		zap.L().Error("移除成员失败",
			zap.String("chat_id", req.ChatId),
			zap.String("user_id", req.UserId),
			zap.Error(err),
		)
		return errorx.ErrServerBusy
	}

	if purged && len(mediaKeys) > 0 {
		go func() {
			for _, key := range mediaKeys {
				if err := s.store.Delete(context.Background(), key); err != nil {
					zap.L().Warn("清理媒体对象失败", zap.String("key", key), zap.Error(err))
				}
			}
		}()
	}
	kind := event.KindMemberRemoved
	if purged {
		kind = event.KindChatDeleted
	}
	if err := s.publisher.Publish(ids, kind, event.MemberPayload{
		ChatId: req.ChatId,
		UserId: req.UserId,
	}); err != nil {
		zap.L().Warn("发布成员移除事件失败", zap.Error(err))
	}
	s.clearChatListCache(ids...)
	zap.L().Info("成员已移除",
		zap.String("chat_id", req.ChatId),
		zap.String("user_id", req.UserId),
		zap.String("caller_id", callerId),
		zap.Bool("purged", purged),
	)
	return nil
}

// SetAdmin 设置或取消管理员
// 创建者是永久管理员，任何人不能将其降级
func (s *membershipService) SetAdmin(callerId string, req request.SetAdminRequest) error {
	if _, err := s.requireMember(req.ChatId, callerId); err != nil {
		return err
	}
	err := s.repos.ChatTransaction(req.ChatId, func(tx *repository.Repositories, chat *model.ChatInfo) error {
		if !chat.IsGroup {
			return errorx.New(errorx.CodeInvalidParam, "单聊没有管理员")
		}
		if !chat.IsAdmin(callerId) {
			return errorx.New(errorx.CodeNotAuthorized, "仅管理员可以设置管理员")
		}
		if !req.IsAdmin && req.UserId == chat.CreatedBy {
			return errorx.New(errorx.CodeNotAuthorized, "创建者的管理员身份不可撤销")
		}
		if _, err := tx.Member.FindByChatAndUser(req.ChatId, req.UserId); err != nil {
			if errorx.GetCode(err) == errorx.CodeNotFound {
				return errorx.New(errorx.CodeNotFound, "该用户不是群成员")
			}
			return err
		}

		admins := chat.AdminList()
		has := false
		for _, id := range admins {
			if id == req.UserId {
				has = true
				break
			}
		}
		if req.IsAdmin == has {
			// 已是目标状态，幂等返回
			return nil
		}
		if req.IsAdmin {
			admins = append(admins, req.UserId)
		} else {
			filtered := admins[:0]
			for _, id := range admins {
				if id != req.UserId {
					filtered = append(filtered, id)
				}
			}
			admins = filtered
		}
		if err := chat.SetAdminList(admins); err != nil {
			return err
		}
		return tx.Chat.Update(chat)
	})
	if err != nil {
		switch errorx.GetCode(err) {
		case errorx.CodeInvalidParam, errorx.CodeNotAuthorized, errorx.CodeNotFound:
			return err
		}
		zap.L().Error("设置管理员失败",
			zap.String("chat_id", req.ChatId),
			zap.String("user_id", req.UserId),
			zap.Error(err),
		)
		return errorx.ErrServerBusy
	}

	if members, err := s.repos.Member.FindByChatUuid(req.ChatId); err == nil {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserUuid)
		}
		if err := s.publisher.Publish(ids, event.KindChatUpdated, event.ChatPayload{ChatId: req.ChatId}); err != nil {
			zap.L().Warn("发布会话更新事件失败", zap.Error(err))
		}
	}
	return nil
}

// MarkRead 标记会话已读
// 游标单调前移：并发的旧请求不会把游标拉回去
func (s *membershipService) MarkRead(callerId, chatId string) error {
	if _, err := s.requireMember(chatId, callerId); err != nil {
		return err
	}
	now := time.Now()
	err := s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Member.AdvanceLastReadAt(chatId, callerId, now); err != nil {
			return err
		}
		return tx.Message.MarkReadByChat(chatId, callerId)
	})
	if err != nil {
		zap.L().Error("标记已读失败", zap.String("chat_id", chatId), zap.Error(err))
		return errorx.ErrServerBusy
	}

	if members, err := s.repos.Member.FindByChatUuid(chatId); err == nil {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserUuid)
		}
		if err := s.publisher.Publish(ids, event.KindRead, event.ReadPayload{
			ChatId: chatId,
			UserId: callerId,
			ReadAt: now.Format(time.RFC3339),
		}); err != nil {
			zap.L().Warn("发布已读事件失败", zap.Error(err))
		}
	}
	s.clearChatListCache(callerId)
	return nil
}

// GetMemberList 获取成员列表
func (s *membershipService) GetMemberList(callerId, chatId string) ([]respond.ChatMemberRespond, error) {
	if _, err := s.requireMember(chatId, callerId); err != nil {
		return nil, err
	}
	chat, err := s.repos.Chat.FindByUuid(chatId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
		}
		return nil, errorx.ErrServerBusy
	}
	members, err := s.repos.Member.FindMembersWithUserInfo(chatId)
	if err != nil {
		zap.L().Error("查询成员详情失败", zap.String("chat_id", chatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	list := make([]respond.ChatMemberRespond, 0, len(members))
	for _, m := range members {
		list = append(list, respond.ChatMemberRespond{
			UserId:    m.UserId,
			Handle:    m.Handle,
			Nickname:  m.Nickname,
			Avatar:    m.Avatar,
			JoinedAt:  m.JoinedAt,
			IsAdmin:   chat.IsAdmin(m.UserId),
			IsCreator: m.UserId == chat.CreatedBy,
		})
	}
	return list, nil
}

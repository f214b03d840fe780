// Package user 实现用户注册、登录与资料管理业务
package user

import (
	"context"
	"fmt"
	"time"

	"vanish_chat_server/internal/dao/mysql/repository"
	myredis "vanish_chat_server/internal/dao/redis"
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/dto/respond"
	"vanish_chat_server/internal/model"
	"vanish_chat_server/pkg/constants"
	"vanish_chat_server/pkg/errorx"
	"vanish_chat_server/pkg/util/jwt"
	"vanish_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

// ChatLeaver 按会话执行成员退出转移
// 注销账号时逐会话复用同一套退出规则：单聊拉黑、群管理员接任、末员清除
type ChatLeaver interface {
	RemoveMember(callerId string, req request.RemoveMemberRequest) error
}

// userService 用户业务实现
type userService struct {
	repos  *repository.Repositories
	cache  myredis.AsyncCacheService
	leaver ChatLeaver
}

// NewUserService 构造函数，注入所有依赖
func NewUserService(repos *repository.Repositories, cache myredis.AsyncCacheService, leaver ChatLeaver) *userService {
	return &userService{
		repos:  repos,
		cache:  cache,
		leaver: leaver,
	}
}

// refreshTokenKey 服务端有效 Refresh Token 的 Redis Key
// 单点互踢：每个用户只保留最新一次登录的 token_id
func refreshTokenKey(userId string) string {
	return "user_token:" + userId
}

// issueTokens 签发令牌对并落 Redis
func (s *userService) issueTokens(userId string) (accessToken, refreshToken string, err error) {
	accessToken, err = jwt.GenerateAccessToken(userId)
	if err != nil {
		return "", "", err
	}
	var tokenID string
	refreshToken, tokenID, err = jwt.GenerateRefreshToken(userId)
	if err != nil {
		return "", "", err
	}
	err = s.cache.Set(context.Background(), refreshTokenKey(userId), tokenID,
		constants.REFRESH_TOKEN_EXPIRY_HOURS*time.Hour)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Register 用户注册
// handle 全局唯一；注册成功直接返回令牌对，视为已登录
func (s *userService) Register(req request.RegisterRequest) (*respond.LoginRespond, error) {
	// 1. handle 查重
	if _, err := s.repos.User.FindByHandle(req.Handle); err == nil {
		return nil, errorx.New(errorx.CodeAlreadyExists, "用户名已被占用")
	} else if errorx.GetCode(err) != errorx.CodeNotFound {
		zap.L().Error("查询用户名失败", zap.String("handle", req.Handle), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 2. 创建用户，密码在模型 Hook 中加密
	user := &model.UserInfo{
		Uuid:        fmt.Sprintf("U%s", random.GetNowAndLenRandomString(13)),
		Handle:      req.Handle,
		Nickname:    req.Nickname,
		RawPassword: req.Password,
	}
	if err := s.repos.User.Create(user); err != nil {
		zap.L().Error("创建用户失败", zap.String("handle", req.Handle), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 3. 签发令牌
	accessToken, refreshToken, err := s.issueTokens(user.Uuid)
	if err != nil {
		zap.L().Error("签发令牌失败", zap.String("user_id", user.Uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	zap.L().Info("用户注册成功", zap.String("user_id", user.Uuid), zap.String("handle", req.Handle))
	return &respond.LoginRespond{
		Uuid:         user.Uuid,
		Handle:       user.Handle,
		Nickname:     user.Nickname,
		Avatar:       user.Avatar,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Login 密码登录
func (s *userService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.repos.User.FindByHandle(req.Handle)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			// 不泄露用户是否存在
			return nil, errorx.New(errorx.CodeInvalidPassword, "用户名或密码错误")
		}
		zap.L().Error("查询用户失败", zap.String("handle", req.Handle), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		zap.L().Warn("密码校验失败", zap.String("handle", req.Handle))
		return nil, errorx.New(errorx.CodeInvalidPassword, "用户名或密码错误")
	}

	accessToken, refreshToken, err := s.issueTokens(user.Uuid)
	if err != nil {
		zap.L().Error("签发令牌失败", zap.String("user_id", user.Uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	zap.L().Info("用户登录成功", zap.String("user_id", user.Uuid))
	return &respond.LoginRespond{
		Uuid:         user.Uuid,
		Handle:       user.Handle,
		Nickname:     user.Nickname,
		Avatar:       user.Avatar,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken 刷新 Access Token
// 校验 Refresh Token 的 token_id 与 Redis 中记录一致，实现单点互踢
func (s *userService) RefreshToken(req request.RefreshTokenRequest) (*respond.RefreshTokenRespond, error) {
	claims, err := jwt.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, errorx.New(errorx.CodeUnauthorized, "Refresh Token 无效或已过期")
	}
	if claims.Subject != "refresh_token" || claims.TokenID == "" {
		return nil, errorx.New(errorx.CodeUnauthorized, "请使用 Refresh Token 刷新")
	}

	validTokenID, err := s.cache.Get(context.Background(), refreshTokenKey(claims.UserID))
	if err != nil {
		zap.L().Error("读取令牌记录失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if validTokenID == "" || validTokenID != claims.TokenID {
		// 已在其他设备登录或已登出
		return nil, errorx.New(errorx.CodeUnauthorized, "登录状态已失效，请重新登录")
	}

	accessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		zap.L().Error("签发 Access Token 失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.RefreshTokenRespond{AccessToken: accessToken}, nil
}

// Logout 退出登录，作废服务端的 Refresh Token
func (s *userService) Logout(userId string) error {
	if err := s.cache.Delete(context.Background(), refreshTokenKey(userId)); err != nil {
		zap.L().Error("删除令牌记录失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// UpdateUserInfo 更新个人资料
// handle 一经设置不可修改；push_token 随客户端上报随时覆盖
func (s *userService) UpdateUserInfo(userId string, req request.UpdateUserInfoRequest) error {
	user, err := s.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.New(errorx.CodeNotFound, "用户不存在")
		}
		return errorx.ErrServerBusy
	}

	if req.Handle != "" && req.Handle != user.Handle {
		if user.Handle != "" {
			return errorx.New(errorx.CodeInvalidTransition, "用户名不可修改")
		}
		// 首次设置时查重
		if _, err := s.repos.User.FindByHandle(req.Handle); err == nil {
			return errorx.New(errorx.CodeAlreadyExists, "用户名已被占用")
		} else if errorx.GetCode(err) != errorx.CodeNotFound {
			return errorx.ErrServerBusy
		}
		user.Handle = req.Handle
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Signature != "" {
		user.Signature = req.Signature
	}
	if req.PushToken != "" {
		user.PushToken = req.PushToken
	}

	if err := s.repos.User.Update(user); err != nil {
		zap.L().Error("更新用户资料失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}

	// 资料被缓存在各方的会话列表里，异步失效
	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), "user_info_"+userId); err != nil {
			zap.L().Error("清除用户资料缓存失败", zap.Error(err))
		}
	})
	return nil
}

// GetUserInfo 获取用户资料
func (s *userService) GetUserInfo(uuid string) (*respond.GetUserInfoRespond, error) {
	user, err := s.repos.User.FindByUuid(uuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
		}
		zap.L().Error("查询用户失败", zap.String("user_id", uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.GetUserInfoRespond{
		Uuid:      user.Uuid,
		Handle:    user.Handle,
		Nickname:  user.Nickname,
		Avatar:    user.Avatar,
		Signature: user.Signature,
		IsOnline:  user.IsOnline,
	}, nil
}

// SearchUsers 按用户名前缀搜索
func (s *userService) SearchUsers(callerId, keyword string) ([]respond.GetUserInfoRespond, error) {
	users, err := s.repos.User.SearchByHandle(keyword, callerId, 20)
	if err != nil {
		zap.L().Error("搜索用户失败", zap.String("keyword", keyword), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.GetUserInfoRespond, 0, len(users))
	for i := range users {
		list = append(list, respond.GetUserInfoRespond{
			Uuid:      users[i].Uuid,
			Handle:    users[i].Handle,
			Nickname:  users[i].Nickname,
			Avatar:    users[i].Avatar,
			Signature: users[i].Signature,
			IsOnline:  users[i].IsOnline,
		})
	}
	return list, nil
}

// DeleteAccount 注销账号
// 逐会话走成员退出转移后软删除用户：单聊转为拉黑态对双方隐藏，
// 群聊沿用移除成员的规则（管理员出列、无管理员时入群最早者接任、末员清除）
func (s *userService) DeleteAccount(userId string) error {
	memberships, err := s.repos.Member.FindByUserUuid(userId)
	if err != nil {
		zap.L().Error("查询用户会话失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	for _, m := range memberships {
		err := s.leaver.RemoveMember(userId, request.RemoveMemberRequest{
			ChatId: m.ChatUuid,
			UserId: userId,
		})
		// 会话已被并发清除视为退出完成
		if err != nil && !errorx.IsNotFound(err) {
			zap.L().Error("注销时退出会话失败",
				zap.String("user_id", userId),
				zap.String("chat_id", m.ChatUuid),
				zap.Error(err),
			)
			return errorx.ErrServerBusy
		}
	}

	// 单聊退出只改会话状态，残留的成员行在这里统一清掉
	if err := s.repos.Member.DeleteByUserUuid(userId); err != nil {
		zap.L().Error("清除用户成员记录失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if err := s.repos.User.SoftDeleteByUuid(userId); err != nil {
		zap.L().Error("注销账号失败", zap.String("user_id", userId), zap.Error(err))
		return errorx.ErrServerBusy
	}

	s.cache.SubmitTask(func() {
		if err := s.cache.Delete(context.Background(), refreshTokenKey(userId)); err != nil {
			zap.L().Error("清除令牌记录失败", zap.Error(err))
		}
		if err := s.cache.Delete(context.Background(), "user_info_"+userId); err != nil {
			zap.L().Error("清除用户资料缓存失败", zap.Error(err))
		}
		if err := s.cache.Delete(context.Background(), "chat_list_"+userId); err != nil {
			zap.L().Error("清除会话列表缓存失败", zap.Error(err))
		}
	})
	zap.L().Info("账号已注销", zap.String("user_id", userId))
	return nil
}

// Package lifecycle 实现会话生命周期业务
// 本文件集中状态机规则，纯函数，便于单测覆盖所有转移路径
package lifecycle

import (
	"vanish_chat_server/internal/model"
	"vanish_chat_server/pkg/errorx"
)

// CheckAccept 校验接受请求的前置条件
// 发起方在任何状态下都不是合法的接受者；接收方在 active 时幂等放行
// （ok=false 表示无需任何写操作）；blocked 为终态
func CheckAccept(chat *model.ChatInfo, callerId string) (ok bool, err error) {
	if chat.IsGroup {
		return false, errorx.New(errorx.CodeInvalidParam, "群聊没有请求流程")
	}
	if callerId == chat.CreatedBy {
		return false, errorx.New(errorx.CodeInvalidTransition, "不能接受自己发起的请求")
	}
	switch chat.Status {
	case model.ChatStatusActive:
		return false, nil
	case model.ChatStatusBlocked:
		return false, errorx.New(errorx.CodeInvalidTransition, "会话已被拉黑，无法接受")
	}
	return true, nil
}

// CheckReject 校验拒绝请求的前置条件
// 仅接收方可以拒绝，且会话必须仍处于 request 状态
func CheckReject(chat *model.ChatInfo, callerId string) error {
	if chat.IsGroup {
		return errorx.New(errorx.CodeInvalidParam, "群聊没有请求流程")
	}
	if chat.Status != model.ChatStatusRequest {
		return errorx.New(errorx.CodeInvalidTransition, "会话不在请求状态")
	}
	if callerId == chat.CreatedBy {
		return errorx.New(errorx.CodeInvalidTransition, "不能拒绝自己发起的请求")
	}
	return nil
}

// CheckBlock 校验拉黑的前置条件
// 拉黑是终态；重复拉黑幂等（ok=false 表示无需写操作）
func CheckBlock(chat *model.ChatInfo) (ok bool, err error) {
	if chat.IsGroup {
		return false, errorx.New(errorx.CodeInvalidParam, "群聊不支持拉黑")
	}
	if chat.Status == model.ChatStatusBlocked {
		return false, nil
	}
	return true, nil
}

// CheckSend 校验发消息的前置条件
// request 状态只有发起方能继续发；blocked 双方都不能发
func CheckSend(chat *model.ChatInfo, callerId string) error {
	switch chat.Status {
	case model.ChatStatusActive:
		return nil
	case model.ChatStatusRequest:
		if callerId != chat.CreatedBy {
			return errorx.New(errorx.CodeInvalidTransition, "请先接受会话请求")
		}
		return nil
	case model.ChatStatusBlocked:
		return errorx.New(errorx.CodeInvalidTransition, "会话已被拉黑，无法发送消息")
	}
	return errorx.New(errorx.CodeInvalidTransition, "会话状态异常")
}

// CheckUpdateRetention 校验修改自动删除偏好的权限
// 单聊任一参与者可改，群聊仅管理员可改
func CheckUpdateRetention(chat *model.ChatInfo, callerId string) error {
	if chat.Status == model.ChatStatusBlocked {
		return errorx.New(errorx.CodeInvalidTransition, "会话已被拉黑")
	}
	if chat.IsGroup && !chat.IsAdmin(callerId) {
		return errorx.New(errorx.CodeNotAuthorized, "仅管理员可以修改消息设置")
	}
	return nil
}

// CheckDelete 校验删除会话的权限
// 单聊任一参与者可删，群聊仅创建者可删
func CheckDelete(chat *model.ChatInfo, callerId string) error {
	if chat.IsGroup && callerId != chat.CreatedBy {
		return errorx.New(errorx.CodeNotAuthorized, "仅群创建者可以删除会话")
	}
	return nil
}

// IsEmptyRequestCloseByCreator 判断是否命中"发起方关闭空请求"的清除路径
// 发起方在对方从未收到消息前撤回请求，整个会话直接清除
func IsEmptyRequestCloseByCreator(chat *model.ChatInfo, callerId string, messageCount int64) bool {
	return !chat.IsGroup &&
		chat.Status == model.ChatStatusRequest &&
		callerId == chat.CreatedBy &&
		messageCount == 0
}

// RequestVisibleToCaller 判断 request 会话是否应出现在调用者的列表里
// 发起方始终可见；接收方只有在至少收到一条消息后才可见
func RequestVisibleToCaller(chat *model.ChatInfo, callerId string, messageCount int64) bool {
	if chat.Status != model.ChatStatusRequest {
		return true
	}
	if callerId == chat.CreatedBy {
		return true
	}
	return messageCount > 0
}

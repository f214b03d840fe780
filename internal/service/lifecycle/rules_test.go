package lifecycle

import (
	"testing"

	"vanish_chat_server/internal/model"
	"vanish_chat_server/pkg/errorx"
)

func directChat(status int8, createdBy string) *model.ChatInfo {
	return &model.ChatInfo{
		Uuid:      "C_TEST",
		IsGroup:   false,
		CreatedBy: createdBy,
		Status:    status,
	}
}

func TestCheckAccept(t *testing.T) {
	// 接收方接受 request 会话
	ok, err := CheckAccept(directChat(model.ChatStatusRequest, "U_A"), "U_B")
	if err != nil || !ok {
		t.Fatalf("receiver accept request: ok=%v err=%v", ok, err)
	}

	// 接收方在 active 状态幂等放行，不需要写操作
	ok, err = CheckAccept(directChat(model.ChatStatusActive, "U_A"), "U_B")
	if err != nil || ok {
		t.Fatalf("receiver accept active should be idempotent no-op: ok=%v err=%v", ok, err)
	}

	// 发起方即使在 active 状态也不是合法的接受者
	if _, err = CheckAccept(directChat(model.ChatStatusActive, "U_A"), "U_A"); !errorx.IsCode(err, errorx.CodeInvalidTransition) {
		t.Fatalf("creator accept active chat: err=%v", err)
	}

	// blocked 为终态
	if _, err = CheckAccept(directChat(model.ChatStatusBlocked, "U_A"), "U_B"); !errorx.IsCode(err, errorx.CodeInvalidTransition) {
		t.Fatalf("accept blocked: err=%v", err)
	}

	// 发起方不能替对方接受
	if _, err = CheckAccept(directChat(model.ChatStatusRequest, "U_A"), "U_A"); !errorx.IsCode(err, errorx.CodeInvalidTransition) {
		t.Fatalf("creator accept own request: err=%v", err)
	}

	// 群聊没有请求流程
	group := directChat(model.ChatStatusActive, "U_A")
	group.IsGroup = true
	if _, err = CheckAccept(group, "U_B"); !errorx.IsCode(err, errorx.CodeInvalidParam) {
		t.Fatalf("accept group: err=%v", err)
	}
}

func TestCheckReject(t *testing.T) {
	if err := CheckReject(directChat(model.ChatStatusRequest, "U_A"), "U_B"); err != nil {
		t.Fatalf("receiver reject request: %v", err)
	}
	if err := CheckReject(directChat(model.ChatStatusActive, "U_A"), "U_B"); !errorx.IsCode(err, errorx.CodeInvalidTransition) {
		t.Fatalf("reject active: err=%v", err)
	}
	if err := CheckReject(directChat(model.ChatStatusRequest, "U_A"), "U_A"); !errorx.IsCode(err, errorx.CodeInvalidTransition) {
		t.Fatalf("creator reject own request: err=%v", err)
	}
}

func TestCheckBlock(t *testing.T) {
	ok, err := CheckBlock(directChat(model.ChatStatusActive, "U_A"))
	if err != nil || !ok {
		t.Fatalf("block active: ok=%v err=%v", ok, err)
	}

	// 重复拉黑幂等
	ok, err = CheckBlock(directChat(model.ChatStatusBlocked, "U_A"))
	if err != nil || ok {
		t.Fatalf("block blocked should be no-op: ok=%v err=%v", ok, err)
	}

	group := directChat(model.ChatStatusActive, "U_A")
	group.IsGroup = true
	if _, err = CheckBlock(group); !errorx.IsCode(err, errorx.CodeInvalidParam) {
		t.Fatalf("block group: err=%v", err)
	}
}

func TestCheckSend(t *testing.T) {
	if err := CheckSend(directChat(model.ChatStatusActive, "U_A"), "U_B"); err != nil {
		t.Fatalf("send in active: %v", err)
	}

	// request 状态只有发起方能继续发
	if err := CheckSend(directChat(model.ChatStatusRequest, "U_A"), "U_A"); err != nil {
		t.Fatalf("creator send in request: %v", err)
	}
	if err := CheckSend(directChat(model.ChatStatusRequest, "U_A"), "U_B"); !errorx.IsCode(err, errorx.CodeInvalidTransition) {
		t.Fatalf("receiver send in request: err=%v", err)
	}

	// blocked 双方都不能发
	if err := CheckSend(directChat(model.ChatStatusBlocked, "U_A"), "U_A"); !errorx.IsCode(err, errorx.CodeInvalidTransition) {
		t.Fatalf("send in blocked: err=%v", err)
	}
}

func TestCheckUpdateRetention(t *testing.T) {
	// 单聊任一参与者可改
	if err := CheckUpdateRetention(directChat(model.ChatStatusActive, "U_A"), "U_B"); err != nil {
		t.Fatalf("direct chat member update retention: %v", err)
	}
	if err := CheckUpdateRetention(directChat(model.ChatStatusBlocked, "U_A"), "U_A"); !errorx.IsCode(err, errorx.CodeInvalidTransition) {
		t.Fatalf("update retention on blocked: err=%v", err)
	}

	// 群聊仅管理员可改
	group := directChat(model.ChatStatusActive, "U_A")
	group.IsGroup = true
	if err := group.SetAdminList([]string{"U_A"}); err != nil {
		t.Fatal(err)
	}
	if err := CheckUpdateRetention(group, "U_A"); err != nil {
		t.Fatalf("group admin update retention: %v", err)
	}
	if err := CheckUpdateRetention(group, "U_B"); !errorx.IsCode(err, errorx.CodeNotAuthorized) {
		t.Fatalf("group non-admin update retention: err=%v", err)
	}
}

func TestCheckDelete(t *testing.T) {
	if err := CheckDelete(directChat(model.ChatStatusActive, "U_A"), "U_B"); err != nil {
		t.Fatalf("direct chat member delete: %v", err)
	}

	group := directChat(model.ChatStatusActive, "U_A")
	group.IsGroup = true
	if err := CheckDelete(group, "U_A"); err != nil {
		t.Fatalf("group creator delete: %v", err)
	}
	if err := CheckDelete(group, "U_B"); !errorx.IsCode(err, errorx.CodeNotAuthorized) {
		t.Fatalf("group non-creator delete: err=%v", err)
	}
}

func TestIsEmptyRequestCloseByCreator(t *testing.T) {
	chat := directChat(model.ChatStatusRequest, "U_A")
	if !IsEmptyRequestCloseByCreator(chat, "U_A", 0) {
		t.Fatal("creator closing empty request should purge")
	}
	if IsEmptyRequestCloseByCreator(chat, "U_A", 1) {
		t.Fatal("request with messages must not purge on close")
	}
	if IsEmptyRequestCloseByCreator(chat, "U_B", 0) {
		t.Fatal("receiver close must not purge")
	}
	if IsEmptyRequestCloseByCreator(directChat(model.ChatStatusActive, "U_A"), "U_A", 0) {
		t.Fatal("active chat must not purge on close")
	}
}

func TestRequestVisibleToCaller(t *testing.T) {
	chat := directChat(model.ChatStatusRequest, "U_A")

	// 发起方始终可见
	if !RequestVisibleToCaller(chat, "U_A", 0) {
		t.Fatal("request should be visible to creator")
	}

	// 接收方在收到消息前不可见
	if RequestVisibleToCaller(chat, "U_B", 0) {
		t.Fatal("empty request should be hidden from receiver")
	}
	if !RequestVisibleToCaller(chat, "U_B", 1) {
		t.Fatal("request with messages should be visible to receiver")
	}

	// 非 request 状态不受限制
	if !RequestVisibleToCaller(directChat(model.ChatStatusActive, "U_A"), "U_B", 0) {
		t.Fatal("active chat should always be visible")
	}
}

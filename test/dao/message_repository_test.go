//go:build integration
// +build integration

package dao

import (
	"database/sql"
	"testing"
	"time"

	dao "vanish_chat_server/internal/dao/mysql"
	"vanish_chat_server/internal/model"
	"vanish_chat_server/pkg/util/random"
)

func seedMessage(t *testing.T, chatUuid, sendId string, at time.Time) {
	t.Helper()
	err := dao.Repos.Message.Create(&model.Message{
		Uuid:     time.Now().UnixNano(),
		ChatUuid: chatUuid,
		SendId:   sendId,
		Type:     model.MessageTypeText,
		Content:  "hello",
		SendAt:   at,
	})
	if err != nil {
		t.Fatal(err)
	}
}

// 可见性过滤与未读数的 SQL 边界：
// 恰好等于加入时间的消息可见，未读游标为 NULL 时计入对方全部消息，自己发的永不计入
func TestMessageVisibilityAndUnreadBoundaries(t *testing.T) {
	dao.Init()

	chatUuid := "C" + random.GetNowAndLenRandomString(13)
	viewer := "U_VIEWER"
	peer := "U_PEER"
	t.Cleanup(func() {
		dao.GormDB.Unscoped().Where("chat_uuid = ?", chatUuid).Delete(&model.Message{})
	})

	// datetime 列秒级精度，取整避免边界漂移
	joinedAt := time.Now().Add(-time.Hour).Truncate(time.Second)
	seedMessage(t, chatUuid, peer, joinedAt.Add(-time.Minute)) // 入群前的历史消息
	seedMessage(t, chatUuid, peer, joinedAt)                   // 恰好在加入时刻
	seedMessage(t, chatUuid, viewer, joinedAt.Add(time.Minute))
	seedMessage(t, chatUuid, peer, joinedAt.Add(2*time.Minute))

	visible, err := dao.Repos.Message.FindVisibleByChat(chatUuid, joinedAt)
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 3 {
		t.Fatalf("visible messages: want 3, got %d", len(visible))
	}
	if !visible[0].SendAt.Equal(joinedAt) {
		t.Fatalf("message at joined_at must be visible, first visible at %v", visible[0].SendAt)
	}

	// 游标为 NULL：对方发的 3 条全部未读，自己发的那条不计
	count, err := dao.Repos.Message.CountUnread(chatUuid, viewer, sql.NullTime{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("unread with null cursor: want 3, got %d", count)
	}

	// 游标推到加入时刻：只剩严格晚于游标的那条
	count, err = dao.Repos.Message.CountUnread(chatUuid, viewer, sql.NullTime{Time: joinedAt, Valid: true})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("unread after cursor: want 1, got %d", count)
	}

	// 对方视角：viewer 发的那条是唯一未读
	count, err = dao.Repos.Message.CountUnread(chatUuid, peer, sql.NullTime{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("peer unread: want 1, got %d", count)
	}
}

package model

import (
	"testing"

	"gorm.io/datatypes"
)

func TestAdminList(t *testing.T) {
	chat := &ChatInfo{}

	// 空值兜底为空数组
	if got := chat.AdminList(); len(got) != 0 {
		t.Fatalf("empty admin ids: %v", got)
	}

	// 脏数据兜底为空数组
	chat.AdminIds = datatypes.JSON(`{"not":"an array"`)
	if got := chat.AdminList(); len(got) != 0 {
		t.Fatalf("broken admin ids: %v", got)
	}

	if err := chat.SetAdminList([]string{"U_A", "U_B"}); err != nil {
		t.Fatal(err)
	}
	got := chat.AdminList()
	if len(got) != 2 || got[0] != "U_A" || got[1] != "U_B" {
		t.Fatalf("round trip: %v", got)
	}

	if !chat.IsAdmin("U_A") || chat.IsAdmin("U_C") {
		t.Fatal("IsAdmin mismatch")
	}
}

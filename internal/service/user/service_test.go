package user

import (
	"context"
	"sync"
	"testing"
	"time"

	"vanish_chat_server/internal/dao/mysql/repository"
	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/model"
	"vanish_chat_server/pkg/errorx"
)

// fakeCache 进程内缓存，SubmitTask 同步执行方便断言
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeCache) GetOrError(ctx context.Context, key string) (string, error) {
	val, _ := f.Get(ctx, key)
	if val == "" {
		return "", errorx.ErrNotFound
	}
	return val, nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeCache) DeleteByPattern(ctx context.Context, pattern string) error { return nil }
func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}
func (f *fakeCache) AddToSet(ctx context.Context, key string, members ...interface{}) error {
	return nil
}
func (f *fakeCache) GetSetMembers(ctx context.Context, key string) ([]string, error) {
	return nil, nil
}
func (f *fakeCache) RemoveFromSet(ctx context.Context, key string, members ...interface{}) error {
	return nil
}
func (f *fakeCache) SubmitTask(action func()) { action() }

// fakeMemberRepo 只实现注销路径用到的查询与删除
type fakeMemberRepo struct {
	repository.ChatMemberRepository
	memberships []model.ChatMember
	deletedUser string
}

func (f *fakeMemberRepo) FindByUserUuid(userUuid string) ([]model.ChatMember, error) {
	var out []model.ChatMember
	for _, m := range f.memberships {
		if m.UserUuid == userUuid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) DeleteByUserUuid(userUuid string) error {
	f.deletedUser = userUuid
	return nil
}

// fakeUserRepo 记录软删除调用
type fakeUserRepo struct {
	repository.UserRepository
	softDeleted []string
}

func (f *fakeUserRepo) SoftDeleteByUuid(uuid string) error {
	f.softDeleted = append(f.softDeleted, uuid)
	return nil
}

// fakeLeaver 记录每次退出转移，支持按会话注入错误
type fakeLeaver struct {
	calls   []request.RemoveMemberRequest
	callers []string
	fail    map[string]error
}

func (f *fakeLeaver) RemoveMember(callerId string, req request.RemoveMemberRequest) error {
	f.calls = append(f.calls, req)
	f.callers = append(f.callers, callerId)
	return f.fail[req.ChatId]
}

func newTestService(memberships []model.ChatMember, leaver *fakeLeaver) (*userService, *fakeMemberRepo, *fakeUserRepo) {
	fm := &fakeMemberRepo{memberships: memberships}
	fu := &fakeUserRepo{}
	repos := &repository.Repositories{
		User:   fu,
		Member: fm,
	}
	return NewUserService(repos, newFakeCache(), leaver), fm, fu
}

func TestDeleteAccountLeavesEveryChat(t *testing.T) {
	memberships := []model.ChatMember{
		{ChatUuid: "C_DIRECT", UserUuid: "U_X"},
		{ChatUuid: "C_GROUP", UserUuid: "U_X"},
	}
	leaver := &fakeLeaver{}
	svc, fm, fu := newTestService(memberships, leaver)

	if err := svc.DeleteAccount("U_X"); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	// 每个会话都走一次退出转移，发起者与被移除者都是注销者本人
	if len(leaver.calls) != 2 {
		t.Fatalf("leave calls: %v", leaver.calls)
	}
	seen := map[string]bool{}
	for i, call := range leaver.calls {
		seen[call.ChatId] = true
		if call.UserId != "U_X" || leaver.callers[i] != "U_X" {
			t.Fatalf("leave call %d: caller=%s req=%+v", i, leaver.callers[i], call)
		}
	}
	if !seen["C_DIRECT"] || !seen["C_GROUP"] {
		t.Fatalf("leave targets: %v", seen)
	}

	if fm.deletedUser != "U_X" {
		t.Fatalf("residual member rows not cleared: %q", fm.deletedUser)
	}
	if len(fu.softDeleted) != 1 || fu.softDeleted[0] != "U_X" {
		t.Fatalf("soft delete: %v", fu.softDeleted)
	}
}

func TestDeleteAccountToleratesVanishedChat(t *testing.T) {
	memberships := []model.ChatMember{
		{ChatUuid: "C_GONE", UserUuid: "U_X"},
	}
	leaver := &fakeLeaver{fail: map[string]error{"C_GONE": errorx.ErrNotFound}}
	svc, _, fu := newTestService(memberships, leaver)

	// 会话被并发清除不阻断注销
	if err := svc.DeleteAccount("U_X"); err != nil {
		t.Fatalf("delete account with vanished chat: %v", err)
	}
	if len(fu.softDeleted) != 1 {
		t.Fatalf("soft delete: %v", fu.softDeleted)
	}
}

func TestDeleteAccountAbortsOnLeaveFailure(t *testing.T) {
	memberships := []model.ChatMember{
		{ChatUuid: "C_BROKEN", UserUuid: "U_X"},
	}
	leaver := &fakeLeaver{fail: map[string]error{"C_BROKEN": errorx.New(errorx.CodeDBError, "db down")}}
	svc, fm, fu := newTestService(memberships, leaver)

	if err := svc.DeleteAccount("U_X"); !errorx.IsCode(err, errorx.CodeServerBusy) {
		t.Fatalf("leave failure must abort: %v", err)
	}
	// 退出失败时账号保持可用
	if len(fu.softDeleted) != 0 || fm.deletedUser != "" {
		t.Fatalf("account must survive failed leave: soft=%v member=%q", fu.softDeleted, fm.deletedUser)
	}
}

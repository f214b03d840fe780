package presence

import (
	"context"
	"errors"
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
	mu     sync.Mutex
	data   map[string]string
	broken bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.broken {
		return errors.New("redis down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if f.broken {
		return "", errors.New("redis down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeCache) GetOrError(ctx context.Context, key string) (string, error) {
	val, err := f.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if val == "" {
		return "", errors.New("key not found")
	}
	return val, nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	if f.broken {
		return errors.New("redis down")
	}
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

// fakeMemberRepo 只实现 Typing 路径用到的查询
type fakeMemberRepo struct {
	repository.ChatMemberRepository
	members map[string][]model.ChatMember // chatUuid -> members
}

func (f *fakeMemberRepo) FindByChatAndUser(chatUuid, userUuid string) (*model.ChatMember, error) {
	for _, m := range f.members[chatUuid] {
		if m.UserUuid == userUuid {
			return &m, nil
		}
	}
	return nil, errorx.ErrNotFound
}

func (f *fakeMemberRepo) FindByChatUuid(chatUuid string) ([]model.ChatMember, error) {
	return f.members[chatUuid], nil
}

func (f *fakeMemberRepo) FindByUserUuid(userUuid string) ([]model.ChatMember, error) {
	var out []model.ChatMember
	for _, ms := range f.members {
		for _, m := range ms {
			if m.UserUuid == userUuid {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// fakeUserRepo 只实现降级路径用到的查询
type fakeUserRepo struct {
	repository.UserRepository
	users map[string]*model.UserInfo
}

func (f *fakeUserRepo) FindByUuid(uuid string) (*model.UserInfo, error) {
	if u, ok := f.users[uuid]; ok {
		return u, nil
	}
	return nil, errorx.ErrNotFound
}

func (f *fakeUserRepo) UpdateOnlineStatus(uuid string, online bool, at time.Time) error {
	if u, ok := f.users[uuid]; ok {
		u.IsOnline = online
	}
	return nil
}

// capturingPublisher 记录每次广播
type capturingPublisher struct {
	mu     sync.Mutex
	kinds  []string
	userId [][]string
}

func (p *capturingPublisher) Publish(userIds []string, kind string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, kind)
	p.userId = append(p.userId, userIds)
	return nil
}

func newTestService(cache *fakeCache, members map[string][]model.ChatMember) (*presenceService, *capturingPublisher) {
	pub := &capturingPublisher{}
	repos := &repository.Repositories{
		User:   &fakeUserRepo{users: map[string]*model.UserInfo{"U_A": {Uuid: "U_A"}}},
		Member: &fakeMemberRepo{members: members},
	}
	return NewPresenceService(repos, cache, pub), pub
}

func TestOnlineRoundTrip(t *testing.T) {
	cache := newFakeCache()
	svc, _ := newTestService(cache, nil)

	if err := svc.SetOnline("U_A"); err != nil {
		t.Fatalf("set online: %v", err)
	}
	online, err := svc.IsOnline("U_A")
	if err != nil || !online {
		t.Fatalf("after set online: %v %v", online, err)
	}

	if err := svc.SetOffline("U_A"); err != nil {
		t.Fatalf("set offline: %v", err)
	}
	online, err = svc.IsOnline("U_A")
	if err != nil || online {
		t.Fatalf("after set offline: %v %v", online, err)
	}
}

func TestIsOnlineDegradesToDB(t *testing.T) {
	cache := newFakeCache()
	cache.broken = true
	svc, _ := newTestService(cache, nil)

	// Redis 不可用时降级读库里的冗余标志
	online, err := svc.IsOnline("U_A")
	if err != nil || online {
		t.Fatalf("degraded lookup: %v %v", online, err)
	}

	// 未知用户视为离线而非错误
	online, err = svc.IsOnline("U_MISSING")
	if err != nil || online {
		t.Fatalf("unknown user: %v %v", online, err)
	}
}

func TestTypingBroadcast(t *testing.T) {
	members := map[string][]model.ChatMember{
		"C_1": {
			{ChatUuid: "C_1", UserUuid: "U_A"},
			{ChatUuid: "C_1", UserUuid: "U_B"},
		},
	}
	cache := newFakeCache()
	svc, pub := newTestService(cache, members)

	if err := svc.Typing("U_A", request.TypingRequest{ChatId: "C_1", IsTyping: true}); err != nil {
		t.Fatalf("typing: %v", err)
	}
	if len(pub.kinds) != 1 || pub.kinds[0] != "typing" {
		t.Fatalf("broadcast kinds: %v", pub.kinds)
	}
	// 只发给会话内除自己外的成员
	if len(pub.userId[0]) != 1 || pub.userId[0][0] != "U_B" {
		t.Fatalf("broadcast targets: %v", pub.userId[0])
	}

	// 非成员的 typing 信号静默丢弃
	if err := svc.Typing("U_X", request.TypingRequest{ChatId: "C_1", IsTyping: true}); err != nil {
		t.Fatalf("non-member typing: %v", err)
	}
	if len(pub.kinds) != 1 {
		t.Fatalf("non-member signal must not broadcast: %v", pub.kinds)
	}
}

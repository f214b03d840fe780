package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vanish_chat_server/internal/dto/request"
	"vanish_chat_server/internal/dto/respond"
	"vanish_chat_server/internal/gateway/websocket"
	"vanish_chat_server/internal/handler"
	"vanish_chat_server/internal/https_server"
	"vanish_chat_server/internal/service"
	"vanish_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
)

type stubUserService struct{}

type stubLifecycleService struct{}

type stubMembershipService struct{}

type stubMessageService struct{}

type stubRetentionService struct{}

type stubPresenceService struct{}

type stubStorage struct{}

func (s stubUserService) Register(req request.RegisterRequest) (*respond.LoginRespond, error) {
	return &respond.LoginRespond{}, nil
}
func (s stubUserService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	return &respond.LoginRespond{}, nil
}
func (s stubUserService) RefreshToken(req request.RefreshTokenRequest) (*respond.RefreshTokenRespond, error) {
	return &respond.RefreshTokenRespond{}, nil
}
func (s stubUserService) Logout(userId string) error { return nil }
func (s stubUserService) UpdateUserInfo(userId string, req request.UpdateUserInfoRequest) error {
	return nil
}
func (s stubUserService) GetUserInfo(uuid string) (*respond.GetUserInfoRespond, error) {
	return &respond.GetUserInfoRespond{}, nil
}
func (s stubUserService) SearchUsers(callerId, keyword string) ([]respond.GetUserInfoRespond, error) {
	return []respond.GetUserInfoRespond{}, nil
}
func (s stubUserService) DeleteAccount(userId string) error { return nil }

func (s stubLifecycleService) CreateDirectChat(callerId string, req request.CreateDirectChatRequest) (*respond.GetChatInfoRespond, error) {
	return &respond.GetChatInfoRespond{}, nil
}
func (s stubLifecycleService) CreateGroupChat(callerId string, req request.CreateGroupChatRequest) (*respond.GetChatInfoRespond, error) {
	return &respond.GetChatInfoRespond{}, nil
}
func (s stubLifecycleService) AcceptRequest(callerId, chatId string) error { return nil }
func (s stubLifecycleService) RejectRequest(callerId, chatId string) error { return nil }
func (s stubLifecycleService) CloseChat(callerId, chatId string) error     { return nil }
func (s stubLifecycleService) BlockChat(callerId, chatId string) error     { return nil }
func (s stubLifecycleService) DeleteChat(callerId, chatId string) error    { return nil }
func (s stubLifecycleService) UpdateRetention(callerId string, req request.UpdateRetentionRequest) error {
	return nil
}
func (s stubLifecycleService) GetChatList(callerId string) ([]respond.ChatListRespond, error) {
	return []respond.ChatListRespond{}, nil
}
func (s stubLifecycleService) GetRequestList(callerId string) ([]respond.ChatListRespond, error) {
	return []respond.ChatListRespond{}, nil
}
func (s stubLifecycleService) GetChatInfo(callerId, chatId string) (*respond.GetChatInfoRespond, error) {
	return &respond.GetChatInfoRespond{}, nil
}

func (s stubMembershipService) AddMember(callerId string, req request.AddMemberRequest) error {
	return nil
}
func (s stubMembershipService) RemoveMember(callerId string, req request.RemoveMemberRequest) error {
	return nil
}
func (s stubMembershipService) SetAdmin(callerId string, req request.SetAdminRequest) error {
	return nil
}
func (s stubMembershipService) MarkRead(callerId, chatId string) error { return nil }
func (s stubMembershipService) GetMemberList(callerId, chatId string) ([]respond.ChatMemberRespond, error) {
	return []respond.ChatMemberRespond{}, nil
}

func (s stubMessageService) SendMessage(callerId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	return &respond.MessageRespond{}, nil
}
func (s stubMessageService) GetMessageList(callerId, chatId string) ([]respond.MessageRespond, error) {
	return []respond.MessageRespond{}, nil
}
func (s stubMessageService) DeleteMessage(callerId, messageId string) error        { return nil }
func (s stubMessageService) React(callerId string, req request.ReactRequest) error { return nil }
func (s stubMessageService) Unreact(callerId string, req request.UnreactRequest) error {
	return nil
}

func (s stubRetentionService) ConsumeMedia(callerId, messageId string) (*respond.ConsumeMediaRespond, error) {
	return &respond.ConsumeMediaRespond{}, nil
}
func (s stubRetentionService) SweepOnce(ctx context.Context) error { return nil }
func (s stubRetentionService) Run(ctx context.Context)             {}

func (s stubPresenceService) SetOnline(userId string) error  { return nil }
func (s stubPresenceService) SetOffline(userId string) error { return nil }
func (s stubPresenceService) Heartbeat(userId string) error  { return nil }
func (s stubPresenceService) IsOnline(userId string) (bool, error) {
	return true, nil
}
func (s stubPresenceService) Typing(callerId string, req request.TypingRequest) error { return nil }

func (s stubStorage) Put(ctx context.Context, key string, data []byte) error { return nil }
func (s stubStorage) Get(ctx context.Context, key string) ([]byte, error) {
	return []byte("data"), nil
}
func (s stubStorage) Delete(ctx context.Context, key string) error { return nil }
func (s stubStorage) SignedURL(key string) (string, error) {
	return "http://localhost/media/" + key + "?exp=1&sig=x", nil
}
func (s stubStorage) VerifySignature(key string, expiry int64, sig string) bool { return true }

func mustJSON(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, client *http.Client, method, url string, body io.Reader, authHeader string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request %s %s: %v", method, url, err)
	}
	return resp
}

func requireBusinessOK(t *testing.T, path string, resp *http.Response) {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("%s status=%d", path, resp.StatusCode)
	}
	var body struct {
		Code int `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("%s decode: %v", path, err)
	}
	if body.Code != 1000 {
		t.Fatalf("%s code=%d", path, body.Code)
	}
}

func TestAllHTTPAndWebSocketEndpoints_Smoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwt.Init("test-secret", 15, 168)
	if err := handler.InitTrans("zh"); err != nil {
		t.Fatalf("init trans: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.InitHub()
	go hub.Start(ctx)

	svcs := &service.Services{
		User:       stubUserService{},
		Lifecycle:  stubLifecycleService{},
		Membership: stubMembershipService{},
		Message:    stubMessageService{},
		Retention:  stubRetentionService{},
		Presence:   stubPresenceService{},
	}

	engine := https_server.Init(handler.NewHandlers(svcs, stubStorage{}, hub))
	server := httptest.NewServer(engine)
	defer server.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	accessToken, err := jwt.GenerateAccessToken("U_TEST")
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	authHeader := "Bearer " + accessToken

	// ===== 公共接口（无需鉴权） =====
	requireBusinessOK(t, "/register", doReq(t, client, http.MethodPost, server.URL+"/register", mustJSON(t, map[string]any{
		"handle": "alice01", "nickname": "alice", "password": "123456",
	}), ""))
	requireBusinessOK(t, "/login", doReq(t, client, http.MethodPost, server.URL+"/login", mustJSON(t, map[string]any{
		"handle": "alice01", "password": "123456",
	}), ""))
	requireBusinessOK(t, "/auth/refresh", doReq(t, client, http.MethodPost, server.URL+"/auth/refresh", mustJSON(t, map[string]any{
		"refreshToken": "any",
	}), ""))

	// ===== 未携带令牌访问受保护接口 =====
	resp := doReq(t, client, http.MethodGet, server.URL+"/chat/list", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("/chat/list without token status=%d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// ===== 用户接口 =====
	requireBusinessOK(t, "/user/getUserInfo", doReq(t, client, http.MethodGet, server.URL+"/user/getUserInfo", nil, authHeader))
	requireBusinessOK(t, "/user/search", doReq(t, client, http.MethodGet, server.URL+"/user/search?keyword=ali", nil, authHeader))
	requireBusinessOK(t, "/user/updateUserInfo", doReq(t, client, http.MethodPost, server.URL+"/user/updateUserInfo", mustJSON(t, map[string]any{
		"nickname": "alice2",
	}), authHeader))
	requireBusinessOK(t, "/user/logout", doReq(t, client, http.MethodPost, server.URL+"/user/logout", nil, authHeader))
	requireBusinessOK(t, "/user/deleteAccount", doReq(t, client, http.MethodPost, server.URL+"/user/deleteAccount", nil, authHeader))

	// ===== 会话接口 =====
	requireBusinessOK(t, "/chat/createDirect", doReq(t, client, http.MethodPost, server.URL+"/chat/createDirect", mustJSON(t, map[string]any{
		"targetId": "U_B",
	}), authHeader))
	requireBusinessOK(t, "/chat/createGroup", doReq(t, client, http.MethodPost, server.URL+"/chat/createGroup", mustJSON(t, map[string]any{
		"name": "g", "memberIds": []string{"U_B"},
	}), authHeader))
	for _, path := range []string{"/chat/accept", "/chat/reject", "/chat/close", "/chat/block", "/chat/delete"} {
		requireBusinessOK(t, path, doReq(t, client, http.MethodPost, server.URL+path, mustJSON(t, map[string]any{
			"chatId": "C_TEST",
		}), authHeader))
	}
	requireBusinessOK(t, "/chat/updateRetention", doReq(t, client, http.MethodPost, server.URL+"/chat/updateRetention", mustJSON(t, map[string]any{
		"chatId": "C_TEST", "preference": 2,
	}), authHeader))
	requireBusinessOK(t, "/chat/list", doReq(t, client, http.MethodGet, server.URL+"/chat/list", nil, authHeader))
	requireBusinessOK(t, "/chat/requestList", doReq(t, client, http.MethodGet, server.URL+"/chat/requestList", nil, authHeader))
	requireBusinessOK(t, "/chat/info", doReq(t, client, http.MethodGet, server.URL+"/chat/info?chatId=C_TEST", nil, authHeader))
	requireBusinessOK(t, "/chat/addMember", doReq(t, client, http.MethodPost, server.URL+"/chat/addMember", mustJSON(t, map[string]any{
		"chatId": "C_TEST", "userId": "U_B",
	}), authHeader))
	requireBusinessOK(t, "/chat/removeMember", doReq(t, client, http.MethodPost, server.URL+"/chat/removeMember", mustJSON(t, map[string]any{
		"chatId": "C_TEST", "userId": "U_B",
	}), authHeader))
	requireBusinessOK(t, "/chat/setAdmin", doReq(t, client, http.MethodPost, server.URL+"/chat/setAdmin", mustJSON(t, map[string]any{
		"chatId": "C_TEST", "userId": "U_B", "isAdmin": true,
	}), authHeader))
	requireBusinessOK(t, "/chat/markRead", doReq(t, client, http.MethodPost, server.URL+"/chat/markRead", mustJSON(t, map[string]any{
		"chatId": "C_TEST",
	}), authHeader))
	requireBusinessOK(t, "/chat/memberList", doReq(t, client, http.MethodGet, server.URL+"/chat/memberList?chatId=C_TEST", nil, authHeader))

	// ===== 消息接口 =====
	requireBusinessOK(t, "/message/send", doReq(t, client, http.MethodPost, server.URL+"/message/send", mustJSON(t, map[string]any{
		"chatId": "C_TEST", "type": 0, "content": "hi",
	}), authHeader))
	requireBusinessOK(t, "/message/list", doReq(t, client, http.MethodGet, server.URL+"/message/list?chatId=C_TEST", nil, authHeader))
	requireBusinessOK(t, "/message/delete", doReq(t, client, http.MethodPost, server.URL+"/message/delete", mustJSON(t, map[string]any{
		"messageId": "1",
	}), authHeader))
	requireBusinessOK(t, "/message/consumeMedia", doReq(t, client, http.MethodPost, server.URL+"/message/consumeMedia", mustJSON(t, map[string]any{
		"messageId": "1",
	}), authHeader))
	requireBusinessOK(t, "/message/react", doReq(t, client, http.MethodPost, server.URL+"/message/react", mustJSON(t, map[string]any{
		"messageId": "1", "emoji": "👍",
	}), authHeader))
	requireBusinessOK(t, "/message/unreact", doReq(t, client, http.MethodPost, server.URL+"/message/unreact", mustJSON(t, map[string]any{
		"messageId": "1",
	}), authHeader))

	// ===== 媒体接口 =====
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "test.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	// 一个最小 PNG 头，满足 http.DetectContentType
	_, _ = fw.Write([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
	_ = w.Close()
	uploadReq, err := http.NewRequest(http.MethodPost, server.URL+"/media/upload", &buf)
	if err != nil {
		t.Fatalf("new upload request: %v", err)
	}
	uploadReq.Header.Set("Content-Type", w.FormDataContentType())
	uploadReq.Header.Set("Authorization", authHeader)
	uploadResp, err := client.Do(uploadReq)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	requireBusinessOK(t, "/media/upload", uploadResp)

	resp = doReq(t, client, http.MethodGet, server.URL+"/media/mkey.png?exp=9999999999&sig=x", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/media download status=%d", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// ===== WebSocket =====
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	header := http.Header{}
	header.Set("Authorization", authHeader)
	conn, wsResp, err := gorillaws.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	if wsResp != nil {
		_ = wsResp.Body.Close()
	}
	// typing 信号上行不应断开连接
	if err := conn.WriteJSON(map[string]any{"kind": "typing", "chatId": "C_TEST", "isTyping": true}); err != nil {
		t.Fatalf("ws write: %v", err)
	}
	time.Sleep(100 * time.Millisecond)
	_ = conn.Close()
}

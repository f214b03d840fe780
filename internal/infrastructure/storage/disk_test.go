package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"vanish_chat_server/pkg/errorx"
)

func newTestStorage(t *testing.T) *diskStorage {
	t.Helper()
	return &diskStorage{
		basePath:      t.TempDir(),
		signSecret:    []byte("test-secret"),
		signExpiry:    5 * time.Minute,
		publicBaseURL: "http://localhost:8000",
	}
}

func TestPutGetDelete(t *testing.T) {
	d := newTestStorage(t)
	ctx := context.Background()

	if err := d.Put(ctx, "m123.png", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := d.Get(ctx, "m123.png")
	if err != nil || string(data) != "payload" {
		t.Fatalf("get: %q %v", data, err)
	}

	if err := d.Delete(ctx, "m123.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := d.Get(ctx, "m123.png"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("get after delete: %v", err)
	}

	// 删除不存在的对象不视为错误
	if err := d.Delete(ctx, "missing.png"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestSanitizeKeyRejectsTraversal(t *testing.T) {
	for _, key := range []string{"../etc/passwd", "a/../../b", "", "/"} {
		if _, err := sanitizeKey(key); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
	if cleaned, err := sanitizeKey("dir/obj.png"); err != nil || cleaned != "dir/obj.png" {
		t.Fatalf("normal key: %q %v", cleaned, err)
	}
}

func TestSignedURLRoundTrip(t *testing.T) {
	d := newTestStorage(t)

	url, err := d.SignedURL("m456.ogg")
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8000/media/m456.ogg?exp=") {
		t.Fatalf("unexpected url: %s", url)
	}

	expiry := time.Now().Add(time.Minute).Unix()
	sig := d.sign("m456.ogg", expiry)
	if !d.VerifySignature("m456.ogg", expiry, sig) {
		t.Fatal("valid signature rejected")
	}

	// 签名与 key 绑定
	if d.VerifySignature("other.ogg", expiry, sig) {
		t.Fatal("signature for another key accepted")
	}
	// 篡改有效期后签名失效
	if d.VerifySignature("m456.ogg", expiry+60, sig) {
		t.Fatal("tampered expiry accepted")
	}
	// 过期签名拒绝
	pastExpiry := time.Now().Add(-time.Minute).Unix()
	if d.VerifySignature("m456.ogg", pastExpiry, d.sign("m456.ogg", pastExpiry)) {
		t.Fatal("expired signature accepted")
	}
}

package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vanish_chat_server/internal/config"
	"vanish_chat_server/pkg/errorx"
)

// diskStorage 基于本地磁盘的 ObjectStorage 实现
// 对象按 key 落盘到 basePath 下，签名使用 HMAC-SHA256
type diskStorage struct {
	basePath      string
	signSecret    []byte
	signExpiry    time.Duration
	publicBaseURL string
}

// store 全局存储实例
var store ObjectStorage

// Init 初始化对象存储
func Init() error {
	conf := config.GetConfig().StorageConfig
	if err := os.MkdirAll(conf.BasePath, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	expiry := time.Duration(conf.SignExpiryMin) * time.Minute
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	store = &diskStorage{
		basePath:      conf.BasePath,
		signSecret:    []byte(conf.SignSecret),
		signExpiry:    expiry,
		publicBaseURL: conf.PublicBaseURL,
	}
	return nil
}

// GetStorage 获取全局存储实例
func GetStorage() ObjectStorage {
	return store
}

// sanitizeKey 拒绝路径穿越
func sanitizeKey(key string) (string, error) {
	cleaned := filepath.Clean("/" + key)
	if strings.Contains(cleaned, "..") || cleaned == "/" {
		return "", errorx.Newf(errorx.CodeInvalidParam, "非法对象 key: %s", key)
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}

func (d *diskStorage) pathFor(key string) (string, error) {
	cleaned, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.basePath, cleaned), nil
}

func (d *diskStorage) Put(ctx context.Context, key string, data []byte) error {
	path, err := d.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errorx.Wrapf(err, errorx.CodeRetryableIO, "创建对象目录 key=%s", key)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errorx.Wrapf(err, errorx.CodeRetryableIO, "写入对象 key=%s", key)
	}
	return nil
}

func (d *diskStorage) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := d.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorx.Wrapf(err, errorx.CodeNotFound, "对象不存在 key=%s", key)
		}
		return nil, errorx.Wrapf(err, errorx.CodeRetryableIO, "读取对象 key=%s", key)
	}
	return data, nil
}

func (d *diskStorage) Delete(ctx context.Context, key string) error {
	path, err := d.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errorx.Wrapf(err, errorx.CodeRetryableIO, "删除对象 key=%s", key)
	}
	return nil
}

// sign 计算 key+expiry 的 HMAC-SHA256 签名
func (d *diskStorage) sign(key string, expiry int64) string {
	mac := hmac.New(sha256.New, d.signSecret)
	fmt.Fprintf(mac, "%s:%d", key, expiry)
	return hex.EncodeToString(mac.Sum(nil))
}

func (d *diskStorage) SignedURL(key string) (string, error) {
	cleaned, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(d.signExpiry).Unix()
	sig := d.sign(cleaned, expiry)
	return fmt.Sprintf("%s/media/%s?exp=%d&sig=%s", d.publicBaseURL, cleaned, expiry, sig), nil
}

func (d *diskStorage) VerifySignature(key string, expiry int64, sig string) bool {
	if time.Now().Unix() > expiry {
		return false
	}
	cleaned, err := sanitizeKey(key)
	if err != nil {
		return false
	}
	expected := d.sign(cleaned, expiry)
	return hmac.Equal([]byte(expected), []byte(sig))
}

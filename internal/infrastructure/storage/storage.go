// Package storage 提供对象存储抽象
// 媒体消息（图片/语音）与头像通过此层读写，下载走带签名的临时 URL
package storage

import (
	"context"
)

// ObjectStorage 对象存储接口
// 核心只需要 put / get / delete / 签名 URL 四种能力，
// 便于替换为 OSS、S3 等云端实现
type ObjectStorage interface {
	// Put 写入对象
	Put(ctx context.Context, key string, data []byte) error
	// Get 读取对象
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete 删除对象（对象不存在不视为错误）
	Delete(ctx context.Context, key string) error
	// SignedURL 生成带签名的临时下载地址
	SignedURL(key string) (string, error)
	// VerifySignature 校验下载请求携带的签名与有效期
	VerifySignature(key string, expiry int64, sig string) bool
}

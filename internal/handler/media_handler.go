// Package handler 提供 HTTP 请求处理器
// 本文件处理媒体对象的上传与签名下载
package handler

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"vanish_chat_server/internal/dto/respond"
	"vanish_chat_server/internal/infrastructure/storage"
	"vanish_chat_server/pkg/constants"
	"vanish_chat_server/pkg/errorx"
	"vanish_chat_server/pkg/util/random"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MediaHandler 媒体请求处理器
// 上传返回对象 key，发消息时把 key 填入消息体；
// 下载只认带签名的临时地址，签名由 consumeMedia 或消息列表下发
type MediaHandler struct {
	store storage.ObjectStorage
}

// NewMediaHandler 创建媒体处理器实例
func NewMediaHandler(store storage.ObjectStorage) *MediaHandler {
	return &MediaHandler{store: store}
}

// Upload 上传媒体文件
// POST /media/upload (multipart/form-data, 字段名 file)
// 响应: respond.UploadMediaRespond
func (h *MediaHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "缺少上传文件"))
		return
	}
	if fileHeader.Size > constants.FILE_MAX_SIZE*1024 {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "文件大小超出限制"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		zap.L().Error("打开上传文件失败", zap.Error(err))
		HandleError(c, errorx.ErrServerBusy)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		zap.L().Error("读取上传文件失败", zap.Error(err))
		HandleError(c, errorx.ErrServerBusy)
		return
	}

	// 对象 key 由服务端生成，不信任客户端文件名
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	key := fmt.Sprintf("m%s%s", random.GetNowAndLenRandomString(13), ext)
	if err := h.store.Put(c.Request.Context(), key, data); err != nil {
		HandleError(c, err)
		return
	}

	zap.L().Info("媒体上传成功",
		zap.String("user_id", c.GetString("user_id")),
		zap.String("key", key),
		zap.Int64("size", fileHeader.Size),
	)
	HandleSuccess(c, respond.UploadMediaRespond{Key: key})
}

// Download 下载媒体对象
// GET /media/*key?exp=xxx&sig=xxx
// 身份校验走 URL 签名而非 JWT，签名与 key 和有效期绑定
func (h *MediaHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	exp, err := strconv.ParseInt(c.Query("exp"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	if !h.store.VerifySignature(key, exp, c.Query("sig")) {
		c.Status(http.StatusForbidden)
		return
	}

	data, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			c.Status(http.StatusNotFound)
			return
		}
		zap.L().Error("读取媒体对象失败", zap.String("key", key), zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// Package model 定义数据库实体模型
// 本文件定义会话模型，单聊与群聊共用一张表
package model

import (
	"database/sql"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 会话生命周期状态
// request 为单聊的初始状态（无历史往来时由一方发起），群聊创建即为 active
const (
	ChatStatusRequest int8 = 0 // 消息请求，待接收方接受
	ChatStatusActive  int8 = 1 // 正常会话
	ChatStatusBlocked int8 = 2 // 已拉黑，双方列表均不可见
)

// 消息自动删除偏好
const (
	AutoDeleteOff     int8 = 0 // 不自动删除
	AutoDeleteOnClose int8 = 1 // 关闭会话时删除已读消息
	AutoDelete24h     int8 = 2 // 超过 24 小时删除
	AutoDelete7d      int8 = 3 // 超过 7 天删除
)

// ChatInfo 会话模型
// 对应数据库 chat_info 表
// 不变式：非群聊会话恒有且仅有 2 条成员记录；群聊至少 1 名成员且至少 1 名管理员，
// 创建者是永久管理员，任何人不能将其降级或移出
type ChatInfo struct {
	gorm.Model

	// Uuid 会话唯一标识
	// 格式：C + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:会话uuid"`

	// IsGroup 是否群聊
	IsGroup bool `gorm:"column:is_group;not null;default:false;comment:是否群聊"`

	// Name 群名称，单聊为空
	Name string `gorm:"column:name;type:varchar(30);comment:群名称"`

	// Avatar 群头像，单聊为空
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:群头像"`

	// AdminIds 群管理员用户 uuid 数组，JSON 存储
	// 成员是否管理员即看其 uuid 是否在此数组中
	AdminIds datatypes.JSON `gorm:"column:admin_ids;comment:管理员uuid数组"`

	// CreatedBy 创建者用户 uuid
	CreatedBy string `gorm:"column:created_by;index;type:char(20);not null;comment:创建者uuid"`

	// Status 会话状态，见 ChatStatus* 常量
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.请求，1.正常，2.拉黑"`

	// AutoDeletePreference 消息自动删除偏好，见 AutoDelete* 常量
	AutoDeletePreference int8 `gorm:"column:auto_delete_preference;not null;default:0;comment:自动删除偏好"`

	// AutoDeleteUpdatedAt 偏好最近一次变更时间
	AutoDeleteUpdatedAt sql.NullTime `gorm:"column:auto_delete_updated_at;type:datetime;comment:偏好变更时间"`
}

// TableName 指定表名
func (ChatInfo) TableName() string {
	return "chat_info"
}

// AdminList 解析管理员数组
// 解析失败视为无管理员（空数组兜底）
func (c *ChatInfo) AdminList() []string {
	if len(c.AdminIds) == 0 {
		return []string{}
	}
	var admins []string
	if err := json.Unmarshal(c.AdminIds, &admins); err != nil {
		return []string{}
	}
	return admins
}

// IsAdmin 判断用户是否为该群管理员
func (c *ChatInfo) IsAdmin(userUuid string) bool {
	for _, id := range c.AdminList() {
		if id == userUuid {
			return true
		}
	}
	return false
}

// SetAdminList 序列化写回管理员数组
func (c *ChatInfo) SetAdminList(admins []string) error {
	raw, err := json.Marshal(admins)
	if err != nil {
		return err
	}
	c.AdminIds = datatypes.JSON(raw)
	return nil
}

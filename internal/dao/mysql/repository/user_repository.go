// Package repository 提供数据访问层的具体实现
// 本文件实现 UserRepository 接口
package repository

import (
	"time"

	"vanish_chat_server/internal/model"

	"gorm.io/gorm"
)

// userRepository UserRepository 接口的实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUuid(uuid string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

func (r *userRepository) FindByHandle(handle string) (*model.UserInfo, error) {
	var user model.UserInfo
	if err := r.db.Where("handle = ?", handle).First(&user).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 handle=%s", handle)
	}
	return &user, nil
}

func (r *userRepository) FindByUuids(uuids []string) ([]model.UserInfo, error) {
	var users []model.UserInfo
	if len(uuids) == 0 {
		return users, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// SearchByHandle 按用户名前缀模糊搜索，排除自己
func (r *userRepository) SearchByHandle(prefix, excludeUuid string, limit int) ([]model.UserInfo, error) {
	var users []model.UserInfo
	if err := r.db.Where("handle LIKE ? AND uuid <> ?", prefix+"%", excludeUuid).
		Limit(limit).Find(&users).Error; err != nil {
		return nil, wrapDBErrorf(err, "搜索用户 prefix=%s", prefix)
	}
	return users, nil
}

func (r *userRepository) Create(user *model.UserInfo) error {
	if err := r.db.Create(user).Error; err != nil {
		return wrapDBError(err, "创建用户")
	}
	return nil
}

func (r *userRepository) Update(user *model.UserInfo) error {
	if err := r.db.Save(user).Error; err != nil {
		return wrapDBErrorf(err, "更新用户 uuid=%s", user.Uuid)
	}
	return nil
}

// UpdateOnlineStatus 更新在线标志
// 上线写 last_online_at，下线写 last_offline_at
func (r *userRepository) UpdateOnlineStatus(uuid string, online bool, at time.Time) error {
	updates := map[string]interface{}{"is_online": online}
	if online {
		updates["last_online_at"] = at
	} else {
		updates["last_offline_at"] = at
	}
	if err := r.db.Model(&model.UserInfo{}).Where("uuid = ?", uuid).
		Updates(updates).Error; err != nil {
		return wrapDBErrorf(err, "更新在线状态 uuid=%s", uuid)
	}
	return nil
}

func (r *userRepository) SoftDeleteByUuid(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.UserInfo{}).Error; err != nil {
		return wrapDBErrorf(err, "删除用户 uuid=%s", uuid)
	}
	return nil
}

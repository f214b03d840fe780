package request

// CreateDirectChatRequest 创建单聊（无历史往来时会话以 request 状态落库）
type CreateDirectChatRequest struct {
	TargetId string `json:"targetId" binding:"required"`
}

// CreateGroupChatRequest 创建群聊
type CreateGroupChatRequest struct {
	Name      string   `json:"name" binding:"required,max=30"`
	Avatar    string   `json:"avatar" binding:"omitempty,max=255"`
	MemberIds []string `json:"memberIds" binding:"required,min=1"`
}

// ChatActionRequest 会话级操作（接受/拒绝/关闭/拉黑/删除）
type ChatActionRequest struct {
	ChatId string `json:"chatId" binding:"required"`
}

// UpdateRetentionRequest 修改消息自动删除偏好
// preference: 0 关闭，1 关闭会话时删除，2 24小时，3 7天
type UpdateRetentionRequest struct {
	ChatId     string `json:"chatId" binding:"required"`
	Preference int8   `json:"preference" binding:"min=0,max=3"`
}

// AddMemberRequest 添加群成员
type AddMemberRequest struct {
	ChatId string `json:"chatId" binding:"required"`
	UserId string `json:"userId" binding:"required"`
}

// RemoveMemberRequest 移除群成员/退出会话
type RemoveMemberRequest struct {
	ChatId string `json:"chatId" binding:"required"`
	UserId string `json:"userId" binding:"required"`
}

// SetAdminRequest 设置/取消群管理员
type SetAdminRequest struct {
	ChatId  string `json:"chatId" binding:"required"`
	UserId  string `json:"userId" binding:"required"`
	IsAdmin bool   `json:"isAdmin"`
}

// MarkReadRequest 标记会话已读
type MarkReadRequest struct {
	ChatId string `json:"chatId" binding:"required"`
}

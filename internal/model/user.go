package model

import "time"

// 角色编码
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
	RoleUser  = "USER"
)

// DefaultRole 注册用户默认获得的角色
const DefaultRole = RoleUser

// User 用户（凭据与账户状态）
type User struct {
	BaseModel
	Username              string     `gorm:"type:varchar(32);not null"  json:"username"`
	PasswordHash          string     `gorm:"type:varchar(100);not null" json:"-"`
	StudentID             string     `gorm:"type:varchar(20);not null"  json:"student_id"`
	RealName              string     `gorm:"type:varchar(50)"           json:"real_name"`
	Phone                 string     `gorm:"type:varchar(20)"           json:"phone"`
	Email                 string     `gorm:"type:varchar(100)"          json:"email"`
	Avatar                string     `gorm:"type:varchar(255)"          json:"avatar"`
	Enabled               bool       `gorm:"not null;default:true"      json:"enabled"`
	AccountNonExpired     bool       `gorm:"not null;default:true"      json:"account_non_expired"`
	AccountNonLocked      bool       `gorm:"not null;default:true"      json:"account_non_locked"`
	CredentialsNonExpired bool       `gorm:"not null;default:true"      json:"credentials_non_expired"`
	LastLoginIP           string     `gorm:"column:last_login_ip;type:varchar(64)" json:"last_login_ip"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty"`
	LoginCount            int        `gorm:"not null;default:0"         json:"login_count"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// NewActiveUser 构造一个状态正常的新用户
func NewActiveUser(username, studentID, passwordHash string) *User {
	return &User{
		Username:              username,
		StudentID:             studentID,
		PasswordHash:          passwordHash,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
	}
}

// Role 角色
type Role struct {
	BaseModel
	Code        string `gorm:"type:varchar(32);not null" json:"code"`
	Name        string `gorm:"type:varchar(50);not null" json:"name"`
	Description string `gorm:"type:varchar(255)"         json:"description"`
}

// TableName 指定表名
func (Role) TableName() string { return "roles" }

// UserRole 用户-角色关联
type UserRole struct {
	BaseModel
	UserID uint64 `gorm:"not null;index" json:"user_id"`
	RoleID uint64 `gorm:"not null;index" json:"role_id"`
}

// TableName 指定表名
func (UserRole) TableName() string { return "user_roles" }

// [自证通过] internal/model/user.go

package model

// 角色常量
const (
	RoleClient = "client" // 利用者
	RoleStaff  = "staff"  // 职员
	RoleAdmin  = "admin"  // 管理员
)

// 服务类别常量（仅 client 角色有意义）
const (
	CategoryCommute = "commute" // 到所：在设施现场出勤，休息窗口固定
	CategoryHome    = "home"    // 居家：远程出勤，休息自报 + 自动截止
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	LoginID      string `gorm:"type:varchar(50);not null"                      json:"login_id"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'client'"     json:"role"`
	Category     string `gorm:"type:varchar(20);not null;default:'commute'"    json:"category"`
	VersionedModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsPrivileged 是否具有覆盖他人批注/修正记录的特权角色
func (u *User) IsPrivileged() bool { return u.Role == RoleAdmin }

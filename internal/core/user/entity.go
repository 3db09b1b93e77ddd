package user

import "time"

// Role はユーザーのロールを表します。
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// IsAdminOrManager は管理操作が許可されるロールかを返します。
func (r Role) IsAdminOrManager() bool {
	return r == RoleAdmin || r == RoleManager
}

// User はユーザーエンティティです。
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	IsActive     bool
	DateJoined   time.Time
}

// Token はログイン時に発行される API トークンです。
type Token struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}

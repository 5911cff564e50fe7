package model

// 管理端角色
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
)

// User 管理端用户（资源 API /users）
type User struct {
	ID           ID     `json:"id,omitempty"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role"`
	PasswordHash string `json:"passwordHash"`
}

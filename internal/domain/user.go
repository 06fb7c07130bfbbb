package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Phone        string     `json:"phone"`
	PasswordHash string     `json:"-"`
	Role         *string    `json:"role,omitempty"` // nil пока пользователь не выбрал роль
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type UserSession struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	RefreshTokenHash string     `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	RevokedReason    *string    `json:"revoked_reason,omitempty"`
}

const (
	RoleAgent = "agent"
	RoleBuyer = "buyer"
)

// IsAgent сообщает, выбрал ли пользователь роль закупщика
func (u *User) IsAgent() bool {
	return u.Role != nil && *u.Role == RoleAgent
}

func (u *User) IsBuyer() bool {
	return u.Role != nil && *u.Role == RoleBuyer
}

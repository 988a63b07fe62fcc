package models

import (
	"time"
)

// User is a registered account. The password column only ever holds a bcrypt hash.
type User struct {
	UserID   int    `gorm:"primaryKey;column:id" json:"id"`
	Name     string `gorm:"column:nombre" json:"nombre"`
	Email    string `gorm:"column:email;uniqueIndex;size:255" json:"email"`
	Password string `gorm:"column:contraseña" json:"-"`
	IsAdmin  bool   `gorm:"column:is_admin" json:"is_admin"`
}

// Session binds a browser cookie to a user until it expires or is destroyed.
type Session struct {
	SessionID string    `gorm:"primaryKey;column:id;size:36" json:"id"`
	UserID    int       `gorm:"column:usuario_id;index" json:"usuario_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expires_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName overrides
func (User) TableName() string {
	return "usuarios"
}

func (Session) TableName() string {
	return "sesiones"
}

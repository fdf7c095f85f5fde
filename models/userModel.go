package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User tokens are stored as SHA-256 digests; the raw values only travel by email.
type User struct {
	gorm.Model
	FullName            string     `json:"fullName"`
	Email               string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Phone               string     `json:"phone"`
	Password            string     `json:"-"`
	Role                string     `json:"role" gorm:"size:16;default:user"`
	Verified            bool       `json:"verified"`
	ActivationTokenHash string     `json:"-" gorm:"size:64;index"`
	ResetTokenHash      string     `json:"-" gorm:"size:64;index"`
	ResetTokenExpiresAt *time.Time `json:"-"`
}

type LoginData struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupData struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type ForgotPasswordData struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordData struct {
	Password string `json:"password" binding:"required,min=8"`
}

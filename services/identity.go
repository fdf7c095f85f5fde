package services

import "github.com/Kariqs/storefront-api/models"

// Identity is the authenticated caller as supplied by the auth middleware.
type Identity struct {
	UserID uint
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

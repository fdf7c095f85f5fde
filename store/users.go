package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/storefront-api/models"
	"gorm.io/gorm"
)

var ErrDuplicate = errors.New("store: duplicate record")

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return count > 0, nil
}

func (s *Store) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ListUsers returns one page of accounts, oldest first, plus the total count.
func (s *Store) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	var users []models.User
	if err := query.Order("id").Limit(limit).Offset((page - 1) * limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, count, nil
}

// UpdateUser applies changes, keyed by column name, and returns the stored account.
func (s *Store) UpdateUser(ctx context.Context, id uint, changes map[string]any) (*models.User, error) {
	var user models.User
	err := s.Transaction(ctx, func(uow *UnitOfWork) error {
		db := s.conn(ctx, uow)
		if err := db.First(&user, id).Error; err != nil {
			return notFound(err)
		}
		if len(changes) == 0 {
			return nil
		}
		if err := db.Model(&user).Updates(changes).Error; err != nil {
			return fmt.Errorf("update user %d: %w", id, err)
		}
		return db.First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser soft-deletes the account and drops its cart. Orders stay for the
// store's records.
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(uow *UnitOfWork) error {
		db := s.conn(ctx, uow)
		res := db.Delete(&models.User{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete user %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		cartIDs := db.Unscoped().Model(&models.Cart{}).Select("id").Where("user_id = ?", id)
		if err := db.Where("cart_id IN (?)", cartIDs).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("delete cart items of user %d: %w", id, err)
		}
		if err := db.Unscoped().Where("user_id = ?", id).Delete(&models.Cart{}).Error; err != nil {
			return fmt.Errorf("delete cart of user %d: %w", id, err)
		}
		return nil
	})
}

// ActivateUser marks the account holding the activation digest as verified and
// consumes the token.
func (s *Store) ActivateUser(ctx context.Context, tokenHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("activation_token_hash = ? AND activation_token_hash <> ''", tokenHash).
		Updates(map[string]any{
			"verified":              true,
			"activation_token_hash": "",
		})
	if res.Error != nil {
		return fmt.Errorf("activate user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetPasswordResetToken(ctx context.Context, userID uint, tokenHash string, expiresAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_token_hash":       tokenHash,
			"reset_token_expires_at": expiresAt,
		})
	if res.Error != nil {
		return fmt.Errorf("save reset token for user %d: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword swaps in passwordHash for the account holding an unexpired reset
// digest. A successful reset also proves ownership of the address, so the account
// counts as verified afterwards.
func (s *Store) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("reset_token_hash = ? AND reset_token_hash <> '' AND reset_token_expires_at > ?", tokenHash, now).
		Updates(map[string]any{
			"password":               passwordHash,
			"verified":               true,
			"reset_token_hash":       "",
			"reset_token_expires_at": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("reset password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

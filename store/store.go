// Package store persists carts, products, payment methods and orders through gorm.
//
// Every repository call takes an explicit *UnitOfWork. A nil unit runs the statement
// in autocommit mode; a non-nil unit runs it inside that unit's transaction. No
// transaction handle is ever stored on the Store itself.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("store: record not found")
	ErrUnitFinished = errors.New("store: unit of work already finished")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for wiring and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// UnitOfWork is one database transaction. It must end with exactly one Commit or Abort;
// Abort after Commit is a no-op so callers can defer it.
type UnitOfWork struct {
	tx       *gorm.DB
	finished bool
}

func (s *Store) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &UnitOfWork{tx: tx}, nil
}

func (u *UnitOfWork) Commit() error {
	if u.finished {
		return ErrUnitFinished
	}
	u.finished = true
	if err := u.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (u *UnitOfWork) Abort() error {
	if u.finished {
		return nil
	}
	u.finished = true
	if err := u.tx.Rollback().Error; err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// Transaction runs fn inside a fresh unit of work, committing when fn returns nil.
func (s *Store) Transaction(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	uow, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Abort()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *Store) conn(ctx context.Context, uow *UnitOfWork) *gorm.DB {
	if uow != nil {
		return uow.tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

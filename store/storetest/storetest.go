// Package storetest opens throwaway sqlite-backed stores for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Kariqs/storefront-api/initializers"
	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
	"github.com/stretchr/testify/require"
)

func New(t *testing.T) *store.Store {
	t.Helper()

	db, err := initializers.ConnectToDB(initializers.Config{
		DBDriver: "sqlite",
		DBURL:    filepath.Join(t.TempDir(), "store.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	})
	require.NoError(t, err)
	require.NoError(t, initializers.SyncDatabase(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.New(db)
}

// SeedProduct inserts a product priced in minor units.
func SeedProduct(t *testing.T, s *store.Store, name string, price models.Money) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Description: name, Price: price, Stock: 10}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func SeedUser(t *testing.T, s *store.Store, email, role string) *models.User {
	t.Helper()
	u := &models.User{FullName: email, Email: email, Password: "x", Role: role, Verified: true}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// Count returns the number of live rows of model.
func Count(t *testing.T, s *store.Store, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.DB().Model(model).Count(&n).Error)
	return n
}

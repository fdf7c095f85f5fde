package store

import (
	"context"
	"fmt"

	"github.com/Kariqs/storefront-api/models"
	"gorm.io/gorm"
)

func (s *Store) FindProduct(ctx context.Context, uow *UnitOfWork, id uint) (*models.Product, error) {
	var product models.Product
	if err := s.conn(ctx, uow).First(&product, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

// FindProductDetails loads a live product with its specification sheet.
func (s *Store) FindProductDetails(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Specifications", func(db *gorm.DB) *gorm.DB { return db.Order("product_specs.id") }).
		First(&product, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// ListProducts returns one page of products whose name contains search, plus the
// total number of matches.
func (s *Store) ListProducts(ctx context.Context, search string, page, limit int) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	var products []models.Product
	offset := (page - 1) * limit
	if err := query.Order("id").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, count, nil
}

// DeleteProduct soft-deletes the product; it disappears from FindProduct but stays
// referenced by past orders.
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProduct overwrites the catalog fields of product.ID. Prices already captured
// in carts and orders keep their old value.
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	return s.Transaction(ctx, func(uow *UnitOfWork) error {
		db := s.conn(ctx, uow)
		var existing models.Product
		if err := db.First(&existing, product.ID).Error; err != nil {
			return notFound(err)
		}
		err := db.Model(&existing).Updates(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"category":    product.Category,
			"price":       product.Price,
			"stock":       product.Stock,
			"new_arrival": product.NewArrival,
			"image_urls":  product.ImageURLs,
		}).Error
		if err != nil {
			return fmt.Errorf("update product %d: %w", product.ID, err)
		}
		return db.First(product, product.ID).Error
	})
}

// AddProductSpec appends a specification row to a live product.
func (s *Store) AddProductSpec(ctx context.Context, spec *models.ProductSpec) error {
	return s.Transaction(ctx, func(uow *UnitOfWork) error {
		if _, err := s.FindProduct(ctx, uow, spec.ProductID); err != nil {
			return err
		}
		if err := s.conn(ctx, uow).Create(spec).Error; err != nil {
			return fmt.Errorf("create spec for product %d: %w", spec.ProductID, err)
		}
		return nil
	})
}

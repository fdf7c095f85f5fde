package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/store"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

const (
	defaultProductPage  = 1
	defaultProductLimit = 12
	maxProductLimit     = 100
)

type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	FindProductDetails(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, search string, page, limit int) ([]models.Product, int64, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	AddProductSpec(ctx context.Context, spec *models.ProductSpec) error
}

type productInput struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Price       models.Money `json:"price" binding:"required,gt=0"`
	Stock       int          `json:"stock" binding:"gte=0"`
	NewArrival  bool         `json:"newArrival"`
	ImageURLs   []string     `json:"imageUrls"`
}

type productSpecInput struct {
	Label string `json:"label" binding:"required,max=128"`
	Value string `json:"value" binding:"required,max=512"`
}

// product builds the catalog row described by the input.
func (in productInput) product() (models.Product, error) {
	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		NewArrival:  in.NewArrival,
	}
	if product.Category == "" {
		product.Category = "Other"
	}
	if len(in.ImageURLs) > 0 {
		raw, err := json.Marshal(in.ImageURLs)
		if err != nil {
			return models.Product{}, err
		}
		product.ImageURLs = datatypes.JSON(raw)
	}
	return product, nil
}

type ProductController struct {
	products ProductStore
}

func NewProductController(products ProductStore) *ProductController {
	return &ProductController{products: products}
}

func (c *ProductController) CreateProduct(ctx *gin.Context) {
	var input productInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	product, err := input.product()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid image urls", err)
		return
	}

	if err := c.products.CreateProduct(ctx.Request.Context(), &product); err != nil {
		respondWithServiceError(ctx, "Failed to create product", err)
		return
	}
	ctx.JSON(http.StatusCreated, product)
}

func (c *ProductController) GetProducts(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", strconv.Itoa(defaultProductPage)))
	if err != nil || page < 1 {
		page = defaultProductPage
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultProductLimit)))
	if err != nil || limit < 1 || limit > maxProductLimit {
		limit = defaultProductLimit
	}

	products, count, err := c.products.ListProducts(ctx.Request.Context(), ctx.Query("search"), page, limit)
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch products", err)
		return
	}

	previousPage := page - 1
	nextPage := page + 1
	totalPages := int(math.Ceil(float64(count) / float64(limit)))

	ctx.JSON(http.StatusOK, gin.H{
		"products": products,
		"metadata": gin.H{
			"total":        count,
			"currentPage":  page,
			"limit":        limit,
			"hasPrevPage":  previousPage > 0,
			"hasNextPage":  totalPages > page,
			"previousPage": previousPage,
			"nextPage":     nextPage,
		},
	})
}

func (c *ProductController) GetProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	product, err := c.products.FindProductDetails(ctx.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		return
	}
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch product", err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// UpdateProduct replaces the product's catalog fields. Lines already in carts keep
// the price captured when they were added.
func (c *ProductController) UpdateProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var input productInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	product, err := input.product()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid image urls", err)
		return
	}
	product.ID = id

	if err := c.products.UpdateProduct(ctx.Request.Context(), &product); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			return
		}
		respondWithServiceError(ctx, "Failed to update product", err)
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func (c *ProductController) CreateProductSpec(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var input productSpecInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	spec := models.ProductSpec{ProductID: id, Label: input.Label, Value: input.Value}
	if err := c.products.AddProductSpec(ctx.Request.Context(), &spec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			return
		}
		respondWithServiceError(ctx, "Failed to create product specifications", err)
		return
	}
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Product specs added successfully", "specification": spec})
}

// DeleteProduct removes the product from the catalog. Existing carts keep the line
// until checkout, which then fails with product unavailable.
func (c *ProductController) DeleteProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.products.DeleteProduct(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
			return
		}
		respondWithServiceError(ctx, "Failed to delete product", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Product deleted successfully."})
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"groupbuy-service/internal/model"
	"groupbuy-service/internal/normalize"
	"groupbuy-service/pkg/database"
	"groupbuy-service/pkg/logger"
	"groupbuy-service/prometheus"
)

// ProductRequest defines the structure for catalog creation/update requests
type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Wave        string  `json:"wave" validate:"required"`
	Price       float64 `json:"price"`
	OrigPrice   float64 `json:"origPrice"`
	MOQ         int     `json:"moq"`
	Img         string  `json:"img"`
	Description string  `json:"description"`
	Link        string  `json:"link"`
	SelectStart string  `json:"selectStart"`
	SelectEnd   string  `json:"selectEnd"`
	SaleStart   string  `json:"saleStart"`
	SaleEnd     string  `json:"saleEnd"`
}

// ListProducts handles retrieving the catalog with optional wave filtering
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Listing catalog products")

	db := database.GetDB()
	var products []model.Product

	query := db

	// Filter by wave if specified
	wave := c.QueryParam("wave")
	if wave != "" {
		query = query.Where("場次 = ?", wave)
		log.Info("Filtering products by wave", zap.String("wave", wave))
	}

	result := query.Order("場次, id").Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products",
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	log.Info("Products retrieved successfully", zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single catalog entry by ID
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Getting product by ID", zap.String("product_id", id))

	var product model.Product
	result := database.GetDB().First(&product, id)
	if result.Error != nil {
		log.Error("Product not found",
			zap.String("product_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	log.Info("Product retrieved successfully",
		zap.String("product_id", id),
		zap.String("product_name", product.Name),
		zap.String("wave", product.Wave))
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles adding a catalog entry to a wave
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new product")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Name == "" || req.Wave == "" {
		log.Warn("Missing product name or wave")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "name and wave are required",
		})
	}

	log.Info("Product creation request",
		zap.String("name", req.Name),
		zap.String("wave", req.Wave),
		zap.Float64("price", req.Price),
		zap.Int("moq", req.MOQ))

	// Reject a second entry that would collapse onto an existing one after
	// name normalization; the intent ledger joins on the normalized name.
	var existing []model.Product
	database.GetDB().Where("場次 = ?", req.Wave).Find(&existing)
	for _, p := range existing {
		if normalize.Equal(p.Name, req.Name) {
			log.Warn("Product with this name already exists in the wave",
				zap.String("name", req.Name),
				zap.String("wave", req.Wave))
			return c.JSON(http.StatusConflict, echo.Map{
				"error": "Product with this name already exists in the wave",
			})
		}
	}

	product := model.Product{
		Name:        req.Name,
		Wave:        req.Wave,
		Price:       req.Price,
		OrigPrice:   req.OrigPrice,
		MOQ:         req.MOQ,
		Img:         req.Img,
		Description: req.Description,
		Link:        req.Link,
		SelectStart: req.SelectStart,
		SelectEnd:   req.SelectEnd,
		SaleStart:   req.SaleStart,
		SaleEnd:     req.SaleEnd,
	}

	result := database.GetDB().Create(&product)
	if result.Error != nil {
		log.Error("Failed to create product",
			zap.String("name", req.Name),
			zap.String("wave", req.Wave),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create product",
		})
	}

	prometheus.RecordProductOperation("create")
	log.Info("Product created successfully",
		zap.String("product_id", strconv.FormatUint(uint64(product.ID), 10)),
		zap.String("name", product.Name),
		zap.String("wave", product.Wave))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing catalog entry
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating product", zap.String("product_id", id))

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("product_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var product model.Product
	result := database.GetDB().First(&product, id)
	if result.Error != nil {
		log.Error("Product not found for update",
			zap.String("product_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	oldName := product.Name

	product.Name = req.Name
	product.Wave = req.Wave
	product.Price = req.Price
	product.OrigPrice = req.OrigPrice
	product.MOQ = req.MOQ
	product.Img = req.Img
	product.Description = req.Description
	product.Link = req.Link
	product.SelectStart = req.SelectStart
	product.SelectEnd = req.SelectEnd
	product.SaleStart = req.SaleStart
	product.SaleEnd = req.SaleEnd

	result = database.GetDB().Save(&product)
	if result.Error != nil {
		log.Error("Failed to update product",
			zap.String("product_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update product",
		})
	}

	prometheus.RecordProductOperation("update")
	log.Info("Product updated successfully",
		zap.String("product_id", id),
		zap.String("old_name", oldName),
		zap.String("new_name", product.Name),
		zap.String("wave", product.Wave))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles removing a catalog entry
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting product", zap.String("product_id", id))

	// Get product details before deleting
	var product model.Product
	preResult := database.GetDB().First(&product, id)
	if preResult.Error == nil {
		log.Info("Found product to delete",
			zap.String("product_id", id),
			zap.String("name", product.Name),
			zap.String("wave", product.Wave))
	}

	result := database.GetDB().Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product",
			zap.String("product_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete product",
		})
	}

	if result.RowsAffected == 0 {
		log.Warn("Product not found for deletion",
			zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Product not found",
		})
	}

	prometheus.RecordProductOperation("delete")
	log.Info("Product deleted successfully",
		zap.String("product_id", id),
		zap.Int64("rows_affected", result.RowsAffected))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
	})
}

package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"retro-store/analytics"
	"retro-store/database"
	"retro-store/models"
)

// withAbsoluteImage 相对图片路径补全为完整 URL
func withAbsoluteImage(p models.Product) models.Product {
	if p.Image == nil || !strings.HasPrefix(*p.Image, "/") {
		return p
	}
	url := cfg.PublicBaseURL + *p.Image
	p.Image = &url
	return p
}

func GetProducts(c *gin.Context) {
	products, err := repo.ListProducts(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to fetch products", err)
		return
	}

	products = analytics.FilterProducts(products,
		c.Query("search"),
		c.DefaultQuery("category", analytics.FilterAll),
		c.DefaultQuery("condition", analytics.FilterAll),
	)
	for i := range products {
		products[i] = withAbsoluteImage(products[i])
	}
	c.JSON(http.StatusOK, products)
}

func GetProductFacets(c *gin.Context) {
	products, err := repo.ListProducts(c.Request.Context())
	if err != nil {
		internalError(c, "Failed to fetch products", err)
		return
	}
	c.JSON(http.StatusOK, analytics.Facets(products))
}

func CreateProduct(c *gin.Context) {
	var form models.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := form.ToProduct()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err = repo.CreateProduct(c.Request.Context(), product)
	if err != nil {
		internalError(c, "Failed to save product", err)
		return
	}
	c.JSON(http.StatusOK, withAbsoluteImage(product))
}

func EditProduct(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	var patch models.ProductPatch
	if err := c.ShouldBind(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := repo.GetProduct(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		internalError(c, "Failed to load product", err)
		return
	}

	if err := patch.Apply(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := repo.UpdateProduct(c.Request.Context(), product); err != nil {
		internalError(c, "Failed to save product", err)
		return
	}
	c.JSON(http.StatusOK, withAbsoluteImage(product))
}

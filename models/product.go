package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. JSON keys follow the storefront API.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Category    string          `json:"tipo"`
	Price       decimal.Decimal `json:"precio"`
	Stock       int             `json:"stock"`
	Condition   string          `json:"condicion"`
	Image       *string         `json:"imagen"`
}

// ProductForm is the multipart body of a product create.
type ProductForm struct {
	Name        string `form:"nombre" binding:"required"`
	Description string `form:"descripcion"`
	Category    string `form:"tipo" binding:"required"`
	Price       string `form:"precio" binding:"required"`
	Stock       *int   `form:"stock" binding:"required,min=0"`
	Condition   string `form:"condicion" binding:"required"`
	Image       string `form:"imagen"`
}

// ProductPatch is the multipart body of a product edit. Nil fields keep
// their stored value.
type ProductPatch struct {
	Name        *string `form:"nombre"`
	Description *string `form:"descripcion"`
	Category    *string `form:"tipo"`
	Price       *string `form:"precio"`
	Stock       *int    `form:"stock" binding:"omitempty,min=0"`
	Condition   *string `form:"condicion"`
	Image       *string `form:"imagen"`
}

type ProductFacets struct {
	Categories []string `json:"categories"`
	Conditions []string `json:"conditions"`
}

// ToProduct validates the form and returns the product it describes.
func (f ProductForm) ToProduct() (Product, error) {
	price, err := parsePrice(f.Price)
	if err != nil {
		return Product{}, err
	}
	p := Product{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Price:       price,
		Stock:       *f.Stock,
		Condition:   f.Condition,
	}
	if f.Image != "" {
		image := f.Image
		p.Image = &image
	}
	return p, nil
}

// Apply copies every set field of the patch onto p.
func (f ProductPatch) Apply(p *Product) error {
	if f.Price != nil {
		price, err := parsePrice(*f.Price)
		if err != nil {
			return err
		}
		p.Price = price
	}
	if f.Name != nil {
		p.Name = *f.Name
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Category != nil {
		p.Category = *f.Category
	}
	if f.Stock != nil {
		p.Stock = *f.Stock
	}
	if f.Condition != nil {
		p.Condition = *f.Condition
	}
	if f.Image != nil && *f.Image != "" {
		image := *f.Image
		p.Image = &image
	}
	return nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", s)
	}
	if price.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", s)
	}
	return price.Round(2), nil
}

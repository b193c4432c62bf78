package analytics

import (
	"retro-store/models"
)

// FilterProducts applies the shop's catalog filters. search matches the name
// or the description; category and condition match exactly unless they are
// empty or FilterAll.
func FilterProducts(products []models.Product, search, category, condition string) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range products {
		if search != "" && !containsFold(p.Name, search) && !containsFold(p.Description, search) {
			continue
		}
		if category != "" && category != FilterAll && p.Category != category {
			continue
		}
		if condition != "" && condition != FilterAll && p.Condition != condition {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Facets lists the distinct categories and conditions of the catalog.
func Facets(products []models.Product) models.ProductFacets {
	var categories, conditions tally
	for _, p := range products {
		categories.add(p.Category, 1)
		conditions.add(p.Condition, 1)
	}
	return models.ProductFacets{
		Categories: append([]string{}, categories.names...),
		Conditions: append([]string{}, conditions.names...),
	}
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retro-store/models"
)

func catalog() []models.Product {
	zelda := product(1, "The Legend of Zelda", "used", 3)
	zelda.Description = "Classic adventure cartridge"
	nes := product(2, "Nintendo Entertainment System", "refurbished", 8)
	nes.Category = "Consoles"
	nes.Description = "Restored console with two controllers"
	pac := product(3, "Pac-Man Arcade Cabinet", "new", 1)
	pac.Category = "Arcade"
	return []models.Product{zelda, nes, pac}
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestFilterProducts(t *testing.T) {
	products := catalog()

	assert.Len(t, FilterProducts(products, "", FilterAll, FilterAll), 3)
	assert.Equal(t, []string{"The Legend of Zelda"}, names(FilterProducts(products, "ADVENTURE", "", "")))
	assert.Equal(t, []string{"Nintendo Entertainment System"}, names(FilterProducts(products, "", "Consoles", FilterAll)))
	assert.Equal(t, []string{"Pac-Man Arcade Cabinet"}, names(FilterProducts(products, "", FilterAll, "new")))
	assert.Empty(t, FilterProducts(products, "zelda", "Arcade", FilterAll))
}

func TestFacets(t *testing.T) {
	f := Facets(catalog())
	assert.Equal(t, []string{"Games", "Consoles", "Arcade"}, f.Categories)
	assert.Equal(t, []string{"used", "refurbished", "new"}, f.Conditions)
}

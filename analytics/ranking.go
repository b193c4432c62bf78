package analytics

import (
	"sort"

	"retro-store/models"
)

const (
	topProductsLimit    = 6
	topProductNameLimit = 20
	optionLabelLimit    = 30
)

// tally sums quantities per name and remembers the order names were first
// seen in, which is what ties are broken on.
type tally struct {
	names  []string
	counts map[string]int
}

func (t *tally) add(name string, n int) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, ok := t.counts[name]; !ok {
		t.names = append(t.names, name)
	}
	t.counts[name] += n
}

func (t *tally) top() (string, bool) {
	best, found := "", false
	for _, name := range t.names {
		if !found || t.counts[name] > t.counts[best] {
			best, found = name, true
		}
	}
	return best, found
}

type ProductQuantity struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// TopProducts ranks product names by units sold. Equal quantities keep the
// order the names were first seen in.
func TopProducts(lines []models.SaleLine) []ProductQuantity {
	var t tally
	for _, line := range lines {
		t.add(line.ProductName, line.Quantity)
	}

	ranked := make([]ProductQuantity, 0, len(t.names))
	for _, name := range t.names {
		ranked = append(ranked, ProductQuantity{Product: name, Quantity: t.counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})

	if len(ranked) > topProductsLimit {
		ranked = ranked[:topProductsLimit]
	}
	for i := range ranked {
		ranked[i].Product = Truncate(ranked[i].Product, topProductNameLimit)
	}
	return ranked
}

type ConditionCount struct {
	Condition string `json:"condition"`
	Count     int    `json:"count"`
}

// ConditionDistribution counts catalog entries per condition in first-seen
// order.
func ConditionDistribution(products []models.Product) []ConditionCount {
	var t tally
	for _, p := range products {
		t.add(p.Condition, 1)
	}
	out := make([]ConditionCount, 0, len(t.names))
	for _, c := range t.names {
		out = append(out, ConditionCount{Condition: c, Count: t.counts[c]})
	}
	return out
}

type ProductOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ProductOptions lists the distinct product names that appear in lines, for
// the order table's product filter.
func ProductOptions(lines []models.SaleLine) []ProductOption {
	seen := make(map[string]struct{})
	out := make([]ProductOption, 0)
	for _, line := range lines {
		if _, ok := seen[line.ProductName]; ok {
			continue
		}
		seen[line.ProductName] = struct{}{}
		out = append(out, ProductOption{
			Value: line.ProductName,
			Label: Truncate(line.ProductName, optionLabelLimit),
		})
	}
	return out
}

// Truncate shortens s to limit characters followed by "..." when it is
// longer than limit.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

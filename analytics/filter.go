package analytics

import (
	"strings"

	"retro-store/models"
)

const (
	// FilterAll disables a filter.
	FilterAll = "all"
	// PageSize is the number of orders per table page.
	PageSize = 10
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// MatchesOrder reports whether order passes the product filter and the free
// text search. The search looks at the order id, the customer name and every
// item's product name.
func MatchesOrder(order models.Order, search, productFilter string) bool {
	matchesProduct := productFilter == "" || productFilter == FilterAll
	if !matchesProduct {
		for _, item := range order.Items {
			if containsFold(item.ProductName, productFilter) {
				matchesProduct = true
				break
			}
		}
	}
	if !matchesProduct {
		return false
	}

	if search == "" {
		return true
	}
	if containsFold(order.OrderID, search) || containsFold(order.CustomerName, search) {
		return true
	}
	for _, item := range order.Items {
		if containsFold(item.ProductName, search) {
			return true
		}
	}
	return false
}

func FilterOrders(orders []models.Order, search, productFilter string) []models.Order {
	out := make([]models.Order, 0)
	for _, order := range orders {
		if MatchesOrder(order, search, productFilter) {
			out = append(out, order)
		}
	}
	return out
}

type PageLink struct {
	Page     int  `json:"page,omitempty"`
	Active   bool `json:"active,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

type Page struct {
	Orders     []models.Order `json:"orders"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int            `json:"total"`
	// From and To are the 1-based positions of the first and last order on
	// the page; both are 0 for an empty result.
	From  int        `json:"from"`
	To    int        `json:"to"`
	Links []PageLink `json:"links"`
}

func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

// Paginate returns page (1-based, clamped into range) of orders.
func Paginate(orders []models.Order, page int) Page {
	totalPages := TotalPages(len(orders))
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(orders) {
		end = len(orders)
	}

	p := Page{
		Orders:     orders[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      len(orders),
		Links:      PageLinks(page, totalPages),
	}
	if end > start {
		p.From, p.To = start+1, end
	}
	return p
}

// PageLinks lists the page links to render: the first and last page, the
// current page and its neighbours, and an ellipsis two pages either side of
// the current one when that page is not already listed.
func PageLinks(current, totalPages int) []PageLink {
	links := make([]PageLink, 0)
	for p := 1; p <= totalPages; p++ {
		switch {
		case p == 1 || p == totalPages || (p >= current-1 && p <= current+1):
			links = append(links, PageLink{Page: p, Active: p == current})
		case p == current-2 || p == current+2:
			links = append(links, PageLink{Ellipsis: true})
		}
	}
	return links
}

package analytics

import (
	"sort"

	"retro-store/models"
)

// NotAvailable is shown where a value cannot be computed.
const NotAvailable = "N/A"

// MonthlyReportRow consolidates one calendar month of sales.
type MonthlyReportRow struct {
	Month         string  `json:"month"`
	Revenue       float64 `json:"revenue"`
	OrderCount    int     `json:"orderCount"`
	Units         int     `json:"units"`
	AvgOrderValue float64 `json:"avgOrderValue"`
	TopProduct    string  `json:"topProduct"`
}

// AvgOrderValueText renders the average order value, or NotAvailable for a
// month without orders.
func (r MonthlyReportRow) AvgOrderValueText() string {
	if r.OrderCount == 0 {
		return NotAvailable
	}
	return FormatMoney(r.AvgOrderValue)
}

type monthStats struct {
	bucket   bucketKey
	revenue  float64
	orders   map[string]struct{}
	units    int
	products tally
}

// MonthlyReport consolidates lines per calendar month, most recent month
// first. Lines with an unparseable date are reported last under
// InvalidDateLabel.
func MonthlyReport(lines []models.SaleLine) []MonthlyReportRow {
	var stats []*monthStats
	index := make(map[string]*monthStats)

	for _, line := range lines {
		b := monthYearBucket(line.Date)
		s, ok := index[b.key]
		if !ok {
			s = &monthStats{bucket: b, orders: make(map[string]struct{})}
			index[b.key] = s
			stats = append(stats, s)
		}
		s.revenue += line.Subtotal()
		s.orders[line.OrderID] = struct{}{}
		s.units += line.Quantity
		s.products.add(line.ProductName, line.Quantity)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i].bucket, stats[j].bucket
		if a.valid != b.valid {
			return a.valid
		}
		return a.at.After(b.at)
	})

	rows := make([]MonthlyReportRow, 0, len(stats))
	for _, s := range stats {
		row := MonthlyReportRow{
			Month:      s.bucket.label,
			Revenue:    s.revenue,
			OrderCount: len(s.orders),
			Units:      s.units,
			TopProduct: NotAvailable,
		}
		if row.OrderCount > 0 {
			row.AvgOrderValue = row.Revenue / float64(row.OrderCount)
		}
		if top, ok := s.products.top(); ok {
			row.TopProduct = top
		}
		rows = append(rows, row)
	}
	return rows
}

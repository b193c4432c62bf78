package analytics

import (
	"strings"
	"time"

	"retro-store/models"
)

// InvalidDateLabel is the bucket label of lines whose date does not parse.
const InvalidDateLabel = "Invalid Date"

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate accepts an ISO date with or without a time component.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type SeriesPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// bucketKey identifies a time bucket. label is what gets displayed, key is
// what gets grouped on; they differ when the label drops part of the key.
type bucketKey struct {
	key   string
	label string
	at    time.Time
	valid bool
}

func monthBucket(date string) bucketKey {
	t, ok := ParseDate(date)
	if !ok {
		return bucketKey{key: InvalidDateLabel, label: InvalidDateLabel}
	}
	return bucketKey{
		key:   t.Format("2006-01"),
		label: t.Format("Jan"),
		at:    time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC),
		valid: true,
	}
}

func dayBucket(date string) bucketKey {
	t, ok := ParseDate(date)
	if !ok {
		return bucketKey{key: InvalidDateLabel, label: InvalidDateLabel}
	}
	return bucketKey{key: t.Format("01-02"), label: t.Format("Jan 2"), at: t, valid: true}
}

func monthYearBucket(date string) bucketKey {
	b := monthBucket(date)
	if b.valid {
		b.label = b.at.Format("Jan 2006")
	}
	return b
}

// revenueSeries sums amounts per bucket, emitting buckets in first-seen order.
func revenueSeries(n int, bucketOf func(i int) bucketKey, amountOf func(i int) float64) []SeriesPoint {
	points := make([]SeriesPoint, 0)
	index := make(map[string]int)
	for i := 0; i < n; i++ {
		b := bucketOf(i)
		j, ok := index[b.key]
		if !ok {
			j = len(points)
			index[b.key] = j
			points = append(points, SeriesPoint{Label: b.label})
		}
		points[j].Revenue += amountOf(i)
	}
	return points
}

// MonthlyRevenue buckets revenue by calendar month (month and year).
func MonthlyRevenue(lines []models.SaleLine) []SeriesPoint {
	return revenueSeries(len(lines),
		func(i int) bucketKey { return monthBucket(lines[i].Date) },
		func(i int) float64 { return lines[i].Subtotal() },
	)
}

// DailyRevenue buckets revenue by month and day of month.
func DailyRevenue(lines []models.SaleLine) []SeriesPoint {
	return revenueSeries(len(lines),
		func(i int) bucketKey { return dayBucket(lines[i].Date) },
		func(i int) float64 { return lines[i].Subtotal() },
	)
}

// MonthlySpending buckets a shopper's order totals by calendar month.
func MonthlySpending(orders []models.UserOrder) []SeriesPoint {
	return revenueSeries(len(orders),
		func(i int) bucketKey { return monthBucket(orders[i].Date) },
		func(i int) float64 { return orders[i].Total },
	)
}

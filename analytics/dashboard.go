package analytics

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"retro-store/models"
)

// Dashboard is everything the admin dashboard renders, computed from one
// snapshot of sale lines and products.
type Dashboard struct {
	Metrics        Metrics            `json:"metrics"`
	Monthly        []SeriesPoint      `json:"monthly"`
	Daily          []SeriesPoint      `json:"daily"`
	TopProducts    []ProductQuantity  `json:"topProducts"`
	Conditions     []ConditionCount   `json:"conditions"`
	Report         []MonthlyReportRow `json:"report"`
	ProductOptions []ProductOption    `json:"productOptions"`
	Orders         []models.Order     `json:"-"`
}

func BuildDashboard(lines []models.SaleLine, products []models.Product) Dashboard {
	return Dashboard{
		Metrics:        ComputeMetrics(lines, products),
		Monthly:        MonthlyRevenue(lines),
		Daily:          DailyRevenue(lines),
		TopProducts:    TopProducts(lines),
		Conditions:     ConditionDistribution(products),
		Report:         MonthlyReport(lines),
		ProductOptions: ProductOptions(lines),
		Orders:         GroupOrders(lines),
	}
}

// Fingerprint hashes the fields of lines and products that any dashboard
// value depends on.
func Fingerprint(lines []models.SaleLine, products []models.Product) uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeInt := func(n int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(n))
		_, _ = d.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(int64(len(s)))
		_, _ = d.WriteString(s)
	}

	writeInt(int64(len(lines)))
	for _, l := range lines {
		writeString(l.ID)
		writeString(l.OrderID)
		writeString(l.ProductID)
		writeString(l.ProductName)
		writeInt(int64(l.Quantity))
		writeInt(int64(math.Float64bits(l.UnitPrice)))
		writeString(l.Date)
		writeString(l.CustomerName)
	}
	writeInt(int64(len(products)))
	for _, p := range products {
		writeInt(int64(p.ID))
		writeInt(int64(p.Stock))
		writeString(p.Condition)
	}
	return d.Sum64()
}

// Memo keeps the last computed Dashboard and returns it again while the
// inputs hash to the same fingerprint. The returned Dashboard is shared and
// must not be modified.
type Memo struct {
	mu    sync.Mutex
	key   uint64
	valid bool
	value Dashboard
}

// Dashboard returns the dashboard for lines and products and whether it was
// served from the memo.
func (m *Memo) Dashboard(lines []models.SaleLine, products []models.Product) (Dashboard, bool) {
	key := Fingerprint(lines, products)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.key == key {
		return m.value, true
	}
	m.value = BuildDashboard(lines, products)
	m.key = key
	m.valid = true
	return m.value, false
}

// Reset drops the memoized value.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.valid = false
	m.value = Dashboard{}
	m.mu.Unlock()
}

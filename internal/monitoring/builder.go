package monitoring

import (
	"sort"

	"github.com/andresuchdata/mpstock/internal/domain"
	"github.com/andresuchdata/mpstock/internal/snapshot"
)

// RecordBuilder joins stock entries against per-window sales to produce
// monitoring records.
type RecordBuilder struct {
	matcher WarehouseMatcher
}

// NewRecordBuilder creates a builder; a nil matcher uses ContainmentMatcher.
func NewRecordBuilder(matcher WarehouseMatcher) *RecordBuilder {
	if matcher == nil {
		matcher = ContainmentMatcher{}
	}
	return &RecordBuilder{matcher: matcher}
}

// Build emits one record per (article, warehouse, marketplace) with positive
// stock, WB first then Ozon, sorted ascending by days left. Ties keep build
// order.
func (b *RecordBuilder) Build(doc *snapshot.Document) []domain.MonitoringRecord {
	var records []domain.MonitoringRecord

	for _, mp := range domain.Marketplaces {
		sales := windowSales{
			today:     doc.Sales(domain.WindowToday, mp),
			yesterday: doc.Sales(domain.WindowYesterday, mp),
			days3:     doc.Sales(domain.Window3Days, mp),
			days7:     doc.Sales(domain.Window7Days, mp),
			days30:    doc.Sales(domain.Window30Days, mp),
		}

		for _, entry := range doc.StockEntries(mp) {
			if entry.Quantity <= 0 {
				continue
			}
			records = append(records, b.buildRecord(entry, mp, sales))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DaysLeft.Less(records[j].DaysLeft)
	})

	return records
}

type windowSales struct {
	today, yesterday, days3, days7, days30 *snapshot.PeriodSales
}

func (b *RecordBuilder) buildRecord(entry snapshot.StockEntry, mp domain.Marketplace, sales windowSales) domain.MonitoringRecord {
	counts := OrderCounts{
		Today:     b.orderCount(sales.today, entry),
		Yesterday: b.orderCount(sales.yesterday, entry),
		Days3:     b.orderCount(sales.days3, entry),
		Days7:     b.orderCount(sales.days7, entry),
		Days30:    b.orderCount(sales.days30, entry),
	}

	consumption := EstimateConsumption(counts)
	daysLeft, status := Forecast(entry.Quantity, consumption.Avg7dRaw)

	return domain.MonitoringRecord{
		Article:         entry.Article,
		Warehouse:       entry.Warehouse,
		Marketplace:     mp,
		Stock:           entry.Quantity,
		OrdersToday:     counts.Today,
		OrdersYesterday: counts.Yesterday,
		Orders3d:        counts.Days3,
		Orders7d:        counts.Days7,
		Orders30d:       counts.Days30,
		Avg3d:           consumption.Avg3d(),
		Avg7d:           consumption.Avg7d(),
		Avg30d:          consumption.Avg30d(),
		Avg7dRaw:        consumption.Avg7dRaw,
		Deviation3d:     consumption.Deviation3d,
		Deviation30d:    consumption.Deviation30d,
		DaysLeft:        daysLeft,
		StatusKey:       status,
	}
}

// orderCount returns the order count of the entry's article at the first
// breakdown warehouse the matcher accepts, or 0.
func (b *RecordBuilder) orderCount(sales *snapshot.PeriodSales, entry snapshot.StockEntry) int {
	product := sales.Product(entry.Article)
	if product == nil {
		return 0
	}
	for _, wh := range product.ByWarehouse {
		if b.matcher.Match(entry.Warehouse, wh.Name) {
			return wh.Count.Int()
		}
	}
	return 0
}

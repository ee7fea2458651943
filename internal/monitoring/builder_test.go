package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/mpstock/internal/domain"
)

func TestRecordBuilder_Build(t *testing.T) {
	doc := newDocument()
	withStock(doc, domain.MarketplaceWB, []string{"Тверь_склад", "Коледино"},
		stockRow{article: "SF0125", qty: []int{70, 0}},
		stockRow{article: "SF0250", qty: []int{12}},
	)
	withStock(doc, domain.MarketplaceOzon, []string{"Хоругвино"},
		stockRow{article: "SF0125", qty: []int{40}},
	)
	withSales(doc, domain.MarketplaceWB, "SF0125", "Тверь",
		OrderCounts{Today: 5, Yesterday: 4, Days3: 14, Days7: 30, Days30: 120})
	withSales(doc, domain.MarketplaceOzon, "SF0125", "Хоругвино",
		OrderCounts{Days3: 10, Days7: 30, Days30: 100})

	records := NewRecordBuilder(nil).Build(doc)
	require.Len(t, records, 3)

	// sorted ascending by days left: ozon 8, wb 17, unsold unbounded
	ozon := records[0]
	assert.Equal(t, domain.MarketplaceOzon, ozon.Marketplace)
	assert.Equal(t, domain.Days(8), ozon.DaysLeft)
	assert.Equal(t, domain.StatusCritical, ozon.StatusKey)

	wb := records[1]
	assert.Equal(t, "SF0125", wb.Article)
	assert.Equal(t, "Тверь_склад", wb.Warehouse)
	assert.Equal(t, domain.MarketplaceWB, wb.Marketplace)
	assert.Equal(t, 70, wb.Stock)
	assert.Equal(t, 5, wb.OrdersToday)
	assert.Equal(t, 4, wb.OrdersYesterday)
	assert.Equal(t, 14, wb.Orders3d)
	assert.Equal(t, 30, wb.Orders7d)
	assert.Equal(t, 120, wb.Orders30d)
	assert.Equal(t, 4.2, wb.Avg7d)
	assert.InDelta(t, 25.0/6.0, wb.Avg7dRaw, 1e-9)
	assert.Equal(t, domain.Days(17), wb.DaysLeft)
	assert.Equal(t, domain.StatusWarning, wb.StatusKey)

	unsold := records[2]
	assert.Equal(t, "SF0250", unsold.Article)
	assert.Equal(t, "Тверь_склад", unsold.Warehouse)
	assert.True(t, unsold.DaysLeft.IsUnbounded())
	assert.Equal(t, domain.StatusNormal, unsold.StatusKey)
	assert.Nil(t, unsold.Deviation3d)
}

func TestRecordBuilder_SkipsEmptyStock(t *testing.T) {
	doc := newDocument()
	withStock(doc, domain.MarketplaceWB, []string{"A", "B", "C"},
		stockRow{article: "SF0125", qty: []int{0, -3, 5}},
	)

	records := NewRecordBuilder(nil).Build(doc)
	require.Len(t, records, 1)
	assert.Equal(t, "C", records[0].Warehouse)
	for _, r := range records {
		assert.Greater(t, r.Stock, 0)
	}
}

func TestRecordBuilder_TodayOnlySales(t *testing.T) {
	doc := newDocument()
	withStock(doc, domain.MarketplaceWB, []string{"Тверь"}, stockRow{article: "SF0125", qty: []int{70}})
	withSales(doc, domain.MarketplaceWB, "SF0125", "Тверь", OrderCounts{Today: 5, Days3: 5, Days7: 5, Days30: 5})

	records := NewRecordBuilder(nil).Build(doc)
	require.Len(t, records, 1)
	assert.Zero(t, records[0].Avg7dRaw)
	assert.True(t, records[0].DaysLeft.IsUnbounded())
	assert.Equal(t, domain.StatusNormal, records[0].StatusKey)
}

func TestRecordBuilder_ExactMatcherIgnoresPartialNames(t *testing.T) {
	doc := newDocument()
	withStock(doc, domain.MarketplaceWB, []string{"Тверь_склад"}, stockRow{article: "SF0125", qty: []int{70}})
	withSales(doc, domain.MarketplaceWB, "SF0125", "Тверь", OrderCounts{Days7: 30})

	records := NewRecordBuilder(ExactMatcher{}).Build(doc)
	require.Len(t, records, 1)
	assert.Zero(t, records[0].Orders7d)
}

func TestRecordBuilder_Idempotent(t *testing.T) {
	doc := newDocument()
	withStock(doc, domain.MarketplaceWB, []string{"Тверь", "Коледино"},
		stockRow{article: "SF0125", qty: []int{70, 30}},
		stockRow{article: "SF0500", qty: []int{3, 9}},
	)
	withSales(doc, domain.MarketplaceWB, "SF0125", "Коледино", OrderCounts{Days7: 12, Days30: 40})

	b := NewRecordBuilder(nil)
	assert.Equal(t, b.Build(doc), b.Build(doc))
}

func TestRecordBuilder_NilDocument(t *testing.T) {
	assert.Empty(t, NewRecordBuilder(nil).Build(nil))
}

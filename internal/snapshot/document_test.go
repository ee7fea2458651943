package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/mpstock/internal/domain"
)

const sampleDocument = `{
  "last_update": "2025-01-15 10:00",
  "stocks": {
    "wb": {
      "chart_data": {
        "labels": ["Коледино", "Тверь", "Казань"],
        "datasets": [
          {"label": "SF0125", "data": [10, "7", null], "backgroundColor": "#3B82F6"},
          {"label": "SF0250", "data": [4]}
        ]
      }
    }
  },
  "period_data": {
    "days_7": {
      "wb": {
        "revenue": "12 500",
        "redemptions_revenue": "9800,5",
        "orders_count": 42,
        "sales_by_product": [
          {"article": "SF0125", "count": 30, "by_warehouse": [{"name": "Тверь", "count": "12"}]}
        ]
      }
    }
  }
}`

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`12`, 12},
		{`12.5`, 12.5},
		{`"7"`, 7},
		{`"3,5"`, 3.5},
		{`" 8 "`, 8},
		{`null`, 0},
		{`true`, 0},
		{`"n/a"`, 0},
		{`{"x":1}`, 0},
		{`[1,2]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.in), &n))
			assert.Equal(t, tt.want, float64(n))
		})
	}

	assert.Equal(t, 3, Number(2.5).Int())
	assert.Equal(t, 2, Number(2.4).Int())
}

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDocument))
	require.NoError(t, err)

	assert.Equal(t, "2025-01-15 10:00", doc.Version())

	sales := doc.Sales(domain.Window7Days, domain.MarketplaceWB)
	require.NotNil(t, sales)
	assert.Zero(t, float64(sales.Revenue))
	assert.Equal(t, 9800.5, float64(sales.RedemptionsRevenue))
	assert.Equal(t, 42, sales.OrdersCount.Int())

	product := sales.Product("SF0125")
	require.NotNil(t, product)
	assert.Equal(t, 12, product.ByWarehouse[0].Count.Int())
	assert.Nil(t, sales.Product("SF9999"))

	assert.Nil(t, doc.Sales(domain.WindowToday, domain.MarketplaceWB))
	assert.Nil(t, doc.Sales(domain.Window7Days, domain.MarketplaceOzon))
}

func TestDocument_Fingerprint(t *testing.T) {
	first, err := DecodeBytes([]byte(`{"last_update": "same", "stocks": {"wb": {"chart_data": {"labels": ["A"], "datasets": [{"label": "SF0125", "data": [30]}]}}}}`))
	require.NoError(t, err)
	second, err := DecodeBytes([]byte(`{"last_update": "same", "stocks": {"wb": {"chart_data": {"labels": ["A"], "datasets": [{"label": "SF0125", "data": [99]}]}}}}`))
	require.NoError(t, err)
	again, err := Decode(strings.NewReader(`{"last_update": "same", "stocks": {"wb": {"chart_data": {"labels": ["A"], "datasets": [{"label": "SF0125", "data": [30]}]}}}}`))
	require.NoError(t, err)

	assert.Equal(t, first.Version(), second.Version())
	assert.NotEqual(t, first.Fingerprint(), second.Fingerprint())
	assert.Equal(t, first.Fingerprint(), again.Fingerprint())

	built := &Document{LastUpdate: "same"}
	assert.NotEmpty(t, built.Fingerprint())
	assert.Equal(t, built.Fingerprint(), (&Document{LastUpdate: "same"}).Fingerprint())

	var missing *Document
	assert.Empty(t, missing.Fingerprint())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"stocks": [`))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`null`))
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestDocument_StockEntries(t *testing.T) {
	doc, err := DecodeBytes([]byte(sampleDocument))
	require.NoError(t, err)

	entries := doc.StockEntries(domain.MarketplaceWB)
	assert.Equal(t, []StockEntry{
		{Article: "SF0125", Warehouse: "Коледино", Quantity: 10},
		{Article: "SF0125", Warehouse: "Тверь", Quantity: 7},
		{Article: "SF0125", Warehouse: "Казань", Quantity: 0},
		{Article: "SF0250", Warehouse: "Коледино", Quantity: 4},
		{Article: "SF0250", Warehouse: "Тверь", Quantity: 0},
		{Article: "SF0250", Warehouse: "Казань", Quantity: 0},
	}, entries)

	assert.Empty(t, doc.StockEntries(domain.MarketplaceOzon))

	var nilDoc *Document
	assert.Empty(t, nilDoc.StockEntries(domain.MarketplaceWB))
	assert.Nil(t, nilDoc.Sales(domain.WindowToday, domain.MarketplaceWB))
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard_data.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o644))

	doc, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15 10:00", doc.LastUpdate)

	_, err = NewFileLoader(filepath.Join(dir, "missing.json")).Load(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFileLoader(path).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

package snapshot

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/mpstock/internal/domain"
)

// ErrNoSnapshot is returned when no document is available yet.
var ErrNoSnapshot = errors.New("snapshot: no document available")

// Number decodes any JSON value leniently: numbers and numeric strings keep
// their value, everything else (null, bools, objects, junk) becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			*n = Number(f)
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			*n = Number(v)
		}
	}

	return nil
}

// Int rounds the number to the nearest integer.
func (n Number) Int() int {
	return int(math.Round(float64(n)))
}

// Document is the dashboard snapshot produced by the ingestion agents.
type Document struct {
	Stocks     map[domain.Marketplace]*MarketplaceStocks             `json:"stocks"`
	PeriodData map[domain.Window]map[domain.Marketplace]*PeriodSales `json:"period_data"`
	LastUpdate string                                                `json:"last_update"`

	fingerprint string
}

// MarketplaceStocks is the point-in-time stock picture of one marketplace.
type MarketplaceStocks struct {
	ChartData   *ChartData       `json:"chart_data"`
	ByWarehouse []WarehouseStock `json:"by_warehouse"`
	ByProduct   []ProductStock   `json:"by_product"`
}

// ChartData holds warehouse labels and one quantity vector per article.
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string   `json:"label"`
	Data            []Number `json:"data"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
}

type WarehouseStock struct {
	Name       string `json:"name"`
	Quantity   Number `json:"quantity"`
	ItemsCount Number `json:"items_count"`
}

type ProductStock struct {
	Article         string                `json:"article"`
	Quantity        Number                `json:"quantity"`
	WarehousesCount Number                `json:"warehouses_count"`
	ByWarehouse     []ProductWarehouseQty `json:"by_warehouse"`
	Color           string                `json:"color,omitempty"`
}

type ProductWarehouseQty struct {
	Name     string `json:"name"`
	Quantity Number `json:"quantity"`
}

// PeriodSales is one marketplace's sales aggregate for one window.
type PeriodSales struct {
	Revenue            Number         `json:"revenue"`
	RedemptionsRevenue Number         `json:"redemptions_revenue"`
	OrdersCount        Number         `json:"orders_count"`
	SalesByProduct     []ProductSales `json:"sales_by_product"`
	SalesByWarehouse   []NamedSales   `json:"sales_by_warehouse"`
	SalesByRegion      []NamedSales   `json:"sales_by_region"`
}

type ProductSales struct {
	Article     string       `json:"article"`
	Count       Number       `json:"count"`
	Revenue     Number       `json:"revenue"`
	ByWarehouse []NamedSales `json:"by_warehouse"`
}

type NamedSales struct {
	Name    string `json:"name"`
	Count   Number `json:"count"`
	Revenue Number `json:"revenue"`
}

// StockEntry is one (article, warehouse, quantity) triple of the stock source.
type StockEntry struct {
	Article   string
	Warehouse string
	Quantity  int
}

// Decode parses a snapshot document. Only malformed JSON or a missing
// top-level object is an error.
func Decode(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over a byte slice. The document remembers a hash of
// data as its fingerprint.
func DecodeBytes(data []byte) (*Document, error) {
	var doc *Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("decode snapshot: %w", ErrNoSnapshot)
	}
	doc.fingerprint = hashPayload(data)
	return doc, nil
}

// Version is the producer's last_update label. It is not unique: two
// different documents may carry the same label, or none.
func (d *Document) Version() string {
	if d == nil {
		return ""
	}
	return d.LastUpdate
}

// Fingerprint identifies the document content. Decoded documents hash the
// raw payload; documents built in code hash their JSON encoding.
func (d *Document) Fingerprint() string {
	if d == nil {
		return ""
	}
	if d.fingerprint != "" {
		return d.fingerprint
	}
	data, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	return hashPayload(data)
}

func hashPayload(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// StockEntries flattens the chart data of a marketplace into triples. Vectors
// shorter than the label list are treated as zero for the missing positions.
func (d *Document) StockEntries(mp domain.Marketplace) []StockEntry {
	if d == nil || d.Stocks == nil {
		return nil
	}
	stocks := d.Stocks[mp]
	if stocks == nil || stocks.ChartData == nil {
		return nil
	}

	chart := stocks.ChartData
	entries := make([]StockEntry, 0, len(chart.Labels)*len(chart.Datasets))
	for _, ds := range chart.Datasets {
		for i, warehouse := range chart.Labels {
			qty := 0
			if i < len(ds.Data) {
				qty = ds.Data[i].Int()
			}
			entries = append(entries, StockEntry{
				Article:   ds.Label,
				Warehouse: warehouse,
				Quantity:  qty,
			})
		}
	}
	return entries
}

// Sales returns the sales aggregate for a window and marketplace, or nil.
func (d *Document) Sales(w domain.Window, mp domain.Marketplace) *PeriodSales {
	if d == nil || d.PeriodData == nil {
		return nil
	}
	byMP := d.PeriodData[w]
	if byMP == nil {
		return nil
	}
	return byMP[mp]
}

// Product returns the sales entry for an exact article, or nil.
func (p *PeriodSales) Product(article string) *ProductSales {
	if p == nil {
		return nil
	}
	for i := range p.SalesByProduct {
		if p.SalesByProduct[i].Article == article {
			return &p.SalesByProduct[i]
		}
	}
	return nil
}

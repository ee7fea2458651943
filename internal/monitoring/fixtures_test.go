package monitoring

import (
	"github.com/andresuchdata/mpstock/internal/domain"
	"github.com/andresuchdata/mpstock/internal/snapshot"
)

type stockRow struct {
	article string
	qty     []int
}

func newDocument() *snapshot.Document {
	return &snapshot.Document{
		Stocks:     make(map[domain.Marketplace]*snapshot.MarketplaceStocks),
		PeriodData: make(map[domain.Window]map[domain.Marketplace]*snapshot.PeriodSales),
		LastUpdate: "2025-01-15 10:00",
	}
}

func withStock(doc *snapshot.Document, mp domain.Marketplace, labels []string, rows ...stockRow) *snapshot.Document {
	chart := &snapshot.ChartData{Labels: labels}
	for _, row := range rows {
		ds := snapshot.ChartDataset{Label: row.article}
		for _, q := range row.qty {
			ds.Data = append(ds.Data, snapshot.Number(q))
		}
		chart.Datasets = append(chart.Datasets, ds)
	}
	doc.Stocks[mp] = &snapshot.MarketplaceStocks{ChartData: chart}
	return doc
}

func withSales(doc *snapshot.Document, mp domain.Marketplace, article, warehouse string, counts OrderCounts) *snapshot.Document {
	perWindow := map[domain.Window]int{
		domain.WindowToday:     counts.Today,
		domain.WindowYesterday: counts.Yesterday,
		domain.Window3Days:     counts.Days3,
		domain.Window7Days:     counts.Days7,
		domain.Window30Days:    counts.Days30,
	}
	for w, n := range perWindow {
		byMP := doc.PeriodData[w]
		if byMP == nil {
			byMP = make(map[domain.Marketplace]*snapshot.PeriodSales)
			doc.PeriodData[w] = byMP
		}
		sales := byMP[mp]
		if sales == nil {
			sales = &snapshot.PeriodSales{}
			byMP[mp] = sales
		}

		var product *snapshot.ProductSales
		for i := range sales.SalesByProduct {
			if sales.SalesByProduct[i].Article == article {
				product = &sales.SalesByProduct[i]
			}
		}
		if product == nil {
			sales.SalesByProduct = append(sales.SalesByProduct, snapshot.ProductSales{Article: article})
			product = &sales.SalesByProduct[len(sales.SalesByProduct)-1]
		}
		product.Count += snapshot.Number(n)
		product.ByWarehouse = append(product.ByWarehouse, snapshot.NamedSales{
			Name:  warehouse,
			Count: snapshot.Number(n),
		})
	}
	return doc
}

func record(article, warehouse string, mp domain.Marketplace, stock int, days domain.DaysLeft) domain.MonitoringRecord {
	return domain.MonitoringRecord{
		Article:     article,
		Warehouse:   warehouse,
		Marketplace: mp,
		Stock:       stock,
		Orders7d:    1,
		DaysLeft:    days,
		StatusKey:   Classify(days),
	}
}

func intPtr(v int) *int { return &v }

package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/andresuchdata/mpstock/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook.
const (
	SheetMonitoring = "Monitoring"
	SheetClusters   = "Clusters"
	SheetAlerts     = "Alerts"
)

var monitoringHeader = []interface{}{
	"Article", "Warehouse", "Marketplace", "Stock",
	"Orders today", "Orders yesterday", "Orders 3d", "Orders 7d", "Orders 30d",
	"Avg 3d", "Avg 7d", "Avg 30d", "Deviation 3d %", "Deviation 30d %",
	"Days left", "Status",
}

var clustersHeader = []interface{}{
	"Cluster", "Warehouse", "Total stock", "Min days left", "Worst status", "Records",
}

var alertsHeader = []interface{}{
	"Article", "Cluster", "Marketplace", "Total stock", "Min days left", "Severity",
}

type styles struct {
	header int
	status map[domain.StatusKey]int
}

// WriteXLSX renders a view as a workbook with one sheet per section.
func WriteXLSX(w io.Writer, view *domain.View) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", SheetMonitoring); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetClusters, SheetAlerts} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeMonitoring(f, st, view.Records); err != nil {
		return err
	}
	if err := writeClusters(f, st, view.Clusters); err != nil {
		return err
	}
	if err := writeAlerts(f, st, view.Alerts); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func newStyles(f *excelize.File) (*styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E5E7EB"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	colors := map[domain.StatusKey]string{
		domain.StatusCritical: "#FCA5A5",
		domain.StatusWarning:  "#FDE68A",
		domain.StatusNormal:   "#BBF7D0",
	}
	status := make(map[domain.StatusKey]int, len(colors))
	for key, color := range colors {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return nil, fmt.Errorf("create %s style: %w", key, err)
		}
		status[key] = id
	}

	return &styles{header: header, status: status}, nil
}

func writeHeader(f *excelize.File, st *styles, sheet string, header []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, st.header); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze %s header: %w", sheet, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleCell(f *excelize.File, sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func writeMonitoring(f *excelize.File, st *styles, records []domain.MonitoringRecord) error {
	if err := writeHeader(f, st, SheetMonitoring, monitoringHeader); err != nil {
		return err
	}
	for i, r := range records {
		row := i + 2
		values := []interface{}{
			r.Article, r.Warehouse, string(r.Marketplace), r.Stock,
			r.OrdersToday, r.OrdersYesterday, r.Orders3d, r.Orders7d, r.Orders30d,
			r.Avg3d, r.Avg7d, r.Avg30d, optional(r.Deviation3d), optional(r.Deviation30d),
			daysLeft(r.DaysLeft), string(r.StatusKey),
		}
		if err := writeRow(f, SheetMonitoring, row, values); err != nil {
			return err
		}
		if err := styleCell(f, SheetMonitoring, len(values), row, st.status[r.StatusKey]); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetMonitoring, "A", "B", 22)
}

func writeClusters(f *excelize.File, st *styles, clusters []domain.ClusterAggregate) error {
	if err := writeHeader(f, st, SheetClusters, clustersHeader); err != nil {
		return err
	}

	row := 2
	for _, cl := range clusters {
		values := []interface{}{cl.Name, "", cl.TotalStock, daysLeft(cl.MinDaysLeft), string(cl.WorstStatus), clusterRecords(cl)}
		if err := writeRow(f, SheetClusters, row, values); err != nil {
			return err
		}
		if err := styleCell(f, SheetClusters, 5, row, st.status[cl.WorstStatus]); err != nil {
			return err
		}
		row++

		for _, wh := range cl.Warehouses {
			values := []interface{}{"", wh.Name, wh.TotalStock, daysLeft(wh.MinDaysLeft), "", len(wh.Records)}
			if err := writeRow(f, SheetClusters, row, values); err != nil {
				return err
			}
			row++
		}

		for _, article := range sortedKeys(cl.ProductTotals) {
			values := []interface{}{"", "  " + article, cl.ProductTotals[article]}
			if err := writeRow(f, SheetClusters, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(SheetClusters, "A", "B", 28)
}

func writeAlerts(f *excelize.File, st *styles, alerts []domain.Alert) error {
	if err := writeHeader(f, st, SheetAlerts, alertsHeader); err != nil {
		return err
	}
	for i, a := range alerts {
		row := i + 2
		values := []interface{}{a.Article, a.Cluster, string(a.Marketplace), a.TotalStock, daysLeft(a.MinDaysLeft), string(a.Severity)}
		if err := writeRow(f, SheetAlerts, row, values); err != nil {
			return err
		}
		if err := styleCell(f, SheetAlerts, len(values), row, st.status[a.Severity]); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetAlerts, "B", "B", 28)
}

func clusterRecords(cl domain.ClusterAggregate) int {
	n := 0
	for _, wh := range cl.Warehouses {
		n += len(wh.Records)
	}
	return n
}

// optional renders undefined values as empty cells.
func optional(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func daysLeft(d domain.DaysLeft) interface{} {
	if n, ok := d.Value(); ok {
		return n
	}
	return d.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/mpstock/internal/domain"
)

func sampleView() *domain.View {
	dev := 108
	critical := domain.MonitoringRecord{
		Article: "SF0125", Warehouse: "Казань", Marketplace: domain.MarketplaceWB, Stock: 12,
		Orders7d: 12, Avg7d: 2, Deviation3d: &dev, DaysLeft: domain.Days(6), StatusKey: domain.StatusCritical,
	}
	normal := domain.MonitoringRecord{
		Article: "SF0125", Warehouse: "Коледино", Marketplace: domain.MarketplaceWB, Stock: 30,
		DaysLeft: domain.Unbounded(), StatusKey: domain.StatusNormal,
	}

	return &domain.View{
		Version:   "v1",
		Selection: domain.DefaultSelection(),
		Records:   []domain.MonitoringRecord{critical, normal},
		Clusters: []domain.ClusterAggregate{{
			Name:          "Приволжский",
			TotalStock:    12,
			MinDaysLeft:   domain.Days(6),
			WorstStatus:   domain.StatusCritical,
			ProductTotals: map[string]int{"SF0125": 12},
			Warehouses: []domain.WarehouseGroup{{
				Name: "Казань", Records: []domain.MonitoringRecord{critical}, TotalStock: 12, MinDaysLeft: domain.Days(6),
			}},
		}},
		Alerts: []domain.Alert{{
			Article: "SF0125", Cluster: "Приволжский", Marketplace: domain.MarketplaceWB,
			TotalStock: 12, MinDaysLeft: domain.Days(6), Severity: domain.StatusCritical,
		}},
		HasAlerts: true,
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleView()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetMonitoring, SheetClusters, SheetAlerts}, f.GetSheetList())

	rows, err := f.GetRows(SheetMonitoring)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Article", rows[0][0])
	assert.Equal(t, []string{"SF0125", "Казань", "wb", "12"}, rows[1][:4])
	assert.Equal(t, "108", rows[1][12])
	assert.Equal(t, "6", rows[1][14])
	assert.Equal(t, "critical", rows[1][15])
	assert.Equal(t, "", rows[2][12])
	assert.Equal(t, "∞", rows[2][14])

	rows, err = f.GetRows(SheetClusters)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Приволжский", "", "12", "6", "critical", "1"}, rows[1])
	assert.Equal(t, "Казань", rows[2][1])
	assert.Equal(t, []string{"", "  SF0125", "12"}, rows[3])

	rows, err = f.GetRows(SheetAlerts)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"SF0125", "Приволжский", "wb", "12", "6", "critical"}, rows[1])
}

func TestWriteXLSX_EmptyView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, &domain.View{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetAlerts)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/mpstock/internal/domain"
)

func TestClusterAggregator_Aggregate(t *testing.T) {
	records := []domain.MonitoringRecord{
		record("SF0125", "Коледино", domain.MarketplaceWB, 50, domain.Days(30)),
		record("SF0250", "Коледино", domain.MarketplaceWB, 20, domain.Days(18)),
		record("SF0125", "Тверь", domain.MarketplaceWB, 10, domain.Days(4)),
		record("SF0125", "Казань", domain.MarketplaceWB, 15, domain.Days(25)),
		record("XX0001", "Марс", domain.MarketplaceWB, 5, domain.Unbounded()),
	}

	clusters := NewClusterAggregator(nil, DefaultWatchList).Aggregate(records)
	require.Len(t, clusters, 3)

	central := clusters[0]
	assert.Equal(t, "Центральный", central.Name)
	assert.Equal(t, domain.StatusCritical, central.WorstStatus)
	assert.Equal(t, 80, central.TotalStock)
	assert.Equal(t, domain.Days(4), central.MinDaysLeft)
	assert.Equal(t, map[string]int{"SF0125": 60, "SF0250": 20}, central.ProductTotals)

	require.Len(t, central.Warehouses, 2)
	assert.Equal(t, "Тверь", central.Warehouses[0].Name)
	assert.Equal(t, "Коледино", central.Warehouses[1].Name)
	assert.Equal(t, 70, central.Warehouses[1].TotalStock)
	assert.Equal(t, domain.Days(18), central.Warehouses[1].MinDaysLeft)
	for _, r := range central.Warehouses[1].Records {
		assert.Equal(t, "Центральный", r.Cluster)
	}

	// both remaining clusters are normal, so they fall back to name order
	assert.Equal(t, "Приволжский", clusters[1].Name)
	assert.Equal(t, DefaultCluster, clusters[2].Name)
	assert.Empty(t, clusters[2].ProductTotals)
	assert.True(t, clusters[2].MinDaysLeft.IsUnbounded())

	// input records are not modified
	for _, r := range records {
		assert.Empty(t, r.Cluster)
	}
}

func TestClusterAggregator_Empty(t *testing.T) {
	assert.Empty(t, NewClusterAggregator(nil, nil).Aggregate(nil))
}

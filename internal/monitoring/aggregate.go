package monitoring

import (
	"sort"

	"github.com/andresuchdata/mpstock/internal/domain"
)

// ClusterAggregator groups records by logistics cluster and warehouse.
type ClusterAggregator struct {
	resolver  *ClusterResolver
	watchList []string
}

func NewClusterAggregator(resolver *ClusterResolver, watchList []string) *ClusterAggregator {
	if resolver == nil {
		resolver = DefaultClusterResolver()
	}
	return &ClusterAggregator{resolver: resolver, watchList: watchList}
}

type clusterAccumulator struct {
	aggregate  domain.ClusterAggregate
	warehouses map[string]*domain.WarehouseGroup
	order      []string
}

// Aggregate returns clusters worst status first, ties by name. Warehouses
// within a cluster are ordered by ascending minimum days left. Input records
// are not modified; the copies inside the result carry their cluster name.
func (a *ClusterAggregator) Aggregate(records []domain.MonitoringRecord) []domain.ClusterAggregate {
	watched := make(map[string]struct{}, len(a.watchList))
	for _, article := range a.watchList {
		watched[article] = struct{}{}
	}

	clusters := make(map[string]*clusterAccumulator)
	var clusterOrder []string

	for _, r := range records {
		name := a.resolver.Resolve(r.Warehouse, r.Marketplace)

		acc, ok := clusters[name]
		if !ok {
			acc = &clusterAccumulator{
				aggregate: domain.ClusterAggregate{
					Name:          name,
					MinDaysLeft:   domain.Unbounded(),
					WorstStatus:   domain.StatusNormal,
					ProductTotals: make(map[string]int),
				},
				warehouses: make(map[string]*domain.WarehouseGroup),
			}
			clusters[name] = acc
			clusterOrder = append(clusterOrder, name)
		}

		wh, ok := acc.warehouses[r.Warehouse]
		if !ok {
			wh = &domain.WarehouseGroup{Name: r.Warehouse, MinDaysLeft: domain.Unbounded()}
			acc.warehouses[r.Warehouse] = wh
			acc.order = append(acc.order, r.Warehouse)
		}

		item := r
		item.Cluster = name
		wh.Records = append(wh.Records, item)
		wh.TotalStock += r.Stock
		wh.MinDaysLeft = domain.MinDaysLeft(wh.MinDaysLeft, r.DaysLeft)

		agg := &acc.aggregate
		agg.TotalStock += r.Stock
		agg.MinDaysLeft = domain.MinDaysLeft(agg.MinDaysLeft, r.DaysLeft)
		agg.WorstStatus = domain.Worse(agg.WorstStatus, r.StatusKey)
		if _, ok := watched[r.Article]; ok {
			agg.ProductTotals[r.Article] += r.Stock
		}
	}

	result := make([]domain.ClusterAggregate, 0, len(clusterOrder))
	for _, name := range clusterOrder {
		acc := clusters[name]
		agg := acc.aggregate
		agg.Warehouses = make([]domain.WarehouseGroup, 0, len(acc.order))
		for _, whName := range acc.order {
			agg.Warehouses = append(agg.Warehouses, *acc.warehouses[whName])
		}
		sort.SliceStable(agg.Warehouses, func(i, j int) bool {
			wi, wj := agg.Warehouses[i], agg.Warehouses[j]
			if wi.MinDaysLeft.Less(wj.MinDaysLeft) {
				return true
			}
			if wj.MinDaysLeft.Less(wi.MinDaysLeft) {
				return false
			}
			return wi.Name < wj.Name
		})
		result = append(result, agg)
	}

	sort.SliceStable(result, func(i, j int) bool {
		si, sj := result[i].WorstStatus.Severity(), result[j].WorstStatus.Severity()
		if si != sj {
			return si > sj
		}
		return result[i].Name < result[j].Name
	})

	return result
}

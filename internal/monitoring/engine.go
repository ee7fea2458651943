package monitoring

import (
	"github.com/andresuchdata/mpstock/internal/domain"
	"github.com/andresuchdata/mpstock/internal/snapshot"
)

// Config holds configuration for the monitoring engine.
type Config struct {
	Resolver   *ClusterResolver
	Matcher    WarehouseMatcher
	WatchList  []string
	AlertLimit int
}

// Engine computes dashboard views from a snapshot. It keeps no state between
// calls; every Compute rebuilds all records from the document.
type Engine struct {
	builder    *RecordBuilder
	aggregator *ClusterAggregator
	alerts     *AlertEngine
	resolver   *ClusterResolver
	watchList  []string
}

// NewEngine creates an engine, filling unset config with defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.Resolver == nil {
		cfg.Resolver = DefaultClusterResolver()
	}
	if len(cfg.WatchList) == 0 {
		cfg.WatchList = DefaultWatchList
	}
	watchList := append([]string(nil), cfg.WatchList...)

	return &Engine{
		builder:    NewRecordBuilder(cfg.Matcher),
		aggregator: NewClusterAggregator(cfg.Resolver, watchList),
		alerts:     NewAlertEngine(cfg.Resolver, cfg.AlertLimit),
		resolver:   cfg.Resolver,
		watchList:  watchList,
	}
}

// Resolver exposes the engine's cluster resolver.
func (e *Engine) Resolver() *ClusterResolver {
	return e.resolver
}

// Build returns every record of the snapshot, before noise removal.
func (e *Engine) Build(doc *snapshot.Document) []domain.MonitoringRecord {
	return e.builder.Build(doc)
}

// Compute returns the view of doc for the selection.
func (e *Engine) Compute(doc *snapshot.Document, sel domain.Selection) domain.View {
	sel = sel.Normalize()

	all := DropNoise(e.builder.Build(doc))

	byMarketplace := Filter(all, sel.Marketplace, domain.StatusAll)
	totals := map[domain.StatusKey]int{
		domain.StatusCritical: 0,
		domain.StatusWarning:  0,
		domain.StatusNormal:   0,
	}
	for _, r := range byMarketplace {
		totals[r.StatusKey]++
	}

	filtered := Filter(byMarketplace, sel.Marketplace, sel.Status)
	alerts := e.alerts.Alerts(all, sel.Marketplace, e.watchList)
	if alerts == nil {
		alerts = make([]domain.Alert, 0)
	}

	return domain.View{
		Version:   doc.Version(),
		Selection: sel,
		Records:   Sort(filtered, sel.Sort),
		Clusters:  e.aggregator.Aggregate(filtered),
		Alerts:    alerts,
		HasAlerts: len(alerts) > 0,
		Period:    periodSummary(doc, sel),
		Totals:    totals,
	}
}

func periodSummary(doc *snapshot.Document, sel domain.Selection) domain.PeriodSummary {
	summary := domain.PeriodSummary{Window: sel.Period}
	sales := doc.Sales(sel.Period, sel.Marketplace)
	if sales == nil {
		return summary
	}

	summary.Revenue = float64(sales.Revenue)
	summary.RedemptionsRevenue = float64(sales.RedemptionsRevenue)
	summary.Orders = sales.OrdersCount.Int()
	if summary.Orders == 0 {
		for _, p := range sales.SalesByProduct {
			summary.Orders += p.Count.Int()
		}
	}
	return summary
}

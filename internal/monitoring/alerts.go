package monitoring

import (
	"sort"

	"github.com/andresuchdata/mpstock/internal/domain"
)

const (
	// DefaultAlertLimit caps the alert list.
	DefaultAlertLimit = 5
	// urgentDays splits critical from warning alerts.
	urgentDays = 7
)

// DefaultWatchList is the set of articles eligible for cluster alerts.
var DefaultWatchList = []string{"SF0125", "SF0250", "SF0500", "SM0250", "SM0500"}

// AlertEngine raises cluster-wide depletion alerts for watch-listed products.
type AlertEngine struct {
	resolver *ClusterResolver
	limit    int
}

func NewAlertEngine(resolver *ClusterResolver, limit int) *AlertEngine {
	if resolver == nil {
		resolver = DefaultClusterResolver()
	}
	if limit <= 0 {
		limit = DefaultAlertLimit
	}
	return &AlertEngine{resolver: resolver, limit: limit}
}

type alertKey struct {
	article string
	cluster string
}

// Alerts scans the marketplace's records for watch-listed products whose
// shortest runway inside a cluster is under the critical threshold while the
// cluster still holds stock. Results are ascending by days left and capped.
func (e *AlertEngine) Alerts(records []domain.MonitoringRecord, mp domain.Marketplace, watchList []string) []domain.Alert {
	watched := make(map[string]struct{}, len(watchList))
	for _, article := range watchList {
		watched[article] = struct{}{}
	}

	groups := make(map[alertKey]*domain.Alert)
	var order []alertKey

	for _, r := range records {
		if r.Marketplace != mp {
			continue
		}
		if _, ok := watched[r.Article]; !ok {
			continue
		}

		key := alertKey{article: r.Article, cluster: e.resolver.Resolve(r.Warehouse, mp)}
		g, ok := groups[key]
		if !ok {
			g = &domain.Alert{
				Article:     key.article,
				Cluster:     key.cluster,
				Marketplace: mp,
				MinDaysLeft: domain.Unbounded(),
			}
			groups[key] = g
			order = append(order, key)
		}
		g.TotalStock += r.Stock
		g.MinDaysLeft = domain.MinDaysLeft(g.MinDaysLeft, r.DaysLeft)
	}

	var alerts []domain.Alert
	for _, key := range order {
		g := groups[key]
		if !g.MinDaysLeft.Below(CriticalDays) || g.TotalStock <= 0 {
			continue
		}
		alert := *g
		alert.Severity = domain.StatusWarning
		if alert.MinDaysLeft.Below(urgentDays) {
			alert.Severity = domain.StatusCritical
		}
		alerts = append(alerts, alert)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].MinDaysLeft.Less(alerts[j].MinDaysLeft)
	})

	if len(alerts) > e.limit {
		alerts = alerts[:e.limit]
	}
	return alerts
}

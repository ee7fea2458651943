package monitoring

import (
	"cmp"
	"sort"
	"strings"

	"github.com/andresuchdata/mpstock/internal/domain"
)

// DropNoise removes records with stock <= 1 and no orders over 7 days. Such
// entries are usually returns in transit rather than sellable inventory.
func DropNoise(records []domain.MonitoringRecord) []domain.MonitoringRecord {
	out := make([]domain.MonitoringRecord, 0, len(records))
	for _, r := range records {
		if r.Stock <= 1 && r.Orders7d == 0 {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Filter keeps records of the marketplace whose status passes the filter.
func Filter(records []domain.MonitoringRecord, mp domain.Marketplace, status domain.StatusFilter) []domain.MonitoringRecord {
	out := make([]domain.MonitoringRecord, 0, len(records))
	for _, r := range records {
		if r.Marketplace != mp {
			continue
		}
		if status != domain.StatusAll && domain.StatusKey(status) != r.StatusKey {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Sort returns a stably sorted copy of records.
func Sort(records []domain.MonitoringRecord, spec domain.SortSpec) []domain.MonitoringRecord {
	out := make([]domain.MonitoringRecord, len(records))
	copy(out, records)

	compare := comparator(spec.Column)
	sort.SliceStable(out, func(i, j int) bool {
		if spec.Ascending {
			return compare(out[i], out[j]) < 0
		}
		return compare(out[j], out[i]) < 0
	})
	return out
}

type recordComparator func(a, b domain.MonitoringRecord) int

func comparator(column domain.SortColumn) recordComparator {
	switch column {
	case domain.SortArticle:
		return byString(func(r domain.MonitoringRecord) string { return r.Article })
	case domain.SortWarehouse:
		return byString(func(r domain.MonitoringRecord) string { return r.Warehouse })
	case domain.SortMarketplace:
		return byString(func(r domain.MonitoringRecord) string { return string(r.Marketplace) })
	case domain.SortStock:
		return byNumber(func(r domain.MonitoringRecord) int { return r.Stock })
	case domain.SortOrdersToday:
		return byNumber(func(r domain.MonitoringRecord) int { return r.OrdersToday })
	case domain.SortOrdersYesterday:
		return byNumber(func(r domain.MonitoringRecord) int { return r.OrdersYesterday })
	case domain.SortOrders3d:
		return byNumber(func(r domain.MonitoringRecord) int { return r.Orders3d })
	case domain.SortOrders7d:
		return byNumber(func(r domain.MonitoringRecord) int { return r.Orders7d })
	case domain.SortOrders30d:
		return byNumber(func(r domain.MonitoringRecord) int { return r.Orders30d })
	case domain.SortAvg3d:
		return byNumber(func(r domain.MonitoringRecord) float64 { return r.Avg3d })
	case domain.SortAvg7d:
		return byNumber(func(r domain.MonitoringRecord) float64 { return r.Avg7d })
	case domain.SortAvg30d:
		return byNumber(func(r domain.MonitoringRecord) float64 { return r.Avg30d })
	case domain.SortDeviation3d:
		return byOptional(func(r domain.MonitoringRecord) *int { return r.Deviation3d })
	case domain.SortDeviation30d:
		return byOptional(func(r domain.MonitoringRecord) *int { return r.Deviation30d })
	case domain.SortStatus:
		// critical first when ascending
		return byNumber(func(r domain.MonitoringRecord) int { return -r.StatusKey.Severity() })
	default:
		return byDaysLeft
	}
}

func byString(get func(domain.MonitoringRecord) string) recordComparator {
	return func(a, b domain.MonitoringRecord) int {
		return strings.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}
}

func byNumber[T cmp.Ordered](get func(domain.MonitoringRecord) T) recordComparator {
	return func(a, b domain.MonitoringRecord) int {
		return cmp.Compare(get(a), get(b))
	}
}

// byOptional orders undefined values before every defined one.
func byOptional(get func(domain.MonitoringRecord) *int) recordComparator {
	return func(a, b domain.MonitoringRecord) int {
		x, y := get(a), get(b)
		switch {
		case x == nil && y == nil:
			return 0
		case x == nil:
			return -1
		case y == nil:
			return 1
		}
		return cmp.Compare(*x, *y)
	}
}

func byDaysLeft(a, b domain.MonitoringRecord) int {
	switch {
	case a.DaysLeft.Less(b.DaysLeft):
		return -1
	case b.DaysLeft.Less(a.DaysLeft):
		return 1
	}
	return 0
}

package domain

import "strings"

// SortColumn names a sortable MonitoringRecord field.
type SortColumn string

const (
	SortArticle         SortColumn = "article"
	SortWarehouse       SortColumn = "warehouse"
	SortMarketplace     SortColumn = "marketplace"
	SortStock           SortColumn = "stock"
	SortOrdersToday     SortColumn = "orders_today"
	SortOrdersYesterday SortColumn = "orders_yesterday"
	SortOrders3d        SortColumn = "orders_3d"
	SortOrders7d        SortColumn = "orders_7d"
	SortOrders30d       SortColumn = "orders_30d"
	SortAvg3d           SortColumn = "avg_3d"
	SortAvg7d           SortColumn = "avg_7d"
	SortAvg30d          SortColumn = "avg_30d"
	SortDeviation3d     SortColumn = "deviation_3d"
	SortDeviation30d    SortColumn = "deviation_30d"
	SortDaysLeft        SortColumn = "days_left"
	SortStatus          SortColumn = "status"
)

var sortColumns = map[SortColumn]struct{}{
	SortArticle: {}, SortWarehouse: {}, SortMarketplace: {}, SortStock: {},
	SortOrdersToday: {}, SortOrdersYesterday: {}, SortOrders3d: {}, SortOrders7d: {}, SortOrders30d: {},
	SortAvg3d: {}, SortAvg7d: {}, SortAvg30d: {},
	SortDeviation3d: {}, SortDeviation30d: {},
	SortDaysLeft: {}, SortStatus: {},
}

// ParseSortColumn returns the column for a label (case-insensitive).
func ParseSortColumn(label string) (SortColumn, bool) {
	c := SortColumn(strings.ToLower(strings.TrimSpace(label)))
	_, ok := sortColumns[c]
	return c, ok
}

// SortSpec is the current sort column and direction.
type SortSpec struct {
	Column    SortColumn `json:"column"`
	Ascending bool       `json:"ascending"`
}

// DefaultSort orders by ascending days left.
func DefaultSort() SortSpec {
	return SortSpec{Column: SortDaysLeft, Ascending: true}
}

// Toggle returns the spec after the user asks to sort by column: the same
// column flips direction, a new column starts ascending.
func (s SortSpec) Toggle(column SortColumn) SortSpec {
	if s.Column == column {
		return SortSpec{Column: column, Ascending: !s.Ascending}
	}
	return SortSpec{Column: column, Ascending: true}
}

// Selection is the immutable query state a view is computed for.
type Selection struct {
	Marketplace Marketplace  `json:"marketplace"`
	Period      Window       `json:"period"`
	Status      StatusFilter `json:"status"`
	Sort        SortSpec     `json:"sort"`
}

// DefaultSelection is the initial dashboard state.
func DefaultSelection() Selection {
	return Selection{
		Marketplace: MarketplaceWB,
		Period:      WindowToday,
		Status:      StatusAll,
		Sort:        DefaultSort(),
	}
}

// Normalize fills unset fields with defaults.
func (s Selection) Normalize() Selection {
	def := DefaultSelection()
	if mp, ok := ParseMarketplace(string(s.Marketplace)); ok {
		s.Marketplace = mp
	} else {
		s.Marketplace = def.Marketplace
	}
	if w, ok := ParseWindow(string(s.Period)); ok {
		s.Period = w
	} else {
		s.Period = def.Period
	}
	s.Status = ParseStatusFilter(string(s.Status))
	if col, ok := ParseSortColumn(string(s.Sort.Column)); ok {
		s.Sort.Column = col
	} else {
		s.Sort = def.Sort
	}
	return s
}

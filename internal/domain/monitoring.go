// internal/domain/monitoring.go
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Marketplace identifies one of the supported e-commerce platforms.
type Marketplace string

const (
	MarketplaceWB   Marketplace = "wb"
	MarketplaceOzon Marketplace = "ozon"
)

// Marketplaces lists the supported marketplaces in build order.
var Marketplaces = []Marketplace{MarketplaceWB, MarketplaceOzon}

// ParseMarketplace returns the marketplace for a label (case-insensitive).
func ParseMarketplace(label string) (Marketplace, bool) {
	switch Marketplace(strings.ToLower(strings.TrimSpace(label))) {
	case MarketplaceWB:
		return MarketplaceWB, true
	case MarketplaceOzon:
		return MarketplaceOzon, true
	}
	return "", false
}

// Window is a trailing sales period.
type Window string

const (
	WindowToday     Window = "today"
	WindowYesterday Window = "yesterday"
	Window3Days     Window = "days_3"
	Window7Days     Window = "days_7"
	Window30Days    Window = "days_30"
)

// Windows lists all sales windows.
var Windows = []Window{WindowToday, WindowYesterday, Window3Days, Window7Days, Window30Days}

// ParseWindow returns the window for a label (case-insensitive).
func ParseWindow(label string) (Window, bool) {
	w := Window(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range Windows {
		if w == known {
			return w, true
		}
	}
	return "", false
}

// StatusKey is the depletion status of a record or a group of records.
type StatusKey string

const (
	StatusCritical StatusKey = "critical"
	StatusWarning  StatusKey = "warning"
	StatusNormal   StatusKey = "normal"
)

// Severity ranks statuses: critical is the most severe.
func (s StatusKey) Severity() int {
	switch s {
	case StatusCritical:
		return 2
	case StatusWarning:
		return 1
	}
	return 0
}

// Worse returns the more severe of two statuses.
func Worse(a, b StatusKey) StatusKey {
	if b.Severity() > a.Severity() {
		return b
	}
	return a
}

// StatusFilter selects records by status. StatusAll passes everything.
type StatusFilter string

const StatusAll StatusFilter = "all"

// ParseStatusFilter returns the filter for a label, defaulting to StatusAll.
func ParseStatusFilter(label string) StatusFilter {
	switch s := StatusKey(strings.ToLower(strings.TrimSpace(label))); s {
	case StatusCritical, StatusWarning, StatusNormal:
		return StatusFilter(s)
	}
	return StatusAll
}

// DaysLeft is a forecasted runway. The zero value is a bounded runway of 0
// days; Unbounded() is used when there is no consumption to forecast from.
type DaysLeft struct {
	days      int
	unbounded bool
}

// Days returns a bounded runway.
func Days(n int) DaysLeft {
	if n < 0 {
		n = 0
	}
	return DaysLeft{days: n}
}

// Unbounded returns the "never runs out" runway.
func Unbounded() DaysLeft {
	return DaysLeft{unbounded: true}
}

// Value returns the number of days and false when the runway is unbounded.
func (d DaysLeft) Value() (int, bool) {
	return d.days, !d.unbounded
}

func (d DaysLeft) IsUnbounded() bool {
	return d.unbounded
}

// Less orders runways ascending; unbounded sorts after every finite value.
func (d DaysLeft) Less(o DaysLeft) bool {
	if d.unbounded {
		return false
	}
	if o.unbounded {
		return true
	}
	return d.days < o.days
}

// Below reports whether the runway is finite and strictly under n days.
func (d DaysLeft) Below(n int) bool {
	return !d.unbounded && d.days < n
}

// MinDaysLeft returns the shorter of two runways.
func MinDaysLeft(a, b DaysLeft) DaysLeft {
	if b.Less(a) {
		return b
	}
	return a
}

func (d DaysLeft) String() string {
	if d.unbounded {
		return "∞"
	}
	return fmt.Sprintf("%d", d.days)
}

// MarshalJSON encodes an unbounded runway as null.
func (d DaysLeft) MarshalJSON() ([]byte, error) {
	if d.unbounded {
		return []byte("null"), nil
	}
	return json.Marshal(d.days)
}

func (d *DaysLeft) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Unbounded()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode days left: %w", err)
	}
	*d = Days(n)
	return nil
}

// MonitoringRecord is the depletion forecast for one product at one warehouse
// of one marketplace.
type MonitoringRecord struct {
	Article     string      `json:"article"`
	Warehouse   string      `json:"warehouse"`
	Marketplace Marketplace `json:"marketplace"`
	Stock       int         `json:"stock"`

	OrdersToday     int `json:"orders_today"`
	OrdersYesterday int `json:"orders_yesterday"`
	Orders3d        int `json:"orders_3d"`
	Orders7d        int `json:"orders_7d"`
	Orders30d       int `json:"orders_30d"`

	Avg3d    float64 `json:"avg_3d"`
	Avg7d    float64 `json:"avg_7d"`
	Avg30d   float64 `json:"avg_30d"`
	Avg7dRaw float64 `json:"avg_7d_raw"`

	Deviation3d  *int `json:"deviation_3d"`
	Deviation30d *int `json:"deviation_30d"`

	DaysLeft  DaysLeft  `json:"days_left"`
	StatusKey StatusKey `json:"status"`

	// Cluster is only set on records returned inside a ClusterAggregate.
	Cluster string `json:"cluster,omitempty"`
}

// WarehouseGroup is the per-warehouse slice of a cluster.
type WarehouseGroup struct {
	Name        string             `json:"name"`
	Records     []MonitoringRecord `json:"records"`
	TotalStock  int                `json:"total_stock"`
	MinDaysLeft DaysLeft           `json:"min_days_left"`
}

// ClusterAggregate summarizes all records resolved to one logistics cluster.
type ClusterAggregate struct {
	Name          string           `json:"name"`
	Warehouses    []WarehouseGroup `json:"warehouses"`
	TotalStock    int              `json:"total_stock"`
	MinDaysLeft   DaysLeft         `json:"min_days_left"`
	WorstStatus   StatusKey        `json:"worst_status"`
	ProductTotals map[string]int   `json:"product_totals"`
}

// Alert is a cluster-wide depletion warning for a watch-listed product.
type Alert struct {
	Article     string      `json:"article"`
	Cluster     string      `json:"cluster"`
	Marketplace Marketplace `json:"marketplace"`
	TotalStock  int         `json:"total_stock"`
	MinDaysLeft DaysLeft    `json:"min_days_left"`
	Severity    StatusKey   `json:"severity"`
}

// PeriodSummary carries the headline sales figures for the selected period.
type PeriodSummary struct {
	Window             Window  `json:"window"`
	Revenue            float64 `json:"revenue"`
	RedemptionsRevenue float64 `json:"redemptions_revenue"`
	Orders             int     `json:"orders"`
}

// View is everything the presentation layer needs for one selection.
type View struct {
	Version   string             `json:"version"`
	Selection Selection          `json:"selection"`
	Records   []MonitoringRecord `json:"records"`
	Clusters  []ClusterAggregate `json:"clusters"`
	Alerts    []Alert            `json:"alerts"`
	HasAlerts bool               `json:"has_alerts"`
	Period    PeriodSummary      `json:"period"`
	Totals    map[StatusKey]int  `json:"totals"`
}

package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/mpstock/internal/domain"
)

func TestEstimateConsumption(t *testing.T) {
	t.Run("excludes today from every window", func(t *testing.T) {
		c := EstimateConsumption(OrderCounts{Today: 5, Yesterday: 4, Days3: 14, Days7: 30, Days30: 120})

		assert.InDelta(t, 4.5, c.Avg3dRaw, 1e-9)
		assert.InDelta(t, 25.0/6.0, c.Avg7dRaw, 1e-9)
		assert.InDelta(t, 115.0/29.0, c.Avg30dRaw, 1e-9)

		assert.Equal(t, 4.5, c.Avg3d())
		assert.Equal(t, 4.2, c.Avg7d())
		assert.Equal(t, 4.0, c.Avg30d())

		require.NotNil(t, c.Deviation3d)
		require.NotNil(t, c.Deviation30d)
		assert.Equal(t, 108, *c.Deviation3d)
		assert.Equal(t, 95, *c.Deviation30d)
	})

	t.Run("window smaller than today floors at zero", func(t *testing.T) {
		c := EstimateConsumption(OrderCounts{Today: 5, Days3: 3, Days7: 5, Days30: 4})

		assert.Zero(t, c.Avg3dRaw)
		assert.Zero(t, c.Avg7dRaw)
		assert.Zero(t, c.Avg30dRaw)
		assert.Nil(t, c.Deviation3d)
		assert.Nil(t, c.Deviation30d)
	})

	t.Run("deviation undefined without 7-day consumption", func(t *testing.T) {
		c := EstimateConsumption(OrderCounts{Days3: 4, Days7: 0, Days30: 10})

		assert.Equal(t, 2.0, c.Avg3dRaw)
		assert.Nil(t, c.Deviation3d)
		assert.Nil(t, c.Deviation30d)
	})

	t.Run("deviation undefined without window consumption", func(t *testing.T) {
		c := EstimateConsumption(OrderCounts{Days3: 0, Days7: 6, Days30: 29})

		assert.Nil(t, c.Deviation3d)
		require.NotNil(t, c.Deviation30d)
		assert.Equal(t, 100, *c.Deviation30d)
	})
}

func TestForecast(t *testing.T) {
	tests := []struct {
		name       string
		stock      int
		avg        float64
		wantDays   int
		unbounded  bool
		wantStatus domain.StatusKey
	}{
		{name: "warning runway", stock: 70, avg: 25.0 / 6.0, wantDays: 17, wantStatus: domain.StatusWarning},
		{name: "no consumption", stock: 70, avg: 0, unbounded: true, wantStatus: domain.StatusNormal},
		{name: "critical runway", stock: 10, avg: 1, wantDays: 10, wantStatus: domain.StatusCritical},
		{name: "critical boundary", stock: 13, avg: 1, wantDays: 13, wantStatus: domain.StatusCritical},
		{name: "warning lower boundary", stock: 14, avg: 1, wantDays: 14, wantStatus: domain.StatusWarning},
		{name: "warning upper boundary", stock: 20, avg: 1, wantDays: 20, wantStatus: domain.StatusWarning},
		{name: "normal boundary", stock: 21, avg: 1, wantDays: 21, wantStatus: domain.StatusNormal},
		{name: "rounds half up", stock: 27, avg: 2, wantDays: 14, wantStatus: domain.StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, status := Forecast(tt.stock, tt.avg)

			assert.Equal(t, tt.wantStatus, status)
			if tt.unbounded {
				assert.True(t, days.IsUnbounded())
				return
			}
			got, finite := days.Value()
			assert.True(t, finite)
			assert.Equal(t, tt.wantDays, got)
		})
	}
}

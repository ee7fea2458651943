package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysLeft_Ordering(t *testing.T) {
	assert.True(t, Days(3).Less(Days(4)))
	assert.False(t, Days(4).Less(Days(4)))
	assert.True(t, Days(1000).Less(Unbounded()))
	assert.False(t, Unbounded().Less(Days(0)))
	assert.False(t, Unbounded().Less(Unbounded()))

	assert.Equal(t, Days(2), MinDaysLeft(Unbounded(), Days(2)))
	assert.Equal(t, Days(0), Days(-5))

	assert.True(t, Days(13).Below(14))
	assert.False(t, Unbounded().Below(14))
}

func TestDaysLeft_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A DaysLeft `json:"a"`
		B DaysLeft `json:"b"`
	}{A: Days(17), B: Unbounded()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":17,"b":null}`, string(data))

	var decoded struct {
		A DaysLeft `json:"a"`
		B DaysLeft `json:"b"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Days(17), decoded.A)
	assert.True(t, decoded.B.IsUnbounded())

	var bad DaysLeft
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &bad))
}

func TestDaysLeft_String(t *testing.T) {
	assert.Equal(t, "17", Days(17).String())
	assert.Equal(t, "∞", Unbounded().String())
}

func TestStatusSeverity(t *testing.T) {
	assert.Equal(t, StatusCritical, Worse(StatusWarning, StatusCritical))
	assert.Equal(t, StatusWarning, Worse(StatusWarning, StatusNormal))
	assert.Equal(t, StatusNormal, Worse(StatusNormal, StatusNormal))
}

func TestParsers(t *testing.T) {
	mp, ok := ParseMarketplace(" OZON ")
	assert.True(t, ok)
	assert.Equal(t, MarketplaceOzon, mp)

	_, ok = ParseMarketplace("ym")
	assert.False(t, ok)

	w, ok := ParseWindow("DAYS_30")
	assert.True(t, ok)
	assert.Equal(t, Window30Days, w)

	assert.Equal(t, StatusFilter(StatusWarning), ParseStatusFilter("Warning"))
	assert.Equal(t, StatusAll, ParseStatusFilter("broken"))
	assert.Equal(t, StatusAll, ParseStatusFilter(""))
}

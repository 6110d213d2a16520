package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(parts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p)
	}
	return total
}

func TestSplit_SumsExactly(t *testing.T) {
	weights := []decimal.Decimal{dec("1"), dec("1"), dec("1")}
	parts := Split(dec("10"), weights)
	require.Len(t, parts, 3)
	assert.True(t, sum(parts).Equal(dec("10")), sum(parts).String())
}

func TestSplit_RemainderGoesToLastNonZero(t *testing.T) {
	weights := []decimal.Decimal{dec("1"), dec("2"), decimal.Zero}
	parts := Split(dec("1"), weights)
	assert.True(t, parts[2].IsZero())
	assert.True(t, sum(parts).Equal(dec("1")))
}

func TestSplit_ProportionalWhenExact(t *testing.T) {
	parts := Split(dec("30"), []decimal.Decimal{dec("100"), dec("200")})
	assert.True(t, parts[0].Equal(dec("10")))
	assert.True(t, parts[1].Equal(dec("20")))
}

func TestSplit_ZeroWeights(t *testing.T) {
	parts := Split(dec("5"), []decimal.Decimal{decimal.Zero, decimal.Zero})
	assert.True(t, parts[0].IsZero())
	assert.True(t, parts[1].IsZero())
	assert.Empty(t, Split(dec("5"), nil))
}

func TestRatio(t *testing.T) {
	assert.True(t, Ratio(dec("171"), dec("180")).Equal(dec("0.95")))
	assert.True(t, Ratio(dec("5"), decimal.Zero).Equal(decimal.NewFromInt(1)))
}

func TestPresentRoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, 171.0, Present(dec("171.0000")))
	assert.Equal(t, 33.3, Present(dec("33.3333333")))
	assert.Equal(t, 2.5, Present(dec("2.45")))
}

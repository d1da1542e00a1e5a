package decimal_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/afip-client/internal/decimal"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"894.505", "894.51"},
		{"894.504", "894.5"},
		{"-894.505", "-894.51"},
		{"0.005", "0.01"},
		{"100", "100"},
	}
	for _, tt := range tests {
		got := decimal.Round2(dec.RequireFromString(tt.in))
		assert.True(t, got.Equal(dec.RequireFromString(tt.want)),
			"Round2(%s) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestRound2Idempotent(t *testing.T) {
	values := []string{"894.505", "0.015", "-12.345", "1000000.999"}
	for _, v := range values {
		once := decimal.Round2(dec.RequireFromString(v))
		twice := decimal.Round2(once)
		assert.True(t, once.Equal(twice), "round(round(%s)) != round(%s)", v, v)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1500.00", decimal.Format(dec.NewFromInt(1500)))
	assert.Equal(t, "894.50", decimal.Format(dec.RequireFromString("894.5")))
	assert.Equal(t, "0.00", decimal.Format(decimal.Zero))
}

func TestVATAmount(t *testing.T) {
	got := decimal.VATAmount(dec.NewFromInt(200), dec.NewFromInt(21))
	assert.True(t, got.Equal(dec.NewFromInt(42)))

	got = decimal.VATAmount(dec.NewFromInt(500), dec.RequireFromString("10.5"))
	assert.True(t, got.Equal(dec.RequireFromString("52.5")))

	got = decimal.VATAmount(dec.NewFromInt(100), decimal.Zero)
	assert.True(t, got.IsZero())
}

func TestNetFromGross(t *testing.T) {
	// 121 gross at 21% recovers 100 net.
	got := decimal.NetFromGross(dec.NewFromInt(121), dec.NewFromInt(21))
	assert.True(t, got.Equal(dec.NewFromInt(100)), "got %s", got)

	// Zero rate keeps the price.
	got = decimal.NetFromGross(dec.NewFromInt(50), decimal.Zero)
	assert.True(t, got.Equal(dec.NewFromInt(50)))
}

func TestSum(t *testing.T) {
	got := decimal.Sum([]dec.Decimal{
		dec.NewFromInt(1),
		dec.RequireFromString("2.5"),
		dec.NewFromInt(3),
	})
	assert.True(t, got.Equal(dec.RequireFromString("6.5")))
	assert.True(t, decimal.Sum(nil).IsZero())
}

func TestFromString(t *testing.T) {
	d, err := decimal.FromString("123456.78")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec.RequireFromString("123456.78")))

	_, err = decimal.FromString("not-a-number")
	require.Error(t, err)
}

func TestMustFromString(t *testing.T) {
	assert.Panics(t, func() {
		decimal.MustFromString("invalid")
	})
}

func TestIsPositive(t *testing.T) {
	assert.True(t, decimal.IsPositive(dec.NewFromInt(1)))
	assert.False(t, decimal.IsPositive(decimal.Zero))
	assert.False(t, decimal.IsPositive(dec.NewFromInt(-1)))
}

package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
	})

	t.Run("empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyAEDFromString(t *testing.T) {
	m, err := NewMoneyAEDFromString("1234.56")
	require.NoError(t, err)
	assert.Equal(t, AED, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(1234.56)))

	_, err = NewMoneyAEDFromString("not-a-number")
	assert.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyAEDFromFloat(100.50)
	b := NewMoneyAEDFromFloat(50.25)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(150.75)))

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromFloat(50.25)))

	t.Run("currency mismatch", func(t *testing.T) {
		usd, err := NewMoney(decimal.NewFromInt(10), USD)
		require.NoError(t, err)

		_, err = a.Add(usd)
		assert.Error(t, err)
		_, err = a.Sub(usd)
		assert.Error(t, err)
	})
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, ZeroAED().IsZero())
	assert.True(t, NewMoneyAEDFromFloat(1).IsPositive())
	assert.True(t, NewMoneyAEDFromFloat(-1).IsNegative())
	assert.True(t, NewMoneyAEDFromFloat(2).GreaterThan(NewMoneyAEDFromFloat(1)))
	assert.True(t, NewMoneyAEDFromFloat(1).LessThan(NewMoneyAEDFromFloat(2)))
	assert.True(t, NewMoneyAEDFromFloat(1.5).Equals(NewMoneyAEDFromFloat(1.50)))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "1500.00 AED", NewMoneyAEDFromFloat(1500).String())
	assert.Equal(t, "0.10 AED", NewMoneyAEDFromFloat(0.1).String())
}

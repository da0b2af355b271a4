package nutrition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("strips unit", func(t *testing.T) {
		v, err := Parse("25.9g", Grams)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, 25.9, *v)
	})

	t.Run("unit is case insensitive", func(t *testing.T) {
		v, err := Parse(" 340MG ", Milligrams)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, 340.0, *v)
	})

	t.Run("zero is a value", func(t *testing.T) {
		v, err := Parse("0mg", Milligrams)
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, 0.0, *v)
	})

	t.Run("sentinels are null", func(t *testing.T) {
		for _, raw := range []string{"", "—", "-", "--", "N/A", "n/a", "NA", "  "} {
			v, err := Parse(raw, Grams)
			assert.NoError(t, err, raw)
			assert.Nil(t, v, raw)
		}
	})

	t.Run("no unit", func(t *testing.T) {
		v, err := Parse("120", NoUnit)
		require.NoError(t, err)
		assert.Equal(t, 120.0, *v)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Parse("abc", Grams)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedValue))

		var mErr *MalformedValueError
		require.True(t, errors.As(err, &mErr))
		assert.Equal(t, "abc", mErr.Raw)
	})

	t.Run("wrong unit is malformed", func(t *testing.T) {
		_, err := Parse("12oz", Grams)
		assert.ErrorIs(t, err, ErrMalformedValue)
	})

	t.Run("non-decimal numbers are malformed", func(t *testing.T) {
		for _, raw := range []string{
			"NaN", "nan", "NaNg", "inf", "Infinity", "-Inf", "+Infg",
			"0x1p4g", "0x10", "1e3g", "1E30", "-5g", "+5g", "1.2.3g", ".", "1_000",
		} {
			v, err := Parse(raw, Grams)
			assert.ErrorIs(t, err, ErrMalformedValue, raw)
			assert.Nil(t, v, raw)
		}
	})

	t.Run("plain decimal forms", func(t *testing.T) {
		for raw, want := range map[string]float64{"5.": 5, ".5g": 0.5, "007g": 7} {
			v, err := Parse(raw, Grams)
			require.NoError(t, err, raw)
			require.NotNil(t, v, raw)
			assert.Equal(t, want, *v, raw)
		}
	})
}

func TestParseLenient(t *testing.T) {
	var warnings []error
	v := ParseLenient("lots", Grams, func(err error) { warnings = append(warnings, err) })
	assert.Nil(t, v)
	assert.Len(t, warnings, 1)

	v = ParseLenient("3g", Grams, nil)
	require.NotNil(t, v)
	assert.Equal(t, 3.0, *v)
}

func TestParseCalories(t *testing.T) {
	n, err := ParseCalories("250")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 250, *n)

	n, err = ParseCalories("—")
	assert.NoError(t, err)
	assert.Nil(t, n)

	n, err = ParseCalories("2147483647")
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, MaxCalories, *n)

	for _, raw := range []string{"2147483648", "99999999999999999999", "1e30", "NaN", "inf"} {
		n, err = ParseCalories(raw)
		assert.ErrorIs(t, err, ErrMalformedValue, raw)
		assert.Nil(t, n, raw)
	}
}

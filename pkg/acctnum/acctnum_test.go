package acctnum_test

import (
	"testing"

	"github.com/seulahhh/Fintech-project/pkg/acctnum"
	"github.com/stretchr/testify/require"
)

func TestCheckDigit(t *testing.T) {
	t.Parallel()

	t.Run("known body produces 9", func(t *testing.T) {
		// weights 2..9 right-to-left: 8*2+7*3+6*4+5*5+4*6+3*7+2*8+1*9 = 156
		// 156 mod 11 = 2, 11-2 = 9
		require.Equal(t, byte('9'), acctnum.CheckDigit("12345678"))
	})

	t.Run("check value 10 maps to X", func(t *testing.T) {
		// 1*2 = 2, 2 mod 11 = 2... search a body whose sum mod 11 == 1.
		// "10000000": rightmost seven zeros contribute nothing, leading 1 has
		// weight 9, sum = 9, 11-9 = 2.
		require.Equal(t, byte('2'), acctnum.CheckDigit("10000000"))
		// "50000000": 5*9 = 45, 45 mod 11 = 1, 11-1 = 10 -> 'X'.
		require.Equal(t, byte('X'), acctnum.CheckDigit("50000000"))
	})

	t.Run("check value 11 maps to 0", func(t *testing.T) {
		// "00000000" sums to 0, remainder 0, 11-0 = 11 -> '0'.
		require.Equal(t, byte('0'), acctnum.CheckDigit("00000000"))
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.True(t, acctnum.Validate("12345678", '9'))
	require.False(t, acctnum.Validate("12345678", '0'))
	require.False(t, acctnum.Validate("", '0'))
	require.False(t, acctnum.Validate("12a45678", '9'))
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("every generated number validates", func(t *testing.T) {
		for range 10_000 {
			number, err := acctnum.Generate()
			require.NoError(t, err)
			require.Len(t, number, 12)
			require.True(t, acctnum.ValidateNumber(number), "number %q failed validation", number)
		}
	})

	t.Run("fixed prefix and width", func(t *testing.T) {
		number, err := acctnum.Generate()
		require.NoError(t, err)
		require.Equal(t, acctnum.ServiceCode, number[:3])
		require.NotEqual(t, byte('0'), number[3], "body must not have a leading zero")
	})
}

func TestValidateNumber(t *testing.T) {
	t.Parallel()

	require.True(t, acctnum.ValidateNumber("177123456789"))
	require.False(t, acctnum.ValidateNumber("178123456789")) // wrong service code
	require.False(t, acctnum.ValidateNumber("177123456780")) // wrong check char
	require.False(t, acctnum.ValidateNumber("17712345678"))  // too short
}

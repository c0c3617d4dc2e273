package cryptox

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode_Range(t *testing.T) {
	for range 1000 {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.True(t, IsVerificationCode(code), "code %q", code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, VerificationCodeMin)
		require.LessOrEqual(t, n, VerificationCodeMax)
	}
}

func TestIsVerificationCode(t *testing.T) {
	require.True(t, IsVerificationCode("123456"))
	require.False(t, IsVerificationCode("12345"))
	require.False(t, IsVerificationCode("1234567"))
	require.False(t, IsVerificationCode("12345a"))
	require.False(t, IsVerificationCode(" 12345"))
}

func TestCodesEqual(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		submitted string
		want      bool
	}{
		{"exact", "123456", "123456", true},
		{"padded submission", "123456", " 123456 ", true},
		{"padded stored", " 123456\n", "123456", true},
		{"off by one", "123456", "123457", false},
		{"prefix", "123456", "12345", false},
		{"no stored code", "", "", false},
		{"no stored code with submission", "", "123456", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, CodesEqual(tt.stored, tt.submitted))
		})
	}
}

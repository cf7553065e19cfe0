package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrencyBRL(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "R$ 0,00"},
		{12.5, "R$ 12,50"},
		{1234.56, "R$ 1.234,56"},
		{1000000, "R$ 1.000.000,00"},
		{-45.9, "-R$ 45,90"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrencyBRL(tt.amount))
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "R$ 12,50", want: "12.5"},
		{raw: "R$ 1.234,56", want: "1234.56"},
		{raw: "1,234.56", want: "1234.56"},
		{raw: "15.00", want: "15"},
		{raw: "1.500", want: "1500"},
		{raw: "R$ 8", want: "8"},
		{raw: "R$ 2.500.000,00", want: "2500000"},
		{raw: "", wantErr: true},
		{raw: "grátis", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCurrency(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatThenParseRoundTrip(t *testing.T) {
	got, err := ParseCurrency(FormatCurrencyBRL(4321.09))
	require.NoError(t, err)
	assert.Equal(t, "4321.09", got.String())
}

func TestTokenLifecycle(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateToken(7, "kitchen", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "kitchen", claims.Role)

	BlacklistToken(token, time.Now().Add(time.Hour))
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	SetJWTSecret("test-secret")

	expired, err := GenerateToken(1, "admin", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	SetJWTSecret("other-secret")
	foreign, err := GenerateToken(1, "admin", time.Hour)
	require.NoError(t, err)
	SetJWTSecret("test-secret")
	_, err = ParseToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokingOneTokenLeavesSiblingValid(t *testing.T) {
	SetJWTSecret("sibling-secret")
	first, err := GenerateToken(7, "kitchen", time.Hour)
	require.NoError(t, err)
	second, err := GenerateToken(7, "kitchen", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	BlacklistToken(first, time.Now().Add(time.Hour))
	_, err = ParseToken(first)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)

	claims, err := ParseToken(second)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

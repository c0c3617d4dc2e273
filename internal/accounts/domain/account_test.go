package domain_test

import (
	"testing"
	"time"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for in, want := range map[string]domain.Role{
		"":            domain.RoleUser,
		"user":        domain.RoleUser,
		" Admin ":     domain.RoleAdmin,
		"BACKENDUSER": domain.RoleBackendUser,
	} {
		got, err := domain.ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	_, err := domain.ParseRole("superuser")
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestAccountPatchApply(t *testing.T) {
	now := time.Now().UTC()
	a := domain.Account{ID: "1", Name: "Ann", Role: domain.RoleUser}

	name := "Annie"
	verified := true
	a = domain.AccountPatch{
		Name:    &name,
		SetCode: &domain.PendingCode{Code: "123456", ExpiresAt: now.Add(time.Minute)},
	}.Apply(a)
	require.Equal(t, "Annie", a.Name)
	require.True(t, a.HasPendingCode())
	require.False(t, a.CodeExpired(now))
	require.True(t, a.CodeExpired(now.Add(time.Minute)))

	a = domain.AccountPatch{EmailVerified: &verified, ClearCode: true}.Apply(a)
	require.True(t, a.EmailVerified)
	require.False(t, a.HasPendingCode())
	require.Nil(t, a.VerificationCodeExpires)
	require.False(t, a.CodeExpired(now.Add(time.Hour)))
}

func TestSummaryOmitsSecrets(t *testing.T) {
	a := domain.Account{ID: "1", Name: "Ann", Email: "ann@x.com", PasswordHash: "h", VerificationCode: "123456"}
	s := a.Summary()
	require.Equal(t, "ann@x.com", s.Email)
	require.Equal(t, "Ann", s.Name)
}

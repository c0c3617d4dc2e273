package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testHasher() *PasswordHasher {
	return NewPasswordHasher("test-pepper")
}

func TestHash_PHCFormat(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	h := testHasher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.NotEqual(t, tt.password, hash)
			require.NotContains(t, hash, tt.password)

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "argon2id", parts[1])
			require.Equal(t, "v=19", parts[2])
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			ok, err := h.Verify(tt.password, hash)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	h := testHasher()

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")

	for _, hash := range []string{hash1, hash2} {
		ok, err := h.Verify("samepassword", hash)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestVerify_WrongPasswordIsNotAnError(t *testing.T) {
	h := testHasher()
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		strings.Repeat("x", 10000),
	} {
		ok, err := h.Verify(wrong, hash)
		require.NoError(t, err, "input %q", wrong)
		require.False(t, ok, "input %q", wrong)
	}
}

func TestVerify_PepperMatters(t *testing.T) {
	hash, err := NewPasswordHasher("pepper-a").Hash("secret1")
	require.NoError(t, err)

	ok, err := NewPasswordHasher("pepper-b").Verify("secret1", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerify_InvalidHashFormat(t *testing.T) {
	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"plaintext", "secret1"},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"zero parallelism", "$argon2id$v=19$m=19456,t=2,p=0$c2FsdA$aGFzaA"},
		{"absurd memory", "$argon2id$v=19$m=4294967295,t=2,p=1$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	h := testHasher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify("test-password", tt.invalidHash)
			require.ErrorIs(t, err, ErrHashFormat)
			require.False(t, ok)
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, 12)
		require.NotContains(t, seen, password, "duplicate password generated")
		seen[password] = true

		for _, char := range password {
			valid := (char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9')
			require.True(t, valid, "password should only contain alphanumeric characters")
		}
	}
}

package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/kodefactor/accounts/pkg/cryptox"
	"github.com/kodefactor/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newEdDSASigner(t *testing.T, kid string) jwtx.PublicKeySigner {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newEdDSASigner(t, "test-key-eddsa")
	require.NoError(t, signer.Validate())
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "test-key-eddsa", signer.KID())

	claims := jwtx.NewSessionClaims("acc-456", "ed@example.com", "Ed", "user", exampleIssuer, 5*time.Minute, time.Now().UTC())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.False(t, keyset.IsReady())
	require.NoError(t, keyset.AddSigner(signer))
	require.True(t, keyset.IsReady())

	verifier := jwtx.NewVerifierEdDSA(keyset, exampleIssuer)
	parsed, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "acc-456", parsed.Subject)
	require.Equal(t, "ed@example.com", parsed.Email)
	require.Equal(t, "user", parsed.Role)
}

func TestEdDSAVerify_UnknownKID(t *testing.T) {
	signer := newEdDSASigner(t, "kid-a")
	other := newEdDSASigner(t, "kid-b")

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(other))

	token, err := signer.Sign(jwtx.NewSessionClaims("acc", "a@b.c", "A", "user", "", time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keyset, "").Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	require.ErrorIs(t, err, jwtx.ErrUnknownKID)
}

func TestEdDSAVerify_WrongKeySameKID(t *testing.T) {
	signer := newEdDSASigner(t, "shared")
	imposter := newEdDSASigner(t, "shared")

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	token, err := imposter.Sign(jwtx.NewSessionClaims("acc", "a@b.c", "A", "user", "", time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keyset, "").Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestKeySet_PublicJWKS(t *testing.T) {
	signer := newEdDSASigner(t, "kid-1")
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	jwks := keyset.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.Equal(t, "kid-1", jwks.Keys[0].Kid)
	require.False(t, strings.ContainsAny(jwks.Keys[0].X, "+/="))

	_, err := keyset.Get("missing")
	require.ErrorIs(t, err, jwtx.ErrNoKey)

	require.Error(t, keyset.AddJWK(jwtx.JWK{Kty: "RSA", Kid: "r"}))
}

func TestNewSignerEdDSA_RejectsBadPEM(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA("k", []byte("not pem"))
	require.Error(t, err)
}

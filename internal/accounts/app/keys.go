package app

import (
	"fmt"
	"log/slog"

	"github.com/kodefactor/accounts/pkg/cryptox"
	"github.com/kodefactor/accounts/pkg/jwtx"
)

const signingKID = "accounts-1"

// AuthKeys bundles what the token service and router need. Keys is nil for
// HS256, which has nothing to publish.
type AuthKeys struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Keys     *jwtx.KeySet
}

// InitAuthKeys builds the signer and verifier for the configured algorithm.
//
// HS256 signs with AUTH_JWT_SECRET. EdDSA loads the PEM key at
// AUTH_SIGNING_KEY_FILE, creating it when missing; without a file the key is
// generated in memory and every restart invalidates outstanding tokens.
func InitAuthKeys(cfg Config, logger *slog.Logger) (AuthKeys, error) {
	switch cfg.Algorithm {
	case AlgorithmHS256:
		signer, err := jwtx.NewSignerHS256(signingKID, []byte(cfg.JWTSecret))
		if err != nil {
			return AuthKeys{}, fmt.Errorf("init HS256 signer: %w", err)
		}
		logger.Info("token signing configured", "algorithm", AlgorithmHS256, "issuer", cfg.Issuer)
		return AuthKeys{
			Signer:   signer,
			Verifier: jwtx.NewVerifierHS256([]byte(cfg.JWTSecret), cfg.Issuer),
		}, nil

	case AlgorithmEdDSA:
		var (
			pemKey []byte
			err    error
		)
		if cfg.SigningKeyFile != "" {
			pemKey, err = cryptox.LoadOrCreateEd25519Key(cfg.SigningKeyFile)
		} else {
			pemKey, err = cryptox.GenerateEd25519Key()
		}
		if err != nil {
			return AuthKeys{}, fmt.Errorf("load EdDSA key: %w", err)
		}

		signer, err := jwtx.NewSignerEdDSA(signingKID, pemKey)
		if err != nil {
			return AuthKeys{}, fmt.Errorf("init EdDSA signer: %w", err)
		}
		keys := jwtx.NewKeySet()
		if err := keys.AddSigner(signer); err != nil {
			return AuthKeys{}, fmt.Errorf("publish EdDSA key: %w", err)
		}

		logger.Info("token signing configured", "algorithm", AlgorithmEdDSA, "kid", signer.KID(), "issuer", cfg.Issuer)
		if cfg.SigningKeyFile == "" {
			logger.Warn("ephemeral signing key in use, tokens will not survive a restart")
		}
		return AuthKeys{
			Signer:   signer,
			Verifier: jwtx.NewVerifierEdDSA(keys, cfg.Issuer),
			Keys:     keys,
		}, nil
	}
	return AuthKeys{}, fmt.Errorf("unsupported algorithm %q", cfg.Algorithm)
}

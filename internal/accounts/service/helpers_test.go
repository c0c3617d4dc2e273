package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/mail"
	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/internal/accounts/store"
	"github.com/kodefactor/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/kodefactor/accounts/pkg/cryptox"
	"github.com/kodefactor/accounts/pkg/jwtx"
)

const testIssuer = "accounts-test"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fastHasher keeps argon2 cheap in tests.
var fastHasher = &cryptox.PasswordHasher{Params: cryptox.Argon2Params{
	Memory:      64,
	Iterations:  1,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	accounts store.Accounts
	queue    *mail.MemoryQueue
	clock    *clock
	tokens   *service.TokenService
	codes    *service.CodeService
	gate     *service.Gate
	auth     *service.AuthService
}

func newTokens(t *testing.T) *service.TokenService {
	t.Helper()
	signer, err := jwtx.NewSignerHS256("test", testSecret)
	require.NoError(t, err)
	return &service.TokenService{
		Signer:   signer,
		Verifier: jwtx.NewVerifierHS256(testSecret, testIssuer),
		Issuer:   testIssuer,
		TTL:      time.Hour,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "accounts.db")))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	f := &fixture{
		accounts: s.Accounts(),
		queue:    mail.NewMemoryQueue(64),
		clock:    &clock{now: time.Now().UTC()},
		tokens:   newTokens(t),
	}
	f.codes = &service.CodeService{
		Accounts: f.accounts,
		Mail:     f.queue,
		TTL:      15 * time.Minute,
		Now:      f.clock.Now,
	}
	f.gate = &service.Gate{Accounts: f.accounts, Tokens: f.tokens}
	f.auth = &service.AuthService{
		Accounts: f.accounts,
		Hasher:   fastHasher,
		Codes:    f.codes,
		Tokens:   f.tokens,
		Gate:     f.gate,
	}
	return f
}

func (f *fixture) signup(t *testing.T, name, email, password string) service.Session {
	t.Helper()
	sess, err := f.auth.Signup(context.Background(), service.SignupInput{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	return sess
}

func (f *fixture) account(t *testing.T, email string) domain.Account {
	t.Helper()
	a, err := f.accounts.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return a
}

func (f *fixture) nextMail(t *testing.T) mail.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	return m
}

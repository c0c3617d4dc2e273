package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/cryptox"
)

func TestSignupCreatesUnverifiedUser(t *testing.T) {
	f := newFixture(t)

	sess := f.signup(t, "Ann", "ann@x.com", "secret1")
	require.NotEmpty(t, sess.Token)
	require.NotEmpty(t, sess.Account.ID)

	a := f.account(t, "ann@x.com")
	require.Equal(t, domain.RoleUser, a.Role)
	require.False(t, a.EmailVerified)
	require.NotEqual(t, "secret1", a.PasswordHash)
	require.NotContains(t, a.PasswordHash, "secret1")

	ok, err := fastHasher.Verify("secret1", a.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	require.True(t, cryptox.IsVerificationCode(a.VerificationCode))
	require.NotNil(t, a.VerificationCodeExpires)
	require.WithinDuration(t, f.clock.Now().Add(15*time.Minute), *a.VerificationCodeExpires, time.Second)

	m := f.nextMail(t)
	require.Equal(t, "ann@x.com", m.To)
	require.Contains(t, m.Text, a.VerificationCode)

	claims, err := f.tokens.Verify(sess.Token)
	require.NoError(t, err)
	require.Equal(t, a.ID, claims.AccountID)
	require.Equal(t, "user", claims.Role)
}

func TestSignupValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      service.SignupInput
		message string
		fields  map[string]string
	}{
		{
			name:    "all missing",
			in:      service.SignupInput{},
			message: "All fields are required",
			fields: map[string]string{
				"name":     "Name is required",
				"email":    "Email is required",
				"password": "Password is required",
			},
		},
		{
			name:    "blank name",
			in:      service.SignupInput{Name: "  ", Email: "a@x.com", Password: "secret1"},
			message: "All fields are required",
			fields:  map[string]string{"name": "Name is required"},
		},
		{
			name:    "short password",
			in:      service.SignupInput{Name: "Ann", Email: "a@x.com", Password: "12345"},
			message: "Registration failed",
			fields:  map[string]string{"password": "Password must be at least 6 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.auth.Signup(context.Background(), tt.in)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.message, verr.Message)
			require.Equal(t, tt.fields, verr.Fields)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@x.com", "secret1")

	_, err := f.auth.Signup(context.Background(), service.SignupInput{Name: "Ann", Email: "ann@x.com", Password: "secret2"})
	require.ErrorIs(t, err, service.ErrDuplicateEmail)

	// emails are case-sensitive as stored
	f.signup(t, "Ann", "Ann@x.com", "secret1")
}

func TestConcurrentSignupSameEmail(t *testing.T) {
	f := newFixture(t)

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.Signup(context.Background(), service.SignupInput{Name: "Ann", Email: "race@x.com", Password: "secret1"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, service.ErrDuplicateEmail):
				dupes++
			default:
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, n-1, dupes)

	count, err := f.accounts.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestLoginDoesNotRevealWhichPartFailed(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@x.com", "secret1")
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "nobody@x.com", "secret1")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "ann@x.com", "wrong-password")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "ann@x.com", "")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Email and password required", verr.Message)

	sess, err := f.auth.Login(ctx, "ann@x.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
}

func TestVerifyConsumesCodeOnce(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@x.com", "secret1")
	ctx := context.Background()
	code := f.account(t, "ann@x.com").VerificationCode

	_, err := f.auth.Verify(ctx, "ann@x.com", wrongCode(code))
	require.ErrorIs(t, err, service.ErrInvalidCode)

	sess, err := f.auth.Verify(ctx, "ann@x.com", " "+code+" ")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	require.True(t, sess.Account.EmailVerified)

	a := f.account(t, "ann@x.com")
	require.True(t, a.EmailVerified)
	require.Empty(t, a.VerificationCode)
	require.Nil(t, a.VerificationCodeExpires)

	_, err = f.auth.Verify(ctx, "ann@x.com", code)
	require.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestVerifyUnknownAccount(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Verify(context.Background(), "nobody@x.com", "123456")
	require.ErrorIs(t, err, service.ErrAccountNotFound)
}

func TestVerifyExpiredCode(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@x.com", "secret1")
	code := f.account(t, "ann@x.com").VerificationCode

	f.clock.Advance(15 * time.Minute)

	_, err := f.auth.Verify(context.Background(), "ann@x.com", code)
	require.ErrorIs(t, err, service.ErrCodeExpired)
	require.False(t, f.account(t, "ann@x.com").EmailVerified)
}

func TestResendVerificationReplacesCode(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "Ann", "ann@x.com", "secret1")
	f.nextMail(t)
	ctx := context.Background()

	first := f.account(t, "ann@x.com").VerificationCode

	// Redraw until the code differs so the old one is provably dead.
	var second string
	for i := 0; i < 10; i++ {
		require.NoError(t, f.auth.ResendVerification(ctx, "ann@x.com"))
		f.nextMail(t)
		second = f.account(t, "ann@x.com").VerificationCode
		if second != first {
			break
		}
	}
	require.NotEqual(t, first, second)

	_, err := f.auth.Verify(ctx, "ann@x.com", first)
	require.ErrorIs(t, err, service.ErrInvalidCode)

	_, err = f.auth.Verify(ctx, "ann@x.com", second)
	require.NoError(t, err)

	require.ErrorIs(t, f.auth.ResendVerification(ctx, "ann@x.com"), service.ErrAlreadyVerified)
	require.ErrorIs(t, f.auth.ResendVerification(ctx, "nobody@x.com"), service.ErrAccountNotFound)
}

func TestSignupSucceedsWhenMailQueueIsDown(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.queue.Close())

	sess := f.signup(t, "Ann", "ann@x.com", "secret1")
	require.NotEmpty(t, sess.Token)
	require.True(t, f.account(t, "ann@x.com").HasPendingCode())
}

func TestCheckTrimsAndComparesExactly(t *testing.T) {
	codes := &service.CodeService{}
	now := time.Now()
	exp := now.Add(time.Minute)
	a := domain.Account{VerificationCode: "123456", VerificationCodeExpires: &exp}

	require.NoError(t, codes.Check(a, "123456", now))
	require.NoError(t, codes.Check(a, " 123456 ", now))
	require.ErrorIs(t, codes.Check(a, "123457", now), service.ErrInvalidCode)
	require.ErrorIs(t, codes.Check(a, "", now), service.ErrInvalidCode)
	require.ErrorIs(t, codes.Check(a, "123456", exp), service.ErrCodeExpired)
	require.ErrorIs(t, codes.Check(domain.Account{}, "123456", now), service.ErrInvalidCode)
}

func TestAnnScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.signup(t, "Ann", "ann@x.com", "secret1")

	_, err := f.auth.Signup(ctx, service.SignupInput{Name: "Ann", Email: "ann@x.com", Password: "secret1"})
	require.ErrorIs(t, err, service.ErrDuplicateEmail)

	login, err := f.auth.Login(ctx, "ann@x.com", "secret1")
	require.NoError(t, err)

	_, err = f.auth.ValidateSession(ctx, login.Token)
	require.NoError(t, err)

	code := f.account(t, "ann@x.com").VerificationCode
	_, err = f.auth.Verify(ctx, "ann@x.com", wrongCode(code))
	require.ErrorIs(t, err, service.ErrInvalidCode)

	verified, err := f.auth.Verify(ctx, "ann@x.com", code)
	require.NoError(t, err)
	require.NotEmpty(t, verified.Token)
	require.True(t, f.account(t, "ann@x.com").EmailVerified)
}

func TestCreateUserProvisionsVerifiedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.auth.CreateUser(ctx, service.CreateUserInput{
		Name: "Root", Email: "root@x.com", Password: "secret1", Role: domain.RoleAdmin,
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, a.Role)
	require.True(t, a.EmailVerified)
	require.False(t, a.HasPendingCode())

	_, err = f.auth.CreateUser(ctx, service.CreateUserInput{
		Name: "Root", Email: "root@x.com", Password: "secret1",
	})
	require.ErrorIs(t, err, service.ErrDuplicateEmail)

	_, err = f.auth.CreateUser(ctx, service.CreateUserInput{
		Name: "X", Email: "x@x.com", Password: "secret1", Role: "superuser",
	})
	require.ErrorIs(t, err, domain.ErrUnknownRole)
}

func wrongCode(code string) string {
	if code == "100000" {
		return "100001"
	}
	return "100000"
}

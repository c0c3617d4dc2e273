package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodefactor/accounts/internal/accounts/app"
	"github.com/kodefactor/accounts/internal/accounts/domain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func useTempDatabase(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "accounts.db")
	t.Setenv("AUTH_DATABASE_DRIVER", "sqlite")
	t.Setenv("AUTH_DATABASE_FILE", file)
	return file
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	out, err := run(t, "--help")
	require.NoError(t, err)

	for _, sub := range []string{"serve", "migrate", "create-user"} {
		assert.Contains(t, out, sub, "Help missing %q command", sub)
	}
}

func TestMigrate(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations completed successfully")
}

func TestCreateUser(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "create-user", "--name", "Root", "--email", "root@x.com", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Created admin account root@x.com")
	assert.Contains(t, out, "Generated password: ")

	cfg, err := app.LoadDatabaseConfig()
	require.NoError(t, err)
	db, err := app.OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	a, err := db.Accounts().FindByEmail(context.Background(), "root@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, a.Role)
	assert.True(t, a.EmailVerified)
}

func TestCreateUser_Failures(t *testing.T) {
	useTempDatabase(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown role", []string{"--name", "X", "--email", "x@x.com", "--role", "root"}, "INVALID_ROLE"},
		{"short password", []string{"--name", "X", "--email", "x@x.com", "--password", "abc"}, "CREATE_USER_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"create-user"}, tt.args...)...)
			require.Error(t, err)
			oopsErr, ok := oops.AsOops(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, oopsErr.Code())
		})
	}

	_, err := run(t, "create-user", "--email", "x@x.com")
	assert.Error(t, err, "name is required")
}

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/kodefactor/accounts/internal/accounts/app"
	"github.com/kodefactor/accounts/internal/accounts/domain"
	"github.com/kodefactor/accounts/internal/accounts/service"
	"github.com/kodefactor/accounts/pkg/cryptox"
)

type createUserOptions struct {
	name     string
	email    string
	password string
	role     string
}

// NewCreateUserCmd creates the create-user subcommand. It is the only way to
// provision admin and backenduser accounts.
func NewCreateUserCmd() *cobra.Command {
	opts := &createUserOptions{}
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Provision a verified account with any role",
		Long: `Create an account that is already verified. Use it to provision
admin and backenduser accounts, which signup never creates.

When --password is omitted a random password is generated and printed once.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateUser(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.email, "email", "", "login email")
	cmd.Flags().StringVar(&opts.password, "password", "", "password, generated when empty")
	cmd.Flags().StringVar(&opts.role, "role", string(domain.RoleUser), "one of user, admin, backenduser")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runCreateUser(cmd *cobra.Command, opts *createUserOptions) error {
	role, err := domain.ParseRole(opts.role)
	if err != nil {
		return oops.Code("INVALID_ROLE").With("role", opts.role).Wrap(err)
	}

	cfg, err := app.LoadDatabaseConfig()
	if err != nil {
		return err
	}

	password := opts.password
	generated := password == ""
	if generated {
		if password, err = cryptox.GeneratePassword(); err != nil {
			return oops.Code("PASSWORD_GENERATION_FAILED").Wrap(err)
		}
	}

	db, err := app.OpenStore(cmd.Context(), cfg)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "open database").Wrap(err)
	}
	defer func() { _ = db.Close() }()

	auth := &service.AuthService{
		Accounts: db.Accounts(),
		Hasher:   cryptox.NewPasswordHasher(cfg.PasswordPepper),
	}
	a, err := auth.CreateUser(cmd.Context(), service.CreateUserInput{
		Name:     opts.name,
		Email:    opts.email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return oops.Code("CREATE_USER_FAILED").With("email", opts.email).Wrap(err)
	}

	cmd.Printf("Created %s account %s (%s)\n", a.Role, a.Email, a.ID)
	if generated {
		cmd.Printf("Generated password: %s\n", password)
	}
	return nil
}

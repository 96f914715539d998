package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"inviteplanner/internal/adapters/auth"
	"inviteplanner/internal/domain"
	"inviteplanner/internal/repository/postgres"
	"inviteplanner/internal/services"
)

var promoteEmail string

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant the admin role to a user",
	Long: `Grant the admin role to an existing account. Admins manage payments.

Sign-up always creates plain users; this is the only way to create an admin.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(promoteEmail) == "" {
			return errors.New("--email is required")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		users := services.NewUserService(
			postgres.NewUserRepository(db),
			postgres.NewRoleRepository(db),
			auth.NewBcryptHasher(cfg.BcryptCost),
			auth.NewJWT(cfg.JWTSecret, cfg.JWTIssuer),
			cfg.JWTExpiry,
			cfg.ContextTimeout,
		)
		user, err := users.PromoteToAdmin(ctx, promoteEmail)
		if errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("no account with email %q", promoteEmail)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Promoted %s (%s) to %s.\n", user.Email, user.ID, domain.RoleAdmin)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the account to promote")
}
